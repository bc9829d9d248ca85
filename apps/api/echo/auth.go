package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

const (
	contextTokenKey   = "userToken"
	contextUserKey    = "user"
	contextSessionKey = "session"
	contextAuthErrKey = "authError"
)

// Claims represents the authorization claims transmitted via a JWT.
// Id holds the session ID and Subject the user ID.
type Claims struct {
	jwt.StandardClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

func newClaims(usr user.User, sess user.Session, conf *core.Config) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sess.ID,
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  sess.CreatedAt.Unix(),
		},
		Name:  usr.Name,
		Roles: usr.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// newJWTMiddleware validates bearer tokens. Requests without an Authorization header
// go through untouched and are resolved by resolveUserMiddleware.
func newJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		Skipper: func(ctx echo.Context) bool {
			return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
}

func getContextClaims(ctx echo.Context) (Claims, bool) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, true
		}
	}
	return Claims{}, false
}

// resolveUserMiddleware sets the caller of every request, if any:
// the User behind a live session, or the demo User when the demo fallback is on
// and the request carries no token.
// A token whose session is gone leaves the caller anonymous; endpoints requiring
// a caller then answer with the session error.
func resolveUserMiddleware(svc *user.Service, conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if claims, ok := getContextClaims(ctx); ok {
				usr, sess, err := svc.Authenticate(ctx.Request().Context(), claims.Id)
				switch {
				case err == nil:
					ctx.Set(contextUserKey, usr)
					ctx.Set(contextSessionKey, sess)
				case errors.Cause(err) == user.ErrSessionNotFound:
					ctx.Set(contextAuthErrKey, err)
				default:
					return errors.Wrap(err, "authenticating session")
				}
			} else if conf.DemoFallback && conf.DemoUserID != "" {
				usr, err := svc.GetByID(ctx.Request().Context(), conf.DemoUserID)
				if err != nil && errors.Cause(err) != user.ErrNotFound {
					return errors.Wrap(err, "finding demo user")
				}
				if err == nil {
					ctx.Set(contextUserKey, usr)
				}
			}
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func getContextSession(ctx echo.Context) (user.Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(user.Session)
	return sess, ok
}

// mustGetContextUser returns the caller, or why there is none.
func mustGetContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := getContextUser(ctx); ok {
		return usr, nil
	}
	if err, ok := ctx.Get(contextAuthErrKey).(error); ok {
		return user.User{}, err
	}
	return user.User{}, errUnauthorized
}

func newSessionToken(res user.LoginResult, conf *core.Config) (string, error) {
	return GenerateToken(newClaims(res.User, res.Session, conf), conf.SecretKey)
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	User        user.User `json:"user"`
	Permissions []string  `json:"permissions"`
	Token       string    `json:"token"`
}

// MeResponse describes the caller of a live session.
type MeResponse struct {
	User        user.User `json:"user"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
