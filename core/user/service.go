package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/audit"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("user not found")
	ErrSessionNotFound      = core.NewAuthError("session expired")
	ErrAuthenticationFailed = core.NewAuthError("authentication failed")
)

type (
	// FindFilter selects the first User, in seed order, matching every set field.
	FindFilter struct {
		Role     string
		Provider string
		Subject  string
		Login    string // ID or Email, case-insensitive
	}

	Repository interface {
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		FindUser(ctx context.Context, filter FindFilter) (User, error)
	}

	// LoginResult is what a successful login hands back to the caller.
	LoginResult struct {
		User        User
		Permissions []string
		Session     Session
	}

	Service struct {
		db         core.Transactor
		repo       Repository
		sessions   SessionStore
		audits     *audit.Service
		sessionTTL time.Duration
		now        func() time.Time
	}
)

func NewService(db core.Transactor, repo Repository, sessions SessionStore, audits *audit.Service, conf *core.Config) *Service {
	return &Service{
		db:         db,
		repo:       repo,
		sessions:   sessions,
		audits:     audits,
		sessionTTL: conf.Server.JWTExpirationDelta,
		now:        time.Now,
	}
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, core.CleanString(id))
}

// selectUser finds the User a LoginRequest designates.
func (svc *Service) selectUser(ctx context.Context, lr LoginRequest) (User, error) {
	if lr.Provider == ProviderPassword {
		usr, err := svc.repo.FindUser(ctx, FindFilter{Login: lr.Username})
		if err != nil {
			return User{}, err
		}
		if err = usr.CheckPassword(lr.Password); err != nil {
			return User{}, ErrAuthenticationFailed
		}
		return usr, nil
	}
	if lr.RoleOverride != "" {
		return svc.repo.FindUser(ctx, FindFilter{Role: lr.RoleOverride})
	}
	return svc.repo.FindUser(ctx, FindFilter{Provider: lr.Provider, Subject: lr.Subject})
}

// Login opens a Session for the User selected by lr and records a `login` audit entry.
// No matching User is an authentication failure.
func (svc *Service) Login(ctx context.Context, lr LoginRequest) (LoginResult, error) {
	usr, err := svc.selectUser(ctx, lr)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return LoginResult{}, ErrAuthenticationFailed
		}
		return LoginResult{}, err
	}

	now := svc.now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    usr.ID,
		Provider:  lr.Provider,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.sessionTTL),
	}
	if err = svc.sessions.CreateSession(ctx, sess); err != nil {
		return LoginResult{}, errors.Wrap(err, "creating session")
	}

	_, err = svc.audits.Record(ctx, audit.Entry{
		ActorID:   usr.ID,
		ActorName: usr.Name,
		Action:    "login",
		Resource:  "/login",
		Details:   map[string]interface{}{"provider": lr.Provider},
	})
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "recording login")
	}

	return LoginResult{User: usr, Permissions: usr.Permissions(), Session: sess}, nil
}

// Logout closes the Session and records a `logout` audit entry.
// Logging out of a missing Session is not an error.
func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, err := svc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return nil
		}
		return errors.Wrap(err, "getting session")
	}
	if err = svc.sessions.DeleteSession(ctx, sess.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}

	usr, err := svc.repo.GetUserByID(ctx, sess.UserID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "finding user by ID")
	}
	_, err = svc.audits.Record(ctx, audit.Entry{
		ActorID:   sess.UserID,
		ActorName: usr.Name,
		Action:    "logout",
		Resource:  "/logout",
	})
	return errors.Wrap(err, "recording logout")
}

// Authenticate resolves the User behind a live Session.
func (svc *Service) Authenticate(ctx context.Context, sessionID string) (User, Session, error) {
	sess, err := svc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return User{}, Session{}, err
	}
	if sess.Expired(svc.now()) {
		return User{}, Session{}, ErrSessionNotFound
	}
	usr, err := svc.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, Session{}, ErrSessionNotFound
		}
		return User{}, Session{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, sess, nil
}

// ChangeIdentity records an identity bind/unbind request for an existing User.
// The linkage itself is not modified.
func (svc *Service) ChangeIdentity(ctx context.Context, actor User, ir IdentityRequest) error {
	return svc.db.Atomic(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetUserByID(ctx, ir.UserID); err != nil {
			return err
		}
		_, err := svc.audits.Record(ctx, audit.Entry{
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Action:    "identity_binding",
			Resource:  "/admin/identity/" + ir.Action,
			Details: map[string]interface{}{
				"userId":   ir.UserID,
				"provider": ir.Provider,
				"action":   ir.Action,
			},
		})
		return err
	})
}
