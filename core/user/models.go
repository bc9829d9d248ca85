package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/campus/core"
)

// Roles
const (
	RoleStudent   = "Student"
	RoleTeacher   = "Teacher"
	RoleHOD       = "HOD"
	RolePrincipal = "Principal"
	RoleAdmin     = "Admin"
)

// Identity providers
const (
	ProviderGoogle   = "Google"
	ProviderSingpass = "Singpass"
	ProviderPassword = "password"
)

var (
	AllRoles     = []string{RoleStudent, RoleTeacher, RoleHOD, RolePrincipal, RoleAdmin}
	AllProviders = []string{ProviderGoogle, ProviderSingpass, ProviderPassword}
)

// Identity is an external identity provider account linked to a User.
type Identity struct {
	Provider string    `json:"provider"`
	Subject  string    `json:"subject"`
	LinkedAt time.Time `json:"linkedAt"`
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Roles        []string   `json:"roles"`
	Email        string     `json:"email,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	ClassName    string     `json:"className,omitempty"`
	StaffNo      string     `json:"staffNo,omitempty"`
	Identities   []Identity `json:"identities,omitempty"`
	PasswordHash []byte     `json:"-"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(role string) bool {
	return core.ContainsString(u.Roles, role)
}

func (u *User) IsStudent() bool { return u.HasRole(RoleStudent) }
func (u *User) IsTeacher() bool { return u.HasRole(RoleTeacher) }
func (u *User) IsHOD() bool     { return u.HasRole(RoleHOD) }

func (u *User) HasIdentity(provider, subject string) bool {
	for _, id := range u.Identities {
		if id.Provider == provider && (subject == "" || id.Subject == subject) {
			return true
		}
	}
	return false
}

// Permissions returns the flattened permission set of the User's roles.
func (u *User) Permissions() []string {
	return Permissions(u.Roles)
}

// LoginRequest selects the User to open a session for.
type LoginRequest struct {
	Provider     string `json:"provider" validate:"required,provider"`
	RoleOverride string `json:"roleOverride" validate:"omitempty,role"`
	Subject      string `json:"subject"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Provider = core.CleanString(lr.Provider)
	lr.RoleOverride = core.CleanString(lr.RoleOverride)
	lr.Subject = core.CleanString(lr.Subject)
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

// IdentityRequest is an admin request to bind or unbind an external identity.
type IdentityRequest struct {
	Action   string `json:"-" param:"action"`
	UserID   string `json:"userId" validate:"required,notblank"`
	Provider string `json:"provider" validate:"required,oneof=Google Singpass"`
}

func (ir *IdentityRequest) Validate(validate *validator.Validate) error {
	ir.UserID = core.CleanString(ir.UserID)
	ir.Provider = core.CleanString(ir.Provider)
	return validate.Struct(ir)
}
