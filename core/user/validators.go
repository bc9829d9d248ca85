package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	providerTag  = "provider"
	providerText = "unknown identity provider"

	credentialsTag  = "credentials"
	credentialsText = "username and password are required for password login"
)

// InitValidators registers the user validation tags & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(providerTag, providerValidation)
	core.RegisterCustomTranslation(validate, translator, providerTag, providerText)

	validate.RegisterStructValidation(loginStructValidation, LoginRequest{})
	core.RegisterCustomTranslation(validate, translator, credentialsTag, credentialsText)
}

// Custom Validators

// roleValidation checks that the value is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	return core.ContainsString(AllRoles, fl.Field().String())
}

// providerValidation checks that the value is one of AllProviders
func providerValidation(fl validator.FieldLevel) bool {
	return core.ContainsString(AllProviders, fl.Field().String())
}

// loginStructValidation requires credentials when logging in with a password.
func loginStructValidation(sl validator.StructLevel) {
	lr, ok := sl.Current().Interface().(LoginRequest)
	if !ok || lr.Provider != ProviderPassword {
		return
	}
	if lr.Username == "" {
		sl.ReportError(lr.Username, "username", "Username", credentialsTag, "")
	}
	if lr.Password == "" {
		sl.ReportError(lr.Password, "password", "Password", credentialsTag, "")
	}
}
