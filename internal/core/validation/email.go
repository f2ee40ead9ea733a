// Package validation holds the request validation rules shared by the HTTP
// layer and the services.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// EmailTag is the validator tag the email rule is registered under.
const EmailTag = "valid_email"

// EmailPattern accepts a plausible address: a local part of [_A-Za-z0-9+]
// optionally followed by dot-separated [_A-Za-z0-9-] groups, a domain of
// dot-separated labels and a top-level label of at least two letters.
const EmailPattern = `^` +
	`[_A-Za-z0-9+]+(\.[_A-Za-z0-9-]+)*` + // local
	`@` +
	`[A-Za-z0-9-]+(\.[A-Za-z0-9]+)*` + // domain
	`\.[a-zA-Z]{2,}` + // tld
	`$`

var emailRegex = regexp.MustCompile(EmailPattern)

// IsValidEmail reports whether s matches EmailPattern in full. It never fails;
// empty or malformed input is simply not valid.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// EmailValidator adapts the email rule to go-playground/validator.
// The zero value is ready to use and safe for concurrent use.
type EmailValidator struct{}

func NewEmailValidator() *EmailValidator {
	return &EmailValidator{}
}

// Initialize receives the tag parameter. The rule takes no configuration.
func (v *EmailValidator) Initialize(string) {}

func (v *EmailValidator) IsValid(email string) bool {
	return IsValidEmail(email)
}

// Validate is the validator.Func bound to EmailTag.
func (v *EmailValidator) Validate(fl validator.FieldLevel) bool {
	v.Initialize(fl.Param())
	email, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return v.IsValid(email)
}

// Register binds the rule to EmailTag on vd.
func (v *EmailValidator) Register(vd *validator.Validate) error {
	return vd.RegisterValidation(EmailTag, v.Validate)
}
