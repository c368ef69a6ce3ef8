// Package forms parses and validates the HTML form submissions.
package forms

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the HTML field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return v
}

// Errors maps an HTML field name to its first error message
type Errors map[string]string

// Has reports whether field has an error
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// messages maps "field.tag" to the message shown for that failure
type messages map[string]string

const fallbackMessage = "Invalid value"

func check(form any, msgs messages) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}

	errs := make(Errors, len(verrs))
	for _, fe := range verrs {
		if errs.Has(fe.Field()) {
			continue
		}
		msg, ok := msgs[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fallbackMessage
		}
		errs[fe.Field()] = msg
	}
	return errs
}

// Register is the account registration form
type Register struct {
	AccountName     string `form:"account_name" validate:"required,min=4,max=16"`
	Password        string `form:"password" validate:"required,min=8,max=32"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

var registerMessages = messages{
	"account_name.required":     "You must enter an account name",
	"account_name.min":          "Your account name must be between 4 and 16 characters long",
	"account_name.max":          "Your account name must be between 4 and 16 characters long",
	"password.required":         "You must enter a password",
	"password.min":              "Your password must be between 8 and 32 characters long",
	"password.max":              "Your password must be between 8 and 32 characters long",
	"confirm_password.required": "You must confirm your password",
	"confirm_password.eqfield":  "Your passwords do not match",
}

// ParseRegister reads the registration form from a POST body
func ParseRegister(r *http.Request) Register {
	return Register{
		AccountName:     r.PostFormValue("account_name"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

func (f Register) Validate() Errors {
	return check(f, registerMessages)
}

// Login is the login form
type Login struct {
	AccountName string `form:"account_name" validate:"required"`
	Password    string `form:"password" validate:"required"`
}

var loginMessages = messages{
	"account_name.required": "You must enter your account name",
	"password.required":     "You must enter your password",
}

// ParseLogin reads the login form from a POST body
func ParseLogin(r *http.Request) Login {
	return Login{
		AccountName: r.PostFormValue("account_name"),
		Password:    r.PostFormValue("password"),
	}
}

func (f Login) Validate() Errors {
	return check(f, loginMessages)
}

// ChangePassword is the change password form on the account page
type ChangePassword struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,min=8,max=32"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

var changePasswordMessages = messages{
	"current_password.required": "You must enter your current password",
	"new_password.required":     "You must enter your new password",
	"new_password.min":          "Your new password must be between 8 and 32 characters long",
	"new_password.max":          "Your new password must be between 8 and 32 characters long",
	"confirm_password.required": "You must confirm your new password",
	"confirm_password.eqfield":  "Your new password does not match",
}

// ParseChangePassword reads the change password form from a POST body
func ParseChangePassword(r *http.Request) ChangePassword {
	return ChangePassword{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

func (f ChangePassword) Validate() Errors {
	return check(f, changePasswordMessages)
}
