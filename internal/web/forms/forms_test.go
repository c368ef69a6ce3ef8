package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterValidate(t *testing.T) {
	tests := []struct {
		name  string
		form  Register
		field string
		want  string
	}{
		{"valid", Register{"alice1", "password123", "password123"}, "", ""},
		{"missing name", Register{"", "password123", "password123"}, "account_name", "You must enter an account name"},
		{"short name", Register{"abc", "password123", "password123"}, "account_name", "Your account name must be between 4 and 16 characters long"},
		{"long name", Register{"seventeencharsxxx", "password123", "password123"}, "account_name", "Your account name must be between 4 and 16 characters long"},
		{"short password", Register{"alice1", "short", "short"}, "password", "Your password must be between 8 and 32 characters long"},
		{"long password", Register{"alice1", strings.Repeat("p", 33), strings.Repeat("p", 33)}, "password", "Your password must be between 8 and 32 characters long"},
		{"missing confirmation", Register{"alice1", "password123", ""}, "confirm_password", "You must confirm your password"},
		{"mismatch", Register{"alice1", "password123", "password124"}, "confirm_password", "Your passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if tt.field == "" {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs[tt.field])
		})
	}
}

func TestRegisterLengthCountsCharacters(t *testing.T) {
	// Four multi-byte characters are a valid name
	errs := Register{"ñañá", "password123", "password123"}.Validate()
	assert.False(t, errs.Has("account_name"))
}

func TestRegisterReportsEveryField(t *testing.T) {
	errs := Register{}.Validate()
	assert.True(t, errs.Has("account_name"))
	assert.True(t, errs.Has("password"))
	assert.True(t, errs.Has("confirm_password"))
}

func TestLoginValidate(t *testing.T) {
	assert.Empty(t, Login{"a", "b"}.Validate())

	errs := Login{}.Validate()
	assert.Equal(t, "You must enter your account name", errs["account_name"])
	assert.Equal(t, "You must enter your password", errs["password"])
}

func TestChangePasswordValidate(t *testing.T) {
	assert.Empty(t, ChangePassword{"old", "newpassword1", "newpassword1"}.Validate())

	errs := ChangePassword{"", "short", "other"}.Validate()
	assert.Equal(t, "You must enter your current password", errs["current_password"])
	assert.Equal(t, "Your new password must be between 8 and 32 characters long", errs["new_password"])
	assert.Equal(t, "Your new password does not match", errs["confirm_password"])
}

func TestParse(t *testing.T) {
	body := url.Values{
		"account_name":     {"alice1"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form := ParseRegister(req)
	assert.Equal(t, Register{"alice1", "password123", "password123"}, form)
}
