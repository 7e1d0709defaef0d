// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,username"`
	Password string `validate:"required,strong_password"`
}

func TestValidateStructAcceptsWellFormedInput(t *testing.T) {
	err := ValidateStruct(&registrationInput{
		Email:    "petugas@pasar.id",
		Username: "petugas_senen",
		Password: "Password123!",
	})
	assert.NoError(t, err)
	assert.Nil(t, GetValidationErrors(err))
}

func TestStrongPasswordRules(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Password123!", true},
		{"password123!", false}, // no upper
		{"PASSWORD123!", false}, // no lower
		{"Password!!!!", false}, // no digit
		{"Password1234", false}, // no symbol
		{"Pw1!", false},         // too short
	}

	for _, tc := range cases {
		err := ValidateStruct(&registrationInput{
			Email:    "petugas@pasar.id",
			Username: "petugas",
			Password: tc.password,
		})
		if tc.ok {
			assert.NoError(t, err, tc.password)
		} else {
			assert.Error(t, err, tc.password)
		}
	}
}

func TestUsernameRules(t *testing.T) {
	for _, bad := range []string{"ab", "has space", "semi;colon", "tab\tchar"} {
		err := ValidateStruct(&registrationInput{
			Email:    "petugas@pasar.id",
			Username: bad,
			Password: "Password123!",
		})
		assert.Error(t, err, bad)
	}
}

func TestGetValidationErrorsFlattensFields(t *testing.T) {
	err := ValidateStruct(&registrationInput{
		Email:    "not-an-email",
		Username: "ok_name",
		Password: "weak",
	})
	require.Error(t, err)

	fields := GetValidationErrors(err)
	require.Len(t, fields, 2)

	byField := map[string]ValidationError{}
	for _, fe := range fields {
		byField[fe.Field] = fe
	}
	assert.Equal(t, "email", byField["email"].Tag)
	assert.Contains(t, byField["email"].Message, "valid email")
	assert.Equal(t, "strong_password", byField["password"].Tag)
	assert.Contains(t, byField["password"].Message, "8+ characters")
}
