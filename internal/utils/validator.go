// internal/utils/validator.go
package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate   = validator.New()
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

func init() {
	validate.RegisterValidation("strong_password", strongPassword)
	validate.RegisterValidation("username", wellFormedUsername)
}

// ValidateStruct runs the `validate` tags of a request DTO.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// strongPassword requires 8+ characters mixing upper case, lower case, a
// digit, and punctuation. Reporter accounts write prices, so weak
// passwords are out.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	password := fl.Field().String()
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return len(password) >= 8 && upper && lower && digit && special
}

func wellFormedUsername(fl validator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// ValidationError is the per-field shape returned to API clients.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// GetValidationErrors flattens a validator error into client-facing field
// messages. Anything other than field-level failures yields nil.
func GetValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "strong_password":
		return "password needs 8+ characters mixing upper and lower case, a digit, and a symbol"
	case "username":
		return "username must be 3-50 characters of letters, digits, or underscores"
	default:
		return fe.Field() + " is invalid"
	}
}
