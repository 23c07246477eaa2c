package handlers

import (
	"errors"
	"io"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/tubeaccounts/backend/pkg/response"
)

// bindError turns a gin binding failure into a ValidationError naming the
// first offending field.
func bindError(err error) *response.AppError {
	if isEmptyBody(err) {
		return response.NewValidation("Request body is required")
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return response.NewValidation("Invalid request body").Wrap(err)
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return response.NewValidation(field + " is required")
	case "email":
		return response.NewValidation(field + " must be a valid email address")
	default:
		return response.NewValidation(field + " is invalid")
	}
}

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}

func isMissingField(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// lowerFirst maps a Go field name to its JSON key (OldPassword -> oldPassword).
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
