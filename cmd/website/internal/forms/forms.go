package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

/*
Describe turns a validation error into a message fit for a form. Errors
that are not validation errors get a generic message.
*/
func Describe(err error) string {
	var (
		validationErrors validator.ValidationErrors
	)

	if err == nil {
		return ""
	}

	if !errors.As(err, &validationErrors) {
		return "The form could not be read. Please try again."
	}

	messages := make([]string, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		messages = append(messages, describeField(fieldErr))
	}

	return strings.Join(messages, " ")
}

func describeField(fieldErr validator.FieldError) string {
	field := fieldErr.Field()

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}
