package services

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"tokoadmin/internal/models"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries field-level messages keyed by input field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// newValidator returns a validator reporting json field names and knowing
// the product_status rule.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("product_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	return v
}

// collectErrors converts validator errors into field messages. Errors that
// are not validation errors are returned unchanged.
func collectErrors(err error, into map[string]string) error {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, e := range validationErrors {
		into[e.Field()] = fieldMessage(e)
	}
	return nil
}

func fieldMessage(e validator.FieldError) string {
	name := strings.ReplaceAll(e.Field(), "_", " ")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", name)
	case "uuid":
		return fmt.Sprintf("The %s field must be a valid UUID.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", name, e.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, e.Param())
	case "product_status":
		return fmt.Sprintf("The selected %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s field failed on the '%s' rule.", name, e.Tag())
	}
}

func takenMessage(field string) string {
	return fmt.Sprintf("The %s has already been taken.", strings.ReplaceAll(field, "_", " "))
}
