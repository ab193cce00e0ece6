// Package validation builds the shared request validator and turns its
// failures into short client-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"note-shelf/internal/utils/crypto"
)

// New returns a validator that reports fields by their JSON names and knows
// the "password" tag.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return crypto.ValidPasswordLength(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register password rule: %w", err)
	}
	return v, nil
}

// Describe renders the first failed rule of err as a sentence.
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is malformed"
	case "password":
		return fmt.Sprintf("%s must be at least %d characters and at most %d bytes", field, crypto.MinPasswordLen, crypto.MaxPasswordLen)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "category":
		return field + " is not a known category"
	default:
		return field + " is invalid"
	}
}
