package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error reports malformed input rejected at the boundary, before any I/O.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// Errorf builds a field-level validation error.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether err is (or wraps) a validation error.
func IsError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

var validate = newValidator()

// newValidator configures the validator used by the typed constructors.
// - Uses JSON tag names in errors.
// - Registers alias tags for the password strength rule.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("rawpwd", "min=8,containsany=0123456789,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=abcdefghijklmnopqrstuvwxyz")
	return v
}
