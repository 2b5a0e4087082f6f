package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return val
}

// Error carries field-level validation failures in the wire envelope the
// API returns with a 422.
type Error struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e *Error) Error() string { return e.Message }

// NewError builds a single-field validation error.
func NewError(field, message string) *Error {
	return &Error{
		Message: message,
		Errors:  map[string][]string{field: {message}},
	}
}

// Struct runs tag validation over s and converts any failures into *Error.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string][]string, len(verrs))
	var first string
	for _, fe := range verrs {
		msg := message(fe)
		if first == "" {
			first = msg
		}
		fields[fe.Field()] = append(fields[fe.Field()], msg)
	}
	return &Error{Message: first, Errors: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fe.Field())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}
