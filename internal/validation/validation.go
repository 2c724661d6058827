package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"dealership/pkg/whatsapp"

	"github.com/go-playground/validator/v10"
)

// FieldError names one rejected input field using its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects every field that failed validation.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// New builds an Error for a single field.
func New(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the JSON tag name resolver and
// the custom "phone" rule registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || len(whatsapp.NormalizePhone(s)) >= 11
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts failures into *Error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "phone":
		return "must be a valid phone number"
	}
	return fmt.Sprintf("failed %q rule", fe.Tag())
}
