package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator backs echo's c.Validate and the socket payload checks. Field
// names in errors follow the json tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			for _, tag := range []string{"param", "query"} {
				if name = field.Tag.Get(tag); name != "" {
					break
				}
			}
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
