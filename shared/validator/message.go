package validator

import (
	"errors"
	"reflect"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be at most {param}",
	"min":      "{field} must be at least {param}",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid identifier",
	"date":     "{field} must be a date formatted as YYYY-MM-DD",
	"msisdn":   "{field} must be a valid phone number",
}

// length rules on strings read better in characters
var lengthMessages = map[string]string{
	"max": "{field} must be at most {param} characters",
	"min": "{field} must be at least {param} characters",
}

// message returns the offending field and a readable message for the first validation error.
func message(err error) (string, string) {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return "", err.Error()
	}

	first := valErrors[0]

	template, ok := messages[first.Tag()]
	if first.Kind() == reflect.String {
		if lengthTemplate, isLength := lengthMessages[first.Tag()]; isLength {
			template, ok = lengthTemplate, true
		}
	}

	if !ok {
		return first.Field(), first.Error()
	}

	return first.Field(), strings.NewReplacer("{field}", first.Field(), "{param}", first.Param()).Replace(template)
}
