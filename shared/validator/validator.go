package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"kodesha/shared/failure"
	"kodesha/shared/timezone"
	"reflect"
	"regexp"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	validate *val.Validate

	msisdnPattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{7,16}$`)
)

func registerDateValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := timezone.ParseDate(value)

	return err == nil
}

func registerMSISDNValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	return msisdnPattern.MatchString(strings.TrimSpace(value))
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	err := validate.RegisterValidation("date", registerDateValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("msisdn", registerMSISDNValidation)
	if err != nil {
		panic(err)
	}
}

// Validate decodes a JSON body into data and validates it. Decode errors are plain 400s, rule
// violations are field-scoped.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		if errors.Is(err, io.EOF) {
			return failure.BadRequestFromString("request body is required") //nolint:wrapcheck
		}

		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateStruct validates data and reports the first failing field as a field-scoped failure.
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		field, msg := message(err)

		return failure.Validation(field, msg) //nolint:wrapcheck
	}

	return nil
}
