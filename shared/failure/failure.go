package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that knows its HTTP status. Field names the offending request field when the
// caller can correct it.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest wraps err as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusBadRequest, Message: err.Error()}
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

// Validation returns a field-scoped bad request.
func Validation(field, msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg, Field: field}
}

func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Failure{Code: http.StatusForbidden, Message: msg}
}

func NotFound(entityName string) error {
	return &Failure{Code: http.StatusNotFound, Message: entityName}
}

// Conflict covers state-machine violations and taken dates.
func Conflict(message string) error {
	return &Failure{Code: http.StatusConflict, Message: message}
}

// ServiceUnavailable is returned when an upstream dependency such as a payment provider cannot be reached.
func ServiceUnavailable(msg string) error {
	return &Failure{Code: http.StatusServiceUnavailable, Message: msg}
}

// GetCode returns the status carried by err. Anything that is not a Failure is a 500.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetField returns the offending field of a validation failure, or an empty string.
func GetField(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Field
	}

	return ""
}
