package fetchkit

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ConfigurationError reports a malformed endpoint descriptor. It is raised
// once at registration time and is never recoverable at call time.
type ConfigurationError struct {
	// Location identifies the offending descriptor, e.g. "users.list".
	Location string
	Message  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fetchkit: invalid endpoint %q: %s", e.Location, e.Message)
}

// MissingParameterError reports a path parameter that was declared in the
// template but absent from the supplied parameter set. The caller can
// recover by supplying the parameter and retrying.
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("fetchkit: missing path parameter %q", e.Parameter)
}

// Side distinguishes which half of a call a validation failure belongs to.
type Side string

const (
	// SideRequest marks a failure caught before any network activity.
	SideRequest Side = "request"
	// SideResponse marks a failure caught after the response was decoded.
	SideResponse Side = "response"
)

// ValidationError reports a body, query, or response value that failed its
// schema. Request-side errors mean nothing was transmitted; response-side
// errors mean the call completed but the decoded value was rejected before
// reaching the caller.
type ValidationError struct {
	Side   Side
	Detail map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetchkit: %s validation failed: %v", e.Side, e.Err)
	}
	return fmt.Sprintf("fetchkit: %s validation failed", e.Side)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// newValidationError wraps a schema failure, extracting per-field detail
// when the underlying error came from the validator package.
func newValidationError(side Side, err error) *ValidationError {
	ve := &ValidationError{Side: side, Err: err}
	if valErrs, ok := err.(validator.ValidationErrors); ok {
		ve.Detail = make(map[string]string, len(valErrs))
		for _, fe := range valErrs {
			ve.Detail[fe.Field()] = formatValidationError(fe)
		}
	}
	return ve
}

// APIError reports a non-success HTTP status or a transport-level failure.
// For transport failures Status is 0 and StatusText is "Network Error".
type APIError struct {
	Status     int
	StatusText string
	Message    string
	// Data holds the best-effort decoded error body, when one was present.
	Data any
}

func (e *APIError) Error() string { return "fetchkit: " + e.Message }

// newNetworkError maps a failed transport invocation to an APIError.
func newNetworkError(err error) *APIError {
	return &APIError{
		Status:     0,
		StatusText: "Network Error",
		Message:    err.Error(),
	}
}

// newStatusError maps a non-success response to an APIError carrying the
// best-effort decoded body.
func newStatusError(status int, statusText string, data any) *APIError {
	return &APIError{
		Status:     status,
		StatusText: statusText,
		Message:    fmt.Sprintf("HTTP %d: %s", status, statusText),
		Data:       data,
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
