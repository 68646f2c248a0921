package fetchkit

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Location: "users.list", Message: "bad path"}
	if !strings.Contains(err.Error(), "users.list") {
		t.Errorf("expected location in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "bad path") {
		t.Errorf("expected detail in message, got %q", err.Error())
	}
}

func TestMissingParameterError(t *testing.T) {
	err := &MissingParameterError{Parameter: "id"}
	if !strings.Contains(err.Error(), `"id"`) {
		t.Errorf("expected parameter name in message, got %q", err.Error())
	}
}

func TestValidationError_Sides(t *testing.T) {
	reqErr := newValidationError(SideRequest, errors.New("boom"))
	if reqErr.Side != SideRequest {
		t.Errorf("expected side %q, got %q", SideRequest, reqErr.Side)
	}
	if !strings.Contains(reqErr.Error(), "request validation failed") {
		t.Errorf("unexpected message %q", reqErr.Error())
	}

	resErr := newValidationError(SideResponse, errors.New("boom"))
	if !strings.Contains(resErr.Error(), "response validation failed") {
		t.Errorf("unexpected message %q", resErr.Error())
	}
}

func TestValidationError_Detail(t *testing.T) {
	type sample struct {
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0"`
	}

	err := validator.New().Struct(sample{Email: "nope", Age: -1})
	ve := newValidationError(SideRequest, err)

	if ve.Detail["Email"] != "must be a valid email address" {
		t.Errorf("unexpected Email detail %q", ve.Detail["Email"])
	}
	if ve.Detail["Age"] != "must be at least 0" {
		t.Errorf("unexpected Age detail %q", ve.Detail["Age"])
	}

	var valErrs validator.ValidationErrors
	if !errors.As(ve.Unwrap(), &valErrs) {
		t.Error("expected underlying validator error to be preserved")
	}
}

func TestAPIError_NetworkFailure(t *testing.T) {
	err := newNetworkError(errors.New("connection refused"))
	if err.Status != 0 {
		t.Errorf("expected status 0, got %d", err.Status)
	}
	if err.StatusText != "Network Error" {
		t.Errorf("expected status text %q, got %q", "Network Error", err.StatusText)
	}
	if err.Message != "connection refused" {
		t.Errorf("expected underlying message, got %q", err.Message)
	}
}

func TestAPIError_StatusFailure(t *testing.T) {
	err := newStatusError(404, "Not Found", map[string]any{"code": "missing"})
	if err.Message != "HTTP 404: Not Found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Status != 404 {
		t.Errorf("expected status 404, got %d", err.Status)
	}
	data, ok := err.Data.(map[string]any)
	if !ok || data["code"] != "missing" {
		t.Errorf("expected decoded body as data, got %v", err.Data)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", &APIError{Status: 500, Message: "HTTP 500: Internal Server Error"})

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("expected APIError through wrapping")
	}
	if apiErr.Status != 500 {
		t.Errorf("expected status 500, got %d", apiErr.Status)
	}
}
