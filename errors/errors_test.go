package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := AlreadyExists("algorithm", "buffer")
	if !strings.Contains(err.Error(), string(ErrCodeAlreadyExists)) {
		t.Errorf("expected code in message, got %q", err.Error())
	}

	cause := stderrors.New("boom")
	err = Internal(cause)
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := ContractViolation("nested refresh").WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWithDetail(t *testing.T) {
	err := Conflict("busy").WithDetail("provider", "gdal")
	if err.Details["provider"] != "gdal" {
		t.Errorf("expected detail, got %v", err.Details)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("provider", "x"), http.StatusNotFound},
		{AlreadyExists("algorithm", "buffer"), http.StatusConflict},
		{InvalidInput("name", "must not be empty"), http.StatusBadRequest},
		{ProviderInactive("saga"), http.StatusConflict},
		{ContractViolation("add outside refresh"), http.StatusInternalServerError},
		{ServiceUnavailable("registry"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.err.Code, tc.status, tc.err.HTTPStatus)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !ServiceUnavailable("registry").Retryable {
		t.Error("SERVICE_UNAVAILABLE must be retryable")
	}
	if AlreadyExists("algorithm", "buffer").Retryable {
		t.Error("ALREADY_EXISTS must not be retryable")
	}
	if !IsRetryableCode(ErrCodeTimeout) {
		t.Error("TIMEOUT must be retryable")
	}
}

func TestAsAppError(t *testing.T) {
	err := NotFound("algorithm", "buffer")
	wrapped := stderrors.Join(stderrors.New("context"), err)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}

	if IsAppError(stderrors.New("plain")) {
		t.Error("plain error must not be an AppError")
	}
	if !IsCode(err, ErrCodeNotFound) {
		t.Error("IsCode must match")
	}
}

func TestToResponse(t *testing.T) {
	err := MissingField("name")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "name" {
		t.Errorf("expected field detail, got %v", resp.Error.Details)
	}
}
