package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	err := FetchFailed(3, fmt.Errorf("connection reset"))
	msg := err.Error()
	if !strings.Contains(msg, "FETCH_FAILED") || !strings.Contains(msg, "connection reset") {
		t.Errorf("unexpected message %q", msg)
	}
	if err.Details["page"] != 3 {
		t.Errorf("expected page=3, got %v", err.Details["page"])
	}
}

func TestFetchFailed_InheritsRetryable(t *testing.T) {
	if FetchFailed(0, fmt.Errorf("plain")).Retryable {
		t.Error("plain cause should not be retryable")
	}
	if !FetchFailed(0, Timeout("list")).Retryable {
		t.Error("timeout cause should be retryable")
	}
}

func TestCallbackFailed(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := CallbackFailed("map", cause)
	if err.Code != ErrCodeCallbackFailed {
		t.Errorf("expected CALLBACK_FAILED, got %s", err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if err.Details["stage"] != "map" {
		t.Errorf("expected stage=map, got %v", err.Details["stage"])
	}
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := CallbackFailed("tap", fmt.Errorf("x"))
	broken := SequenceBroken(inner)
	wrapped := fmt.Errorf("consumer: %w", broken)

	if !HasCode(wrapped, ErrCodeSequenceBroken) {
		t.Error("expected SEQUENCE_BROKEN in chain")
	}
	if !HasCode(wrapped, ErrCodeCallbackFailed) {
		t.Error("expected CALLBACK_FAILED in chain")
	}
	if HasCode(wrapped, ErrCodeFetchFailed) {
		t.Error("did not expect FETCH_FAILED in chain")
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil carries no code")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", fmt.Errorf("x"), false},
		{"rate limited", RateLimited(), true},
		{"wrapped unavailable", fmt.Errorf("wrap: %w", ServiceUnavailable("api")), true},
		{"invalid argument", InvalidArgument("size", "must be positive"), false},
		{"database", DatabaseError(fmt.Errorf("locked")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithDetails(t *testing.T) {
	err := NotFound("page").WithDetail("page", 4).WithDetails(map[string]any{"source": "redis"})
	if err.Details["resource"] != "page" || err.Details["page"] != 4 || err.Details["source"] != "redis" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestUnauthorized_DefaultReason(t *testing.T) {
	err := Unauthorized("")
	if err.Message != "authentication required" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", err.HTTPStatus)
	}
}

func TestToResponse_RoundTrip(t *testing.T) {
	orig := RateLimited().WithDetail("retry_after", "1s")
	resp := orig.ToResponse()
	back := FromResponse(resp, http.StatusTooManyRequests)
	if back.Code != orig.Code || back.Message != orig.Message || !back.Retryable {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if back.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", back.HTTPStatus)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Internal(nil))
	appErr, ok := AsAppError(wrapped)
	if !ok || appErr.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %v %v", appErr, ok)
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
}
