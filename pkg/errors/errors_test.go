package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"testing"
)

func TestMetadataTable(t *testing.T) {
	tests := []struct {
		name      string
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{"validation", CodeValidation, http.StatusBadRequest, false, true},
		{"unauthorized", CodeUnauthorized, http.StatusUnauthorized, false, false},
		{"forbidden", CodeForbidden, http.StatusForbidden, false, false},
		{"not found", CodeNotFound, http.StatusNotFound, false, false},
		{"conflict", CodeConflict, http.StatusConflict, false, false},
		{"state conflict", CodeStateConflict, http.StatusUnprocessableEntity, false, true},
		{"rate limit", CodeRateLimit, http.StatusTooManyRequests, false, false},
		{"internal", CodeInternal, http.StatusInternalServerError, true, false},
		{"dependency", CodeDependency, http.StatusServiceUnavailable, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := MetadataFor(tt.code)
			if meta.HTTPStatus != tt.status {
				t.Fatalf("status: want %d got %d", tt.status, meta.HTTPStatus)
			}
			if meta.Retryable != tt.retryable {
				t.Fatalf("retryable: want %v got %v", tt.retryable, meta.Retryable)
			}
			if meta.DetailsAllowed != tt.detailsOK {
				t.Fatalf("details allowed: want %v got %v", tt.detailsOK, meta.DetailsAllowed)
			}
			if meta.PublicMessage == "" {
				t.Fatal("public message must not be empty")
			}
		})
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	if got := MetadataFor("NO_SUCH_CODE").HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown codes should fall back to internal, got %d", got)
	}
}

func TestNewWrapAndDetails(t *testing.T) {
	base := New(CodeStateConflict, "slot already completed")
	if base.Code() != CodeStateConflict || base.Message() != "slot already completed" {
		t.Fatalf("unexpected error contents: %s %q", base.Code(), base.Message())
	}
	if base.Details() != nil {
		t.Fatal("fresh errors carry no details")
	}
	base.WithDetails(map[string]any{"slot_id": "abc"})
	if base.Details() == nil {
		t.Fatal("details were not retained")
	}

	cause := stdErrors.New("insufficient stock balance")
	wrapped := Wrap(CodeConflict, cause, "allocate to holder")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("wrap changed the code to %s", wrapped.Code())
	}

	if Wrap(CodeNotFound, nil, "no cause").Code() != CodeNotFound {
		t.Fatal("wrapping nil should behave like New")
	}
}

func TestAs(t *testing.T) {
	typed := As(Wrap(CodeForbidden, stdErrors.New("village mismatch"), "book slot"))
	if typed == nil || typed.Code() != CodeForbidden {
		t.Fatal("As should surface the typed error")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors are not typed")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) must be nil")
	}
}

func TestDumpFlattensChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "ping database")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected dump code %s", dump.Code)
	}
	if !strings.Contains(dump.TopMessage, "ping database") {
		t.Fatalf("top message missing context: %q", dump.TopMessage)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain to include the cause, got %v", dump.Chain)
	}

	if empty := Dump(nil); empty.TopMessage != "" || empty.Chain != nil {
		t.Fatal("dumping nil should yield a zero value")
	}
}
