package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

type createSlotBody struct {
	Village   string `json:"village" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Capacity  int    `json:"capacity" validate:"omitempty,gt=0"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	body := `{"village":"Rampur","date":"2025-10-01","startTime":"09:00","endTime":"11:00","capacity":40}`
	req := httptest.NewRequest("POST", "/timeslots", strings.NewReader(body))

	var dest createSlotBody
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Village != "Rampur" || dest.Capacity != 40 {
		t.Fatalf("unexpected decode result %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	body := `{"village":"Rampur","date":"2025-10-01","startTime":"09:00","endTime":"11:00","bogus":true}`
	req := httptest.NewRequest("POST", "/timeslots", strings.NewReader(body))

	var dest createSlotBody
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		t.Fatal("expected unknown field error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	body := `{"village":"","date":"not-a-date","startTime":"09:00","endTime":"11:00","capacity":-1}`
	req := httptest.NewRequest("POST", "/timeslots", strings.NewReader(body))

	var dest createSlotBody
	err := DecodeJSONBody(req, &dest)
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	if _, found := details["village"]; !found {
		t.Errorf("expected village detail in %v", details)
	}
	if _, found := details["date"]; !found {
		t.Errorf("expected date detail in %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/list?limit=25", nil)
	value, err := ParseQueryInt(req, "limit", 10, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 25 {
		t.Fatalf("expected 25, got %d", value)
	}

	req = httptest.NewRequest("GET", "/list", nil)
	value, err = ParseQueryInt(req, "limit", 10, 1, 100)
	if err != nil || value != 10 {
		t.Fatalf("expected default 10, got %d err %v", value, err)
	}

	req = httptest.NewRequest("GET", "/list?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}

	req = httptest.NewRequest("GET", "/list?limit=abc", nil)
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 0); got != "hello" {
		t.Fatalf("expected trimmed string, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected truncation, got %q", got)
	}
}
