package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected *time.Time
	}{
		{"nil input", nil, nil},
		{"empty string", strPtr(""), nil},
		{"garbage", strPtr("not-a-date"), nil},
		{"clock time only", strPtr("19:30"), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseDate(tc.input); got != nil {
				t.Errorf("Expected nil, got %v", got)
			}
		})
	}

	t.Run("date only", func(t *testing.T) {
		got := parseDate(strPtr("2026-08-30"))
		if got == nil {
			t.Fatal("Expected parsed date, got nil")
		}
		if got.Year() != 2026 || got.Month() != time.August || got.Day() != 30 {
			t.Errorf("Unexpected date: %v", got)
		}
	})

	t.Run("rfc3339", func(t *testing.T) {
		got := parseDate(strPtr("2026-08-30T19:30:00Z"))
		if got == nil {
			t.Fatal("Expected parsed timestamp, got nil")
		}
		if got.Hour() != 19 || got.Minute() != 30 {
			t.Errorf("Unexpected timestamp: %v", got)
		}
	})
}

func TestWriteJSON_ErrorShape(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, 404, errorResp("Study not found", "Study with ID 5 does not exist"))

	if rr.Code != 404 {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Study not found" {
		t.Errorf("Expected error summary, got %q", body["error"])
	}
	if body["details"] != "Study with ID 5 does not exist" {
		t.Errorf("Expected details message, got %q", body["details"])
	}
}
