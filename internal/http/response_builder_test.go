package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTMXResponseBuilder(t *testing.T) {
	generated := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		Header("Cache-Control", "no-store").
		TriggerSummaryUpdated(generated).
		BodyHTML([]byte("<div>ok</div>")).
		Write(rec)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	if rec.Body.String() != "<div>ok</div>" {
		t.Errorf("body = %q", rec.Body.String())
	}

	var triggers map[string]map[string]string
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if got := triggers["summary:updated"]["generated_at"]; got != "2025-08-01T09:30:00Z" {
		t.Errorf("generated_at = %q", got)
	}
}

func TestHTMXResponseBuilderNoTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should be absent")
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(http.StatusBadGateway, `<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
	want := `<p class="error">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</p>`
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}
