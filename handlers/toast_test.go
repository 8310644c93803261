package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func decodeToast(t *testing.T, rec *httptest.ResponseRecorder) (map[string]json.RawMessage, toastMessage) {
	t.Helper()
	trigger := rec.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast toastMessage
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return parsed, toast
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", "success", "Angebot gespeichert"},
		{"error", "error", "Ungültige Angebotsdaten"},
		{"quotes", "info", `Projekt "Seeblick" geladen`},
		{"markup", "info", `<script>alert("xss")</script>`},
		{"newline", "warning", "Zeile1\nZeile2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			SetToast(e, tt.toastType, tt.message)

			_, toast := decodeToast(t, rec)
			if toast.Type != tt.toastType || toast.Message != tt.message {
				t.Errorf("toast = %+v, want %s %q", toast, tt.toastType, tt.message)
			}

			resp := &http.Response{Header: rec.Header()}
			var flash *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "flash_toast" {
					flash = c
				}
			}
			if flash == nil {
				t.Fatal("expected flash_toast cookie")
			}
			raw, err := url.QueryUnescape(flash.Value)
			if err != nil {
				t.Fatalf("cookie not query-escaped: %v", err)
			}
			var cookieToast toastMessage
			if err := json.Unmarshal([]byte(raw), &cookieToast); err != nil || cookieToast != toast {
				t.Errorf("cookie toast = %+v (%v), want %+v", cookieToast, err, toast)
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"proposalSaved":{"id":"abc"}}`)

	SetToast(e, "success", "Gespeichert")

	parsed, toast := decodeToast(t, rec)
	if toast.Message != "Gespeichert" {
		t.Errorf("message = %q", toast.Message)
	}
	var saved map[string]string
	if err := json.Unmarshal(parsed["proposalSaved"], &saved); err != nil || saved["id"] != "abc" {
		t.Errorf("existing trigger not preserved: %s", parsed["proposalSaved"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Überschrieben")

	parsed, toast := decodeToast(t, rec)
	if len(parsed) != 1 || toast.Message != "Überschrieben" {
		t.Errorf("trigger = %v", parsed)
	}
}

func TestErrorToast(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	if err := ErrorToast(e, http.StatusUnprocessableEntity, "Projektname fehlt"); err != nil {
		t.Fatalf("ErrorToast() error = %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none")
	}
	if rec.Body.String() != "Projektname fehlt" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if _, toast := decodeToast(t, rec); toast.Type != "error" {
		t.Errorf("toast type = %q", toast.Type)
	}
}
