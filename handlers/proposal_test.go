package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proposalgen/services"
	"proposalgen/testhelpers"
)

func TestHandleProposalSave_Create(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)
	handler := HandleProposalSave(app, env)

	body := completeSnapshot(t, env, "")
	req := httptest.NewRequest(http.MethodPost, "/api/proposals", strings.NewReader(body))
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp saveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.OfferNumber != "2025-03-07-8" {
		t.Errorf("offerNumber = %q, want 2025-03-07-8", resp.OfferNumber)
	}

	record, err := app.FindRecordById("proposals", resp.ID)
	if err != nil {
		t.Fatalf("saved proposal not found: %v", err)
	}
	if got := record.GetString("company_name"); got != "Bodensee Wohnbau GmbH" {
		t.Errorf("company_name = %q", got)
	}
	if got := record.GetString("project_name"); got != "Seeblick" {
		t.Errorf("project_name = %q", got)
	}
	if got := record.GetString("client_number"); got != "10001" {
		t.Errorf("client_number = %q", got)
	}
	if got := record.GetFloat("total_gross"); got != 236.81 {
		t.Errorf("total_gross = %v, want 236.81", got)
	}

	stored, err := services.Deserialize([]byte(record.GetString("snapshot")))
	if err != nil {
		t.Fatalf("stored snapshot does not restore: %v", err)
	}
	if stored.OfferNumber != "2025-03-07-8" {
		t.Errorf("stored offer number = %q", stored.OfferNumber)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "gespeichert") {
		t.Errorf("expected success toast, got %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestHandleProposalSave_SequencesOfferNumbers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)
	handler := HandleProposalSave(app, env)

	var numbers []string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/proposals", strings.NewReader(completeSnapshot(t, env, "")))
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		var resp saveResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		numbers = append(numbers, resp.OfferNumber)
	}

	want := []string{"2025-03-07-8", "2025-03-07-9", "2025-03-07-10"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("save %d offer number = %q, want %q", i, numbers[i], want[i])
		}
	}
}

func TestHandleProposalSave_UpdateKeepsOfferNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)
	id := createStoredProposal(t, app, "2025-03-01-12", completeSnapshot(t, env, "2025-03-01-12"))

	// An update without an offer number keeps the stored one.
	req := httptest.NewRequest(http.MethodPost, "/api/proposals/"+id, strings.NewReader(completeSnapshot(t, env, "")))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	if err := HandleProposalSave(app, env)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp saveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.ID != id || resp.OfferNumber != "2025-03-01-12" {
		t.Errorf("response = %+v, want id %s and offer 2025-03-01-12", resp, id)
	}
}

func TestHandleProposalSave_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"not json", "", "{", http.StatusBadRequest},
		{"schema violation", "", `{"version":1}`, http.StatusBadRequest},
		{"unknown id", "doesnotexist123", completeSnapshot(t, env, ""), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/proposals", strings.NewReader(tt.body))
			if tt.id != "" {
				req.SetPathValue("id", tt.id)
			}
			rec := httptest.NewRecorder()
			if err := HandleProposalSave(app, env)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleProposalGet(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)

	a := env.newAssembler()
	if err := a.Restore([]byte(completeSnapshot(t, env, "2025-03-07-8"))); err != nil {
		t.Fatal(err)
	}
	a.AddImage(services.ImageAttachment{Title: "Lage", FileName: "lage.png", Data: "data:image/png;base64,AAAA"})
	snap, err := a.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	id := createStoredProposal(t, app, "2025-03-07-8", string(snap))

	tests := []struct {
		name      string
		query     string
		wantImage bool
	}{
		{"full", "", true},
		{"compact", "?compact=true", false},
		{"compact numeric", "?compact=1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/proposals/"+id+tt.query, nil)
			req.SetPathValue("id", id)
			rec := httptest.NewRecorder()
			if err := HandleProposalGet(app, env)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}
			p, err := services.Deserialize(rec.Body.Bytes())
			if err != nil {
				t.Fatalf("response does not deserialize: %v", err)
			}
			if len(p.Images) != 1 {
				t.Fatalf("images = %d, want 1", len(p.Images))
			}
			if hasData := p.Images[0].Data != ""; hasData != tt.wantImage {
				t.Errorf("image data present = %v, want %v", hasData, tt.wantImage)
			}
		})
	}
}

func TestHandleProposalGet_NotFoundAndCorrupt(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	env := newTestEnv(t, app)
	corruptID := createStoredProposal(t, app, "2025-03-07-8", `{"version":1}`)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"missing id", "", http.StatusBadRequest},
		{"unknown", "doesnotexist123", http.StatusNotFound},
		{"corrupt", corruptID, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/proposals/x", nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()
			if err := HandleProposalGet(app, env)(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
