package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"

	"proposalgen/services"
	"proposalgen/testhelpers"
)

var testNow = time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newTestEnv returns handler dependencies over the embedded catalog, a
// fixed clock and the app's own client directory.
func newTestEnv(t *testing.T, app *pocketbase.PocketBase) *Env {
	t.Helper()
	catalog, err := services.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	return &Env{
		Catalog: catalog,
		Options: services.DefaultOptions(),
		Lookup:  services.NewClientLookup(services.NewRecordDirectory(app), nil, 0),
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return testNow },
	}
}

// completeSnapshot serializes a proposal that passes validation.
func completeSnapshot(t *testing.T, env *Env, offerNumber string) string {
	t.Helper()
	a := env.newAssembler()
	a.SetClient(services.ClientInfo{ClientNumber: "10001", CompanyName: "Bodensee Wohnbau GmbH", Street: "Seestraße 12", PostalCode: "78464", City: "Konstanz"})
	a.SetProject(services.ProjectInfo{ProjectName: "Seeblick", BuildingType: "EFH", OfferDate: testNow, OfferValidUntil: testNow.AddDate(0, 0, 7)})
	a.SetOfferNumber(offerNumber)
	if !a.AddService("exterior-bird") {
		t.Fatal("AddService(exterior-bird) failed")
	}
	data, err := a.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	return string(data)
}

// createStoredProposal stores snapshot and returns the record id.
func createStoredProposal(t *testing.T, app *pocketbase.PocketBase, offerNumber, snapshot string) string {
	t.Helper()
	return testhelpers.CreateTestProposal(t, app, offerNumber, snapshot).Id
}
