package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"proposalgen/services"
)

// maxSnapshotBody bounds the request body of a proposal save.
const maxSnapshotBody = 20 << 20

type saveResponse struct {
	ID          string `json:"id"`
	OfferNumber string `json:"offerNumber"`
}

// HandleProposalSave returns a handler that stores a proposal snapshot. POST
// /api/proposals creates a record; POST /api/proposals/{id} replaces it. A
// proposal without an offer number gets the next free one of the day.
func HandleProposalSave(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		body, err := io.ReadAll(io.LimitReader(e.Request.Body, maxSnapshotBody+1))
		if err != nil {
			log.Printf("proposal_save: read body: %v", err)
			return e.String(http.StatusBadRequest, "Could not read request body")
		}
		if len(body) > maxSnapshotBody {
			return e.String(http.StatusRequestEntityTooLarge, "Proposal is too large")
		}

		a := env.newAssembler()
		if err := a.Restore(body); err != nil {
			log.Printf("proposal_save: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Ungültige Angebotsdaten")
		}

		col, err := app.FindCollectionByNameOrId("proposals")
		if err != nil {
			log.Printf("proposal_save: could not find proposals collection: %v", err)
			return e.String(http.StatusInternalServerError, "Internal error")
		}

		var record *core.Record
		if id := e.Request.PathValue("id"); id != "" {
			record, err = app.FindRecordById(col, id)
			if err != nil {
				return e.String(http.StatusNotFound, "Proposal not found")
			}
		} else {
			record = core.NewRecord(col)
		}

		if a.Proposal().OfferNumber == "" {
			number := record.GetString("offer_number")
			if number == "" {
				number, err = services.GenerateOfferNumber(app, env.now())
				if err != nil {
					log.Printf("proposal_save: %v", err)
					return e.String(http.StatusInternalServerError, "Could not assign offer number")
				}
			}
			a.SetOfferNumber(number)
		}

		snapshot, err := a.Serialize()
		if err != nil {
			log.Printf("proposal_save: %v", err)
			return e.String(http.StatusInternalServerError, "Could not serialize proposal")
		}

		p := a.Proposal()
		record.Set("offer_number", p.OfferNumber)
		record.Set("client_number", p.Client.ClientNumber)
		record.Set("company_name", p.Client.CompanyName)
		record.Set("project_name", p.Project.ProjectName)
		record.Set("total_gross", p.Totals.TotalGross.Float())
		record.Set("snapshot", string(snapshot))

		if err := app.Save(record); err != nil {
			log.Printf("proposal_save: failed to save proposal: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Angebot konnte nicht gespeichert werden")
		}
		proposalSaves.Inc()

		SetToast(e, "success", "Angebot "+p.OfferNumber+" gespeichert")
		return e.JSON(http.StatusOK, saveResponse{ID: record.Id, OfferNumber: p.OfferNumber})
	}
}

// HandleProposalGet returns a handler that responds with the stored snapshot.
// With ?compact=true image data is left out.
func HandleProposalGet(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		_, a, err := loadProposal(app, env, id)
		if err != nil {
			log.Printf("proposal_get: %v", err)
			if errors.Is(err, services.ErrCorruptSnapshot) {
				return e.String(http.StatusUnprocessableEntity, "Stored proposal is corrupt")
			}
			return e.String(http.StatusNotFound, "Proposal not found")
		}

		serialize := a.Serialize
		if cast.ToBool(e.Request.URL.Query().Get("compact")) {
			serialize = a.SerializeCompact
		}
		data, err := serialize()
		if err != nil {
			log.Printf("proposal_get: %v", err)
			return e.String(http.StatusInternalServerError, "Could not serialize proposal")
		}
		return e.Blob(http.StatusOK, "application/json", data)
	}
}
