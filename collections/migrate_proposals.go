package collections

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// snapshotIndex is the part of a stored proposal snapshot that is mirrored
// into searchable columns.
type snapshotIndex struct {
	OfferNumber string `json:"offerNumber"`
	ClientInfo  struct {
		ClientNumber string `json:"clientNumber"`
		CompanyName  string `json:"companyName"`
	} `json:"clientInfo"`
	ProjectInfo struct {
		ProjectName string `json:"projectName"`
	} `json:"projectInfo"`
}

// MigrateProposalIndexColumns fills the offer_number, client_number,
// company_name and project_name columns of proposals that were stored with
// only a snapshot. Safe to call on every startup -- returns early if
// nothing to migrate.
func MigrateProposalIndexColumns(app *pocketbase.PocketBase) error {
	proposalsCol, err := app.FindCollectionByNameOrId("proposals")
	if err != nil {
		return fmt.Errorf("migrate: could not find proposals collection: %w", err)
	}

	stale, err := app.FindRecordsByFilter(
		proposalsCol,
		"company_name = '' && project_name = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query proposals: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	log.Printf("migrate: found %d proposal(s) without index columns -- backfilling...\n", len(stale))

	for _, rec := range stale {
		var idx snapshotIndex
		if err := json.Unmarshal([]byte(rec.GetString("snapshot")), &idx); err != nil {
			log.Printf("migrate: skipping proposal %s: unreadable snapshot: %v\n", rec.Id, err)
			continue
		}
		if idx.ClientInfo.CompanyName == "" && idx.ProjectInfo.ProjectName == "" {
			continue
		}

		if rec.GetString("offer_number") == "" {
			rec.Set("offer_number", idx.OfferNumber)
		}
		rec.Set("client_number", idx.ClientInfo.ClientNumber)
		rec.Set("company_name", idx.ClientInfo.CompanyName)
		rec.Set("project_name", idx.ProjectInfo.ProjectName)
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to update proposal %s: %v\n", rec.Id, err)
			continue
		}
	}

	log.Println("migrate: proposal index backfill complete.")
	return nil
}
