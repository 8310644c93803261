package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// RecordDirectory is a ClientDirectory over the companies, company_emails
// and contacts collections.
type RecordDirectory struct {
	app *pocketbase.PocketBase
}

// NewRecordDirectory returns a directory backed by the app's collections.
func NewRecordDirectory(app *pocketbase.PocketBase) *RecordDirectory {
	return &RecordDirectory{app: app}
}

func companyFromRecord(r *core.Record) Company {
	return Company{
		CompanyID:     r.Id,
		ClientID:      r.GetString("client_id"),
		CompanyName:   r.GetString("company_name"),
		PrimaryDomain: r.GetString("primary_domain"),
	}
}

func (d *RecordDirectory) findOne(collection, filter string, params map[string]any) (*core.Record, error) {
	record, err := d.app.FindFirstRecordByFilter(collection, filter, params)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return record, nil
}

func (d *RecordDirectory) CompanyByClientID(_ context.Context, clientID string) (Company, error) {
	r, err := d.findOne("companies", "client_id = {:clientId}", map[string]any{"clientId": clientID})
	if err != nil {
		return Company{}, err
	}
	return companyFromRecord(r), nil
}

func (d *RecordDirectory) CompanyByID(_ context.Context, companyID string) (Company, error) {
	r, err := d.app.FindRecordById("companies", companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrClientNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("query companies: %w", err)
	}
	return companyFromRecord(r), nil
}

func (d *RecordDirectory) CompanyIDByEmail(_ context.Context, email string) (string, error) {
	r, err := d.findOne("company_emails", "email = {:email}", map[string]any{"email": email})
	if err != nil {
		return "", err
	}
	return r.GetString("company"), nil
}

func (d *RecordDirectory) CompanyIDByContactEmail(_ context.Context, email string) (string, error) {
	r, err := d.findOne("contacts", "email = {:email}", map[string]any{"email": email})
	if err != nil {
		return "", err
	}
	return r.GetString("company"), nil
}

func (d *RecordDirectory) CompanyByDomain(_ context.Context, domain string) (Company, error) {
	r, err := d.findOne("companies", "primary_domain ~ {:domain}", map[string]any{"domain": domain})
	if err != nil {
		return Company{}, err
	}
	return companyFromRecord(r), nil
}
