package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLDirectory is a ClientDirectory over a Postgres database holding the
// companies, emails and contacts tables of the CRM.
type SQLDirectory struct {
	db *sql.DB
}

// OpenSQLDirectory connects to Postgres through the pgx driver and checks the connection.
func OpenSQLDirectory(ctx context.Context, dsn string) (*SQLDirectory, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewSQLDirectory(db), nil
}

// NewSQLDirectory wraps an open database handle.
func NewSQLDirectory(db *sql.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

// Close closes the database handle.
func (d *SQLDirectory) Close() error {
	return d.db.Close()
}

const companyColumns = `company_id, client_id, company_name, COALESCE(company_primary_domain, '')`

func (d *SQLDirectory) queryCompany(ctx context.Context, query string, arg any) (Company, error) {
	var c Company
	err := d.db.QueryRowContext(ctx, query, arg).Scan(&c.CompanyID, &c.ClientID, &c.CompanyName, &c.PrimaryDomain)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrClientNotFound
	}
	if err != nil {
		return Company{}, fmt.Errorf("query companies: %w", err)
	}
	return c, nil
}

func (d *SQLDirectory) queryCompanyID(ctx context.Context, query, email string) (string, error) {
	var id string
	err := d.db.QueryRowContext(ctx, query, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrClientNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query company id: %w", err)
	}
	return id, nil
}

func (d *SQLDirectory) CompanyByClientID(ctx context.Context, clientID string) (Company, error) {
	return d.queryCompany(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE client_id = $1 LIMIT 1`, clientID)
}

func (d *SQLDirectory) CompanyByID(ctx context.Context, companyID string) (Company, error) {
	return d.queryCompany(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE company_id = $1 LIMIT 1`, companyID)
}

func (d *SQLDirectory) CompanyIDByEmail(ctx context.Context, email string) (string, error) {
	return d.queryCompanyID(ctx,
		`SELECT company_id FROM emails WHERE company_email = $1 LIMIT 1`, email)
}

func (d *SQLDirectory) CompanyIDByContactEmail(ctx context.Context, email string) (string, error) {
	return d.queryCompanyID(ctx,
		`SELECT company_id FROM contacts WHERE email = $1 LIMIT 1`, email)
}

func (d *SQLDirectory) CompanyByDomain(ctx context.Context, domain string) (Company, error) {
	return d.queryCompany(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE company_primary_domain ILIKE $1 LIMIT 1`, "%"+domain+"%")
}
