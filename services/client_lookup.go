package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidIdentifier is returned for input that is neither a client number nor an email.
	ErrInvalidIdentifier = errors.New("identifier must be a 5-digit client number or an email address")
	// ErrClientNotFound is returned by directories when nothing matches.
	ErrClientNotFound = errors.New("client not found")
)

var (
	clientNumberPattern = regexp.MustCompile(`^\d{5}$`)
	clientEmailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Company is a client company as stored in a directory.
type Company struct {
	CompanyID     string `json:"companyId"`
	ClientID      string `json:"clientId"`
	CompanyName   string `json:"companyName"`
	PrimaryDomain string `json:"primaryDomain"`
}

// ClientDirectory is the storage behind client lookups. Every method
// returns ErrClientNotFound when nothing matches.
type ClientDirectory interface {
	CompanyByClientID(ctx context.Context, clientID string) (Company, error)
	CompanyByID(ctx context.Context, companyID string) (Company, error)
	CompanyIDByEmail(ctx context.Context, email string) (string, error)
	CompanyIDByContactEmail(ctx context.Context, email string) (string, error)
	CompanyByDomain(ctx context.Context, domain string) (Company, error)
}

// LookupStatus tells the three lookup outcomes apart.
type LookupStatus string

const (
	LookupFound    LookupStatus = "found"
	LookupNotFound LookupStatus = "not_found"
	LookupError    LookupStatus = "error"
)

// LookupResult is the typed answer of a client lookup.
type LookupResult struct {
	Status      LookupStatus `json:"status"`
	CompanyName string       `json:"companyName,omitempty"`
	ClientID    string       `json:"clientId,omitempty"`
	Err         error        `json:"-"`
}

// Found reports whether a company was found.
func (r LookupResult) Found() bool { return r.Status == LookupFound }

// LookupCache stores finished lookups keyed by normalized identifier.
type LookupCache interface {
	Get(ctx context.Context, key string) (LookupResult, bool, error)
	Set(ctx context.Context, key string, result LookupResult, ttl time.Duration) error
}

// ValidateIdentifier checks that id is a 5-digit client number or an email address.
func ValidateIdentifier(id string) error {
	id = strings.TrimSpace(id)
	err := validation.Validate(id,
		validation.Required,
		validation.By(func(any) error {
			if clientNumberPattern.MatchString(id) || clientEmailPattern.MatchString(id) {
				return nil
			}
			return ErrInvalidIdentifier
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return nil
}

// ClientLookup resolves client numbers and email addresses to companies.
type ClientLookup struct {
	dir      ClientDirectory
	cache    LookupCache
	cacheTTL time.Duration
}

// NewClientLookup returns a lookup over dir. cache may be nil.
func NewClientLookup(dir ClientDirectory, cache LookupCache, cacheTTL time.Duration) *ClientLookup {
	return &ClientLookup{dir: dir, cache: cache, cacheTTL: cacheTTL}
}

// Lookup resolves identifier. Emails are tried against the email table,
// then the contact table, then the company domain; anything else is taken
// as a client number. Malformed input returns ErrInvalidIdentifier; all
// other failures are reported through the result.
func (l *ClientLookup) Lookup(ctx context.Context, identifier string) (LookupResult, error) {
	if err := ValidateIdentifier(identifier); err != nil {
		return LookupResult{}, err
	}
	logger := zerolog.Ctx(ctx)
	key := strings.ToLower(strings.TrimSpace(identifier))

	if l.cache != nil {
		cached, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("identifier", key).Msg("client lookup: cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	company, err := l.resolve(ctx, key)
	var result LookupResult
	switch {
	case err == nil:
		result = LookupResult{Status: LookupFound, CompanyName: company.CompanyName, ClientID: company.ClientID}
	case errors.Is(err, ErrClientNotFound):
		result = LookupResult{Status: LookupNotFound}
	default:
		logger.Error().Err(err).Str("identifier", key).Msg("client lookup failed")
		return LookupResult{Status: LookupError, Err: err}, nil
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, result, l.cacheTTL); err != nil {
			logger.Warn().Err(err).Str("identifier", key).Msg("client lookup: cache write failed")
		}
	}
	return result, nil
}

func (l *ClientLookup) resolve(ctx context.Context, key string) (Company, error) {
	if !strings.Contains(key, "@") {
		return l.dir.CompanyByClientID(ctx, key)
	}

	// Each strategy that fails is logged and the next one is tried. A
	// directory error is only reported when no later strategy finds the company.
	logger := zerolog.Ctx(ctx)
	var firstErr error
	note := func(strategy string, err error) {
		logger.Warn().Err(err).Str("strategy", strategy).Msg("client lookup: strategy failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, s := range []struct {
		name string
		find func(context.Context, string) (string, error)
	}{
		{"company_email", l.dir.CompanyIDByEmail},
		{"contact_email", l.dir.CompanyIDByContactEmail},
	} {
		companyID, err := s.find(ctx, key)
		if err == nil {
			company, err := l.dir.CompanyByID(ctx, companyID)
			if err == nil {
				return company, nil
			}
			if !errors.Is(err, ErrClientNotFound) {
				note(s.name, err)
			}
			continue
		}
		if !errors.Is(err, ErrClientNotFound) {
			note(s.name, err)
		}
	}

	_, domain, _ := strings.Cut(key, "@")
	company, err := l.dir.CompanyByDomain(ctx, domain)
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, ErrClientNotFound) {
		note("domain", err)
	}
	if firstErr != nil {
		return Company{}, firstErr
	}
	return Company{}, ErrClientNotFound
}
