package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"proposalgen/services"
)

type lookupResponse struct {
	Found       bool   `json:"found"`
	CompanyName string `json:"companyName,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HandleClientLookup returns a handler for GET /api/clients/lookup?identifier=...
// The identifier is a 5-digit client number or an email address.
func HandleClientLookup(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		identifier := e.Request.URL.Query().Get("identifier")

		result, err := env.Lookup.Lookup(e.Request.Context(), identifier)
		if errors.Is(err, services.ErrInvalidIdentifier) {
			clientLookups.WithLabelValues("invalid").Inc()
			return e.JSON(http.StatusBadRequest, lookupResponse{Error: "Bitte 5-stellige Kundennummer oder E-Mail-Adresse eingeben"})
		}
		if err != nil {
			log.Printf("client_lookup: %v", err)
			clientLookups.WithLabelValues(string(services.LookupError)).Inc()
			return e.JSON(http.StatusInternalServerError, lookupResponse{Error: "Kundensuche fehlgeschlagen"})
		}

		clientLookups.WithLabelValues(string(result.Status)).Inc()
		switch result.Status {
		case services.LookupFound:
			return e.JSON(http.StatusOK, lookupResponse{Found: true, CompanyName: result.CompanyName, ClientID: result.ClientID})
		case services.LookupNotFound:
			return e.JSON(http.StatusOK, lookupResponse{Found: false})
		default:
			log.Printf("client_lookup: %q: %v", identifier, result.Err)
			return e.JSON(http.StatusBadGateway, lookupResponse{Error: "Kundenverzeichnis nicht erreichbar"})
		}
	}
}
