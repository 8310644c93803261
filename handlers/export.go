package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalgen/services"
)

// buildExportData restores a stored proposal and checks that it is complete
// enough to be rendered.
func buildExportData(app *pocketbase.PocketBase, env *Env, id string) (services.DocumentPayload, error) {
	_, a, err := loadProposal(app, env, id)
	if err != nil {
		return services.DocumentPayload{}, err
	}
	if err := a.Validate(); err != nil {
		return services.DocumentPayload{}, err
	}
	return a.ToDocumentPayload(), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, "\"", "")
	return s
}

func exportFilename(data services.DocumentPayload, ext string) string {
	name := "Angebot_" + data.OfferNumber
	if data.ProjectName != "" {
		name += "_" + data.ProjectName
	}
	return sanitizeFilename(name) + "." + ext
}

// exportError maps a failed buildExportData to a response.
func exportError(e *core.RequestEvent, area string, err error) error {
	log.Printf("%s: %v", area, err)
	var verrs validation.Errors
	switch {
	case errors.Is(err, services.ErrCorruptSnapshot):
		return ErrorToast(e, http.StatusUnprocessableEntity, "Gespeichertes Angebot ist beschädigt")
	case errors.As(err, &verrs):
		return ErrorToast(e, http.StatusUnprocessableEntity, strings.Join(services.ValidationMessages(err), "\n"))
	default:
		return e.String(http.StatusNotFound, "Proposal not found")
	}
}

type documentFormat struct {
	name        string
	ext         string
	contentType string
	generate    func(services.DocumentPayload) ([]byte, error)
}

var (
	pdfFormat = documentFormat{
		name:        "pdf",
		ext:         "pdf",
		contentType: "application/pdf",
		generate:    services.GenerateProposalPDF,
	}
	excelFormat = documentFormat{
		name:        "excel",
		ext:         "xlsx",
		contentType: xlsxContentType,
		generate:    services.GenerateProposalExcel,
	}
)

func handleExport(app *pocketbase.PocketBase, env *Env, f documentFormat) func(*core.RequestEvent) error {
	area := "export_" + f.name
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		data, err := buildExportData(app, env, id)
		if err != nil {
			documentExports.WithLabelValues(f.name, "rejected").Inc()
			return exportError(e, area, err)
		}

		out, err := f.generate(data)
		if err != nil {
			log.Printf("%s: failed to generate: %v", area, err)
			documentExports.WithLabelValues(f.name, "failed").Inc()
			return e.String(http.StatusInternalServerError, fmt.Sprintf("Failed to generate %s file", strings.ToUpper(f.ext)))
		}
		documentExports.WithLabelValues(f.name, "ok").Inc()

		e.Response.Header().Set("Content-Type", f.contentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, f.ext)))
		e.Response.Write(out)
		return nil
	}
}

// HandleProposalExportPDF returns a handler that generates and downloads a PDF file for a proposal.
func HandleProposalExportPDF(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return handleExport(app, env, pdfFormat)
}

// HandleProposalExportExcel returns a handler that generates and downloads an Excel price sheet for a proposal.
func HandleProposalExportExcel(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return handleExport(app, env, excelFormat)
}
