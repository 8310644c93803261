package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"proposalgen/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleClientImport validates an uploaded client list and imports it when
// every row is valid. Invalid files are answered with 422 and the row errors.
// Route: POST /api/clients/import
func HandleClientImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Datei zu groß oder ungültiges Formular")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Bitte eine Datei auswählen")
		}
		defer file.Close()

		result, err := services.ImportClients(app, file, header.Filename)
		switch {
		case errors.Is(err, services.ErrImportHasErrors):
			return e.JSON(http.StatusUnprocessableEntity, result)
		case err != nil:
			log.Printf("client_import: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		if result.RolledBack {
			log.Printf("client_import: %d of %d rows imported, %d chunk(s) rolled back",
				result.Imported, result.TotalRows, len(result.Errors))
		}
		SetToast(e, "success", fmt.Sprintf("%d Kunden importiert", result.Imported))
		return e.JSON(http.StatusOK, result)
	}
}

// HandleClientImportErrors turns posted row errors into an Excel report.
// Route: POST /api/clients/import/errors
func HandleClientImportErrors() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var rowErrors []services.ImportRowError
		if err := json.NewDecoder(e.Request.Body).Decode(&rowErrors); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Ungültige Fehlerdaten")
		}

		xlsxBytes, err := services.GenerateErrorReport(rowErrors)
		if err != nil {
			log.Printf("client_import_errors: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Etwas ist schiefgelaufen. Bitte erneut versuchen.")
		}

		e.Response.Header().Set("Content-Disposition", `attachment; filename="Kundenimport_Fehler.xlsx"`)
		return e.Blob(http.StatusOK, xlsxContentType, xlsxBytes)
	}
}

// HandleClientImportTemplate downloads an empty import workbook.
// Route: GET /api/clients/import/template
func HandleClientImportTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateClientTemplate()
		if err != nil {
			log.Printf("client_import_template: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Etwas ist schiefgelaufen. Bitte erneut versuchen.")
		}

		e.Response.Header().Set("Content-Disposition", `attachment; filename="Kundenimport_Vorlage.xlsx"`)
		return e.Blob(http.StatusOK, xlsxContentType, xlsxBytes)
	}
}
