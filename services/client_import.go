package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"
)

const importBatchSize = 100

// ImportColumn is one recognised column of a client import file.
type ImportColumn struct {
	Key      string
	Label    string
	Required bool
}

// ClientImportColumns lists the columns of a client import file in template order.
// The emails column takes several addresses separated by ";".
var ClientImportColumns = []ImportColumn{
	{Key: "client_id", Label: "Kundennummer", Required: true},
	{Key: "company_name", Label: "Firma", Required: true},
	{Key: "primary_domain", Label: "Domain"},
	{Key: "street", Label: "Straße"},
	{Key: "postal_code", Label: "PLZ"},
	{Key: "city", Label: "Ort"},
	{Key: "emails", Label: "E-Mail"},
}

// ImportRowError is a field-level problem on one row of an import file.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult summarises a validated or committed import.
type ImportResult struct {
	TotalRows  int              `json:"totalRows"`
	ValidRows  int              `json:"validRows"`
	Imported   int              `json:"imported"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolledBack"`

	Rows []map[string]string `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows. Both "," and
// ";" separated files are accepted.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		reader.Comma = ';'
	}

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeaders maps uploaded column headers to column keys by label or key,
// ignoring case and a trailing " *" required marker. Unknown columns map to "".
func mapHeaders(headers []string) []string {
	lookup := make(map[string]string, 2*len(ClientImportColumns))
	for _, c := range ClientImportColumns {
		lookup[strings.ToLower(c.Label)] = c.Key
		lookup[c.Key] = c.Key
	}

	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		mapped[i] = lookup[norm]
	}
	return mapped
}

func splitEmails(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateClientRow(rowNum int, row map[string]string) []ImportRowError {
	errs := validation.Errors{
		"Kundennummer": validation.Validate(row["client_id"],
			validation.Required.Error("Kundennummer fehlt"),
			validation.Match(clientNumberPattern).Error("Kundennummer muss 5-stellig sein")),
		"Firma": validation.Validate(row["company_name"],
			validation.Required.Error("Firma fehlt")),
	}
	for i, email := range splitEmails(row["emails"]) {
		errs[fmt.Sprintf("E-Mail %d", i+1)] = validation.Validate(email,
			is.EmailFormat.Error(fmt.Sprintf("%q ist keine gültige E-Mail-Adresse", email)))
	}

	var out []ImportRowError
	for _, c := range ClientImportColumns {
		if err := errs[c.Label]; err != nil {
			out = append(out, ImportRowError{Row: rowNum, Field: c.Label, Message: err.Error()})
		}
	}
	for i := 1; ; i++ {
		err, ok := errs[fmt.Sprintf("E-Mail %d", i)]
		if !ok {
			break
		}
		if err != nil {
			out = append(out, ImportRowError{Row: rowNum, Field: "E-Mail", Message: err.Error()})
		}
	}
	return out
}

// ValidateClientFile parses a .csv or .xlsx client list and validates every
// row. Client numbers already in the directory or repeated within the file
// are reported as errors.
func ValidateClientFile(app *pocketbase.PocketBase, file io.Reader, fileName string) (*ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys := mapHeaders(headers)
	result := &ImportResult{
		TotalRows: len(dataRows),
		Rows:      make([]map[string]string, 0, len(dataRows)),
	}

	seen := make(map[string]int)
	errorRows := make(map[int]bool)
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			rowData[key] = strings.TrimSpace(row[colIdx])
		}

		rowErrors := validateClientRow(rowNum, rowData)
		if id := rowData["client_id"]; id != "" {
			if first, dup := seen[id]; dup {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "Kundennummer",
					Message: fmt.Sprintf("Kundennummer %s bereits in Zeile %d", id, first)})
			} else {
				seen[id] = rowNum
				if _, err := app.FindFirstRecordByData("companies", "client_id", id); err == nil {
					rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "Kundennummer",
						Message: fmt.Sprintf("Kundennummer %s existiert bereits", id)})
				}
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			errorRows[rowNum] = true
		}
		result.Rows = append(result.Rows, rowData)
	}
	result.ValidRows = result.TotalRows - len(errorRows)
	return result, nil
}

// CommitClientImport inserts validated rows as companies with their email
// addresses. Rows are inserted in chunks of importBatchSize, each in one
// transaction; a failing row rolls back its whole chunk.
func CommitClientImport(app *pocketbase.PocketBase, rows []map[string]string) (*ImportResult, error) {
	companiesCol, err := app.FindCollectionByNameOrId("companies")
	if err != nil {
		return nil, fmt.Errorf("companies collection not found: %w", err)
	}
	emailsCol, err := app.FindCollectionByNameOrId("company_emails")
	if err != nil {
		return nil, fmt.Errorf("company_emails collection not found: %w", err)
	}

	result := &ImportResult{TotalRows: len(rows), ValidRows: len(rows)}
	for chunkStart := 0; chunkStart < len(rows); chunkStart += importBatchSize {
		chunk := rows[chunkStart:min(chunkStart+importBatchSize, len(rows))]

		var failed *ImportRowError
		err := app.RunInTransaction(func(txApp core.App) error {
			for i, row := range chunk {
				rowNum := chunkStart + i + 2
				company := core.NewRecord(companiesCol)
				for _, c := range ClientImportColumns {
					if c.Key != "emails" {
						company.Set(c.Key, row[c.Key])
					}
				}
				if err := txApp.Save(company); err != nil {
					failed = &ImportRowError{Row: rowNum, Field: "Firma", Message: err.Error()}
					return err
				}
				for _, email := range splitEmails(row["emails"]) {
					r := core.NewRecord(emailsCol)
					r.Set("company", company.Id)
					r.Set("email", email)
					if err := txApp.Save(r); err != nil {
						failed = &ImportRowError{Row: rowNum, Field: "E-Mail", Message: err.Error()}
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			if failed == nil {
				failed = &ImportRowError{Row: chunkStart + 2, Message: err.Error()}
			}
			result.Errors = append(result.Errors, *failed)
			result.RolledBack = true
			continue
		}
		result.Imported += len(chunk)
	}
	return result, nil
}

// ErrImportHasErrors is returned when a commit is attempted on an invalid file.
var ErrImportHasErrors = errors.New("import file has validation errors")

// ImportClients validates a client file and commits it when every row is valid.
func ImportClients(app *pocketbase.PocketBase, file io.Reader, fileName string) (*ImportResult, error) {
	result, err := ValidateClientFile(app, file, fileName)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return result, ErrImportHasErrors
	}
	committed, err := CommitClientImport(app, result.Rows)
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(errs []ImportRowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Fehler"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Zeile")
	f.SetCellValue(sheet, "B1", "Feld")
	f.SetCellValue(sheet, "C1", "Fehler")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateClientTemplate returns an empty import workbook whose header row
// marks required columns with " *".
func GenerateClientTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Kunden"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, c := range ClientImportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		label := c.Label
		if c.Required {
			label += " *"
		}
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	last, _ := excelize.ColumnNumberToName(len(ClientImportColumns))
	f.SetColWidth(sheet, "A", last, 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
