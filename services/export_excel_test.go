package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("failed to open generated Excel: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func rawCell(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue("Angebot", cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s) error = %v", cell, err)
	}
	return v
}

func TestGenerateProposalExcel_Layout(t *testing.T) {
	data := samplePayload(t)

	result, err := GenerateProposalExcel(data)
	if err != nil {
		t.Fatalf("GenerateProposalExcel() error = %v", err)
	}
	f := openWorkbook(t, result)

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Angebot" {
		t.Fatalf("sheets = %v, want [Angebot]", sheets)
	}
	if got := rawCell(t, f, "A1"); got != "Angebot Nr. 2025-03-07-9" {
		t.Errorf("A1 = %q", got)
	}
	if got := rawCell(t, f, "A2"); !strings.HasPrefix(got, "Bau GmbH, Hauptstr. 1, 78467 Konstanz") {
		t.Errorf("A2 = %q", got)
	}

	headers := map[string]string{"A6": "Pos.", "B6": "Leistung", "C6": "Menge", "D6": "Einzelpreis", "E6": "Gesamt"}
	for cell, want := range headers {
		if got := rawCell(t, f, cell); got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	tour := data.Services[0]
	if got := rawCell(t, f, "A7"); got != "1" {
		t.Errorf("A7 = %q, want 1", got)
	}
	if got := rawCell(t, f, "C7"); got != "2" {
		t.Errorf("C7 = %q, want 2", got)
	}
	if got := rawCell(t, f, "D7"); got != "2499" {
		t.Errorf("D7 = %q, want 2499", got)
	}
	if got := rawCell(t, f, "E7"); got != "4998" {
		t.Errorf("E7 = %q, want 4998", got)
	}

	lines := FlattenBullets(tour.Description)
	if len(lines) == 0 {
		t.Fatal("sample service has no description")
	}
	if got := rawCell(t, f, "B8"); got != lines[0] {
		t.Errorf("B8 = %q, want first description line %q", got, lines[0])
	}

	slideshowRow := 8 + len(lines)
	if got := rawCell(t, f, cellName("D", slideshowRow)); got != "auf Anfrage" {
		t.Errorf("slideshow price = %q, want auf Anfrage", got)
	}
}

func TestGenerateProposalExcel_Summary(t *testing.T) {
	data := samplePayload(t)
	result, err := GenerateProposalExcel(data)
	if err != nil {
		t.Fatalf("GenerateProposalExcel() error = %v", err)
	}
	f := openWorkbook(t, result)

	rows, err := f.GetRows("Angebot", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	summary := map[string]string{}
	for _, r := range rows {
		if len(r) >= 5 && strings.HasSuffix(r[3], ":") {
			summary[r[3]] = r[4]
		}
	}
	want := map[string]string{
		"Zwischensumme netto:": "4998",
		"Neukundenrabatt:":     "-499.8",
		"Gesamtsumme netto:":   "4498.2",
	}
	for label, v := range want {
		if summary[label] != v {
			t.Errorf("summary %q = %q, want %q (all: %v)", label, summary[label], v, summary)
		}
	}
	if _, ok := summary["Gesamtsumme brutto:"]; !ok {
		t.Error("missing gross total row")
	}
}

func TestGenerateProposalExcel_SanitizesCells(t *testing.T) {
	data := samplePayload(t)
	data.ProjectName = "=HYPERLINK(\"x\")"
	data.Services[0].Name = "=cmd"
	data.Services[0].SubName = ""

	result, err := GenerateProposalExcel(data)
	if err != nil {
		t.Fatalf("GenerateProposalExcel() error = %v", err)
	}
	f := openWorkbook(t, result)

	if got := rawCell(t, f, "B7"); got != "'=cmd" {
		t.Errorf("B7 = %q, want sanitized", got)
	}
	if formula, _ := f.GetCellFormula("Angebot", "B7"); formula != "" {
		t.Errorf("B7 has formula %q", formula)
	}
}

func TestParseGermanAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0,00", 0},
		{"1.234,56", 1234.56},
		{"199,00", 199},
		{"12.345.678,90", 12345678.90},
		{"-98,50", -98.5},
		{"5", 5},
		{"12,5", 12.5},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseGermanAmount(tt.in); got != tt.want {
			t.Errorf("parseGermanAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseGermanAmount_ReversesFormatEUR(t *testing.T) {
	for _, cents := range []Money{0, 1, 99, 100, 123456, 987654321} {
		if got := parseGermanAmount(FormatEUR(cents)); got != cents.Float() {
			t.Errorf("parseGermanAmount(FormatEUR(%d)) = %v, want %v", cents, got, cents.Float())
		}
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Normal", "Normal"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@x", "'@x"},
		{"|pipe", "'|pipe"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func cellName(col string, row int) string {
	name, _ := excelize.JoinCellName(col, row)
	return name
}
