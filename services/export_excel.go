package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateProposalExcel creates a price sheet from the payload and returns the
// workbook bytes. Service lines carry the numeric totals so the sheet can be
// recalculated; descriptions follow as indented text rows.
func GenerateProposalExcel(data DocumentPayload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Angebot"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E"}
	lastCol := columns[len(columns)-1]

	widths := []float64{6, 70, 10, 16, 16}
	for i, c := range columns {
		if err := f.SetColWidth(sheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#212529"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	serviceStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create service style: %w", err)
	}

	// Euro format with German grouping, "#.##0,00 €".
	moneyFormat := "#,##0.00 \"€\""
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	descStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9, Color: "#505050"},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("create description style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("Angebot Nr. "+data.OfferNumber))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	meta := []string{
		data.CompanyName + ", " + data.Street + ", " + data.PostalCode + " " + data.City,
		"Projekt: " + data.ProjectName,
		"Datum: " + data.Date + "   Gültig bis: " + data.OfferValidUntil,
	}
	for i, line := range meta {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.MergeCell(sheetName, cell, fmt.Sprintf("%s%d", lastCol, i+2)); err != nil {
			return nil, fmt.Errorf("merge meta row: %w", err)
		}
		f.SetCellValue(sheetName, cell, sanitizeExcelCell(line))
		f.SetCellStyle(sheetName, cell, cell, subtitleStyle)
	}

	headers := []string{"Pos.", "Leistung", "Menge", "Einzelpreis", "Gesamt"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A6", lastCol+"6", headerStyle)

	row := 7
	for i, s := range data.Services {
		r := fmt.Sprintf("%d", row)
		name := s.Name
		if s.SubName != "" {
			name += " " + s.SubName
		}
		f.SetCellValue(sheetName, "A"+r, i+1)
		f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(name))
		f.SetCellValue(sheetName, "C"+r, s.Quantity)
		f.SetCellStyle(sheetName, "A"+r, "C"+r, serviceStyle)
		if s.OnRequest {
			f.SetCellValue(sheetName, "D"+r, "auf Anfrage")
			f.SetCellValue(sheetName, "E"+r, "auf Anfrage")
			f.SetCellStyle(sheetName, "D"+r, "E"+r, serviceStyle)
		} else {
			f.SetCellValue(sheetName, "D"+r, parseGermanAmount(s.UnitPrice))
			f.SetCellValue(sheetName, "E"+r, parseGermanAmount(s.TotalPrice))
			f.SetCellStyle(sheetName, "D"+r, "E"+r, moneyStyle)
		}
		row++

		for _, line := range FlattenBullets(s.Description) {
			r = fmt.Sprintf("%d", row)
			f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(line))
			f.SetCellStyle(sheetName, "B"+r, "B"+r, descStyle)
			row++
		}
	}

	row++
	addSummary := func(label string, value float64) {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "D"+r, label)
		f.SetCellStyle(sheetName, "D"+r, "D"+r, summaryLabelStyle)
		f.SetCellValue(sheetName, "E"+r, value)
		f.SetCellStyle(sheetName, "E"+r, "E"+r, summaryValueStyle)
		row++
	}

	addSummary("Zwischensumme netto:", parseGermanAmount(data.SubtotalNet))
	if data.HasDiscount {
		addSummary(sanitizeExcelCell(data.DiscountDescription)+":", -parseGermanAmount(data.DiscountAmount))
	}
	addSummary("Gesamtsumme netto:", parseGermanAmount(data.TotalNet))
	addSummary("MwSt.:", parseGermanAmount(data.TotalVAT))
	addSummary("Gesamtsumme brutto:", parseGermanAmount(data.TotalGross))

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Lieferzeit: "+data.DeliveryTime)
	if data.RequiresDownPayment {
		row++
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Anzahlung: "+data.DownPaymentAmount+" €")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// parseGermanAmount reverses FormatEUR. Malformed input yields 0.
func parseGermanAmount(s string) float64 {
	var cents int64
	var seenComma bool
	var decimals int
	neg := false
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
			neg = true
		case r >= '0' && r <= '9':
			if seenComma {
				decimals++
			}
			cents = cents*10 + int64(r-'0')
		case r == ',':
			seenComma = true
		case r == '.':
		default:
			return 0
		}
	}
	for ; decimals < 2; decimals++ {
		cents *= 10
	}
	if neg {
		cents = -cents
	}
	return Money(cents).Float()
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
