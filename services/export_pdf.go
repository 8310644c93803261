package services

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfBulletGlyphs stay inside the core font code page.
var pdfBulletGlyphs = []string{"•", "-", "·", "·"}

var (
	pdfGrey      = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfLightGrey = &props.Color{Red: 140, Green: 140, Blue: 140}
	pdfHeaderBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfSummaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
	pdfWhite     = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// GenerateProposalPDF renders a proposal payload with maroto/v2 and returns
// the PDF bytes.
func GenerateProposalPDF(data DocumentPayload) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Seite {current} von {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfLightGrey,
		}).
		Build()

	m := maroto.New(cfg)

	addProposalHeader(m, data)
	addServiceTableHeader(m)
	for i, s := range data.Services {
		addServiceRows(m, i+1, s)
	}
	addProposalSummary(m, data)
	addConditions(m, data)
	addImages(m, data.Images)
	addCompanyFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addProposalHeader adds the addressee block, offer number and dates.
func addProposalHeader(m core.Maroto, data DocumentPayload) {
	small := props.Text{Size: 9, Align: align.Left}
	right := props.Text{Size: 9, Align: align.Right, Color: pdfGrey}

	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(text.New(data.Company.Name+" · "+data.Company.Address, props.Text{
				Size: 7, Color: pdfLightGrey,
			})),
		),
	)
	m.AddRows(row.New(5).Add(col.New(12).Add(text.New(data.CompanyName, small))))
	m.AddRows(row.New(5).Add(col.New(12).Add(text.New(data.Street, small))))
	m.AddRows(row.New(5).Add(col.New(12).Add(text.New(data.PostalCode+" "+data.City, small))))
	m.AddRows(row.New(5).Add(col.New(12).Add(text.New(data.Country, small))))
	m.AddRows(row.New(6))

	m.AddRows(
		row.New(10).Add(
			col.New(8).Add(text.New("Angebot Nr. "+data.OfferNumber, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
			})),
			col.New(4).Add(text.New("Datum: "+data.Date, right)),
		),
	)

	project := data.ProjectName
	if data.ProjectNumber != "" {
		project = fmt.Sprintf("%s (%s)", project, data.ProjectNumber)
	}
	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New("Projekt: "+project, props.Text{Size: 9, Color: pdfGrey})),
			col.New(4).Add(text.New("Gültig bis: "+data.OfferValidUntil, right)),
		),
	)
	m.AddRows(row.New(4))
}

// addServiceTableHeader adds the column header row for the service table.
func addServiceTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: pdfWhite,
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: pdfHeaderBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("Pos.", headerText)).WithStyle(headerCell),
			col.New(6).Add(text.New("Leistung", headerTextLeft)).WithStyle(headerCell),
			col.New(1).Add(text.New("Menge", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Einzelpreis", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Gesamt", headerText)).WithStyle(headerCell),
		),
	)
}

// addServiceRows adds one service line followed by its description bullets.
func addServiceRows(m core.Maroto, pos int, s PayloadService) {
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	center := props.Text{Size: 9, Align: align.Center}
	rightText := props.Text{Size: 9, Align: align.Right}

	unit, total := s.UnitPrice+" €", s.TotalPrice+" €"
	if s.OnRequest {
		unit, total = "auf Anfrage", "auf Anfrage"
	}

	name := s.Name
	if s.SubName != "" {
		name += " " + s.SubName
	}
	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", pos), center)),
			col.New(6).Add(text.New(name, bold)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", s.Quantity), center)),
			col.New(2).Add(text.New(unit, rightText)),
			col.New(2).Add(text.New(total, rightText)),
		),
	)

	for _, line := range pdfDescriptionLines(s.Description) {
		m.AddRows(
			row.New(5).Add(
				col.New(1),
				col.New(11).Add(text.New(line, props.Text{Size: 8, Align: align.Left})),
			),
		)
	}

	if s.HasPricing {
		for _, label := range s.PricingTiers {
			m.AddRows(
				row.New(4).Add(
					col.New(1),
					col.New(11).Add(text.New(label, props.Text{Size: 7, Color: pdfGrey})),
				),
			)
		}
	}
	if s.Link != "" {
		m.AddRows(
			row.New(5).Add(
				col.New(1),
				col.New(11).Add(text.New("Referenzen: "+s.Link, props.Text{
					Size:      7,
					Style:     fontstyle.Bold,
					Hyperlink: &s.Link,
				})),
			),
		)
	}
	m.AddRows(row.New(2))
}

// pdfDescriptionLines renders a description tree with indentation per level.
func pdfDescriptionLines(tree []BulletNode) []string {
	var lines []string
	var walk func(nodes []BulletNode, level int)
	walk = func(nodes []BulletNode, level int) {
		glyph := pdfBulletGlyphs[min(level, len(pdfBulletGlyphs)-1)]
		for _, n := range nodes {
			lines = append(lines, strings.Repeat("    ", level)+glyph+" "+n.Text)
			walk(n.Children, level+1)
		}
	}
	walk(tree, 0)
	return lines
}

// addProposalSummary adds the net, discount, VAT and gross totals.
func addProposalSummary(m core.Maroto, data DocumentPayload) {
	m.AddRows(row.New(4))

	summaryCell := &props.Cell{BackgroundColor: pdfSummaryBg}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	addLine := func(label, value string) {
		m.AddRows(
			row.New(7).Add(
				col.New(9).Add(text.New(label, labelStyle)).WithStyle(summaryCell),
				col.New(3).Add(text.New(value+" €", valueStyle)).WithStyle(summaryCell),
			),
		)
	}

	addLine("Zwischensumme netto", data.SubtotalNet)
	if data.HasDiscount {
		addLine(fmt.Sprintf("%s (%s)", data.DiscountDescription, data.DiscountType), "-"+data.DiscountAmount)
	}
	addLine("Gesamtsumme netto", data.TotalNet)
	addLine("zzgl. 19% MwSt.", data.TotalVAT)
	addLine("Gesamtsumme brutto", data.TotalGross)
}

// addConditions adds delivery time, down payment and signature.
func addConditions(m core.Maroto, data DocumentPayload) {
	body := props.Text{Size: 9, Align: align.Left}

	m.AddRows(row.New(6))
	m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Lieferzeit: "+data.DeliveryTime+" nach Auftragserteilung", body))))
	if data.RequiresDownPayment {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(
			fmt.Sprintf("Anzahlung: %s € bei Auftragserteilung (ab %s € Auftragswert)", data.DownPaymentAmount, data.DownPaymentThreshold),
			body,
		))))
	}
	for _, key := range slices.Sorted(maps.Keys(data.Terms)) {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(data.Terms[key], body))))
	}

	m.AddRows(row.New(10))
	m.AddRows(row.New(6).Add(col.New(12).Add(text.New(data.SignatureName, props.Text{
		Size:  9,
		Style: fontstyle.Bold,
	}))))
}

// addImages adds each attached image with title, description and a thumbnail.
// Images that cannot be decoded are listed without a picture.
func addImages(m core.Maroto, images []PayloadImage) {
	if len(images) == 0 {
		return
	}
	m.AddRows(row.New(8))
	m.AddRows(row.New(8).Add(col.New(12).Add(text.New("Referenzbilder", props.Text{
		Size:  11,
		Style: fontstyle.Bold,
	}))))

	for _, img := range images {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(img.Title, props.Text{Size: 9, Style: fontstyle.Bold}))))
		if img.Description != "" {
			m.AddRows(row.New(5).Add(col.New(12).Add(text.New(img.Description, props.Text{Size: 8, Color: pdfGrey}))))
		}
		if !img.HasImage {
			continue
		}
		thumb, err := Thumbnail(img.Src)
		if err != nil {
			log.Printf("export_pdf: skipping image %q: %v", img.FileName, err)
			continue
		}
		m.AddRows(row.New(60).Add(
			image.NewFromBytesCol(12, thumb, extension.Jpg, props.Rect{Center: true, Percent: 95}),
		))
	}
}

// addCompanyFooter adds the legal and bank details of the sender.
func addCompanyFooter(m core.Maroto, data DocumentPayload) {
	c := data.Company
	small := props.Text{Size: 6, Align: align.Left, Color: pdfLightGrey}

	m.AddRows(row.New(8))
	m.AddRows(
		row.New(12).Add(
			col.New(4).Add(
				text.New(c.Name, small),
				text.New(c.LegalName, props.Text{Size: 6, Top: 3, Color: pdfLightGrey}),
				text.New(c.Address, props.Text{Size: 6, Top: 6, Color: pdfLightGrey}),
			),
			col.New(4).Add(
				text.New(c.Manager, small),
				text.New(c.Register, props.Text{Size: 6, Top: 3, Color: pdfLightGrey}),
				text.New(c.TaxID+" · "+c.VATID, props.Text{Size: 6, Top: 6, Color: pdfLightGrey}),
			),
			col.New(4).Add(
				text.New(c.BankName, small),
				text.New(c.BankIBAN, props.Text{Size: 6, Top: 3, Color: pdfLightGrey}),
				text.New(c.ContactEmail+" · "+c.ContactPhone, props.Text{Size: 6, Top: 6, Color: pdfLightGrey}),
			),
		),
	)
}
