package services

import (
	"fmt"
)

// CompanyProfile is the sender block printed in the document footer.
type CompanyProfile struct {
	Name         string `json:"name" mapstructure:"name"`
	LegalName    string `json:"legalName" mapstructure:"legal_name"`
	Manager      string `json:"manager" mapstructure:"manager"`
	Address      string `json:"address" mapstructure:"address"`
	Register     string `json:"register" mapstructure:"register"`
	TaxID        string `json:"taxId" mapstructure:"tax_id"`
	VATID        string `json:"vatId" mapstructure:"vat_id"`
	BankName     string `json:"bankName" mapstructure:"bank_name"`
	BankIBAN     string `json:"bankIban" mapstructure:"bank_iban"`
	ContactEmail string `json:"contactEmail" mapstructure:"contact_email"`
	ContactWeb   string `json:"contactWeb" mapstructure:"contact_web"`
	ContactPhone string `json:"contactPhone" mapstructure:"contact_phone"`
}

// DefaultCompanyProfile returns the sender details used when none are configured.
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		Name:         "ExposeProfi.de",
		LegalName:    "EPCS GmbH",
		Manager:      "GF: Christopher Helm",
		Address:      "Bruder-Klaus-Str. 3a, 78467 Konstanz",
		Register:     "HRB 725172, Amtsgericht Freiburg",
		TaxID:        "St.-Nr: 0908011277",
		VATID:        "USt-ID: DE347265281",
		BankName:     "Qonto (Banque de France)",
		BankIBAN:     "IBAN DE62100101239488471916",
		ContactEmail: "christopher.helm@exposeprofi.de",
		ContactWeb:   "www.exposeprofi.de",
		ContactPhone: "Tel: +49-7531-1227491",
	}
}

// PayloadService is one service line as handed to a renderer.
type PayloadService struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	SubName      string       `json:"subName,omitempty"`
	Quantity     int          `json:"quantity"`
	Description  []BulletNode `json:"description"`
	PricingTiers []string     `json:"pricing"`
	HasPricing   bool         `json:"hasPricing"`
	Link         string       `json:"link,omitempty"`
	UnitPrice    string       `json:"unitPrice"`
	TotalPrice   string       `json:"totalPrice"`
	OnRequest    bool         `json:"onRequest"`
}

// PayloadImage is one image as handed to a renderer.
type PayloadImage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"fileName"`
	SizeLabel   string `json:"sizeLabel"`
	HasImage    bool   `json:"hasImage"`
	Src         string `json:"src,omitempty"`
}

// DocumentPayload is the fully resolved, plain data view of a proposal.
// Prices are German formatted strings.
type DocumentPayload struct {
	CompanyName string `json:"companyName"`
	Street      string `json:"street"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Country     string `json:"country"`

	OfferNumber     string `json:"offerNumber"`
	Date            string `json:"date"`
	OfferValidUntil string `json:"offerValidUntil"`
	OfferValidDay   string `json:"offerValidDay"`
	OfferValidMonth string `json:"offerValidMonth"`
	DeliveryTime    string `json:"deliveryTime"`
	DeliveryDaysMin int    `json:"deliveryDaysMin"`
	DeliveryDaysMax int    `json:"deliveryDaysMax"`
	ProjectName     string `json:"projectName"`
	ProjectNumber   string `json:"projectNumber"`

	RequiresDownPayment  bool   `json:"requiresDownPayment"`
	DownPaymentAmount    string `json:"downPaymentAmount"`
	DownPaymentThreshold string `json:"downPaymentThreshold"`

	Services    []PayloadService `json:"services"`
	HasServices bool             `json:"hasServices"`
	Images      []PayloadImage   `json:"images"`
	HasImages   bool             `json:"hasImages"`

	SubtotalNet         string `json:"subtotalNet"`
	HasDiscount         bool   `json:"hasDiscount"`
	DiscountDescription string `json:"discountDescription"`
	DiscountAmount      string `json:"discountAmount"`
	DiscountType        string `json:"discountType"`
	TotalNet            string `json:"totalNetPrice"`
	TotalVAT            string `json:"totalVat"`
	TotalGross          string `json:"totalGrossPrice"`

	SignatureName string            `json:"signatureName"`
	Terms         map[string]string `json:"terms,omitempty"`
	Company       CompanyProfile    `json:"company"`
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ToDocumentPayload builds the renderer input from the current state. The
// result shares no memory with the assembler.
func (a *Assembler) ToDocumentPayload() DocumentPayload {
	p := a.proposal.clone()
	totals := p.Totals

	offerNumber := p.OfferNumber
	if offerNumber == "" {
		offerNumber = PendingOfferNumber(p.Project.OfferDate)
	}

	validDay, validMonth := "XX", "XX"
	if !p.Project.OfferValidUntil.IsZero() {
		validDay = fmt.Sprintf("%02d", p.Project.OfferValidUntil.Day())
		validMonth = fmt.Sprintf("%02d", int(p.Project.OfferValidUntil.Month()))
	}

	down := CalcDownPayment(totals.TotalGross, a.opts.DownPaymentThreshold, a.opts.DownPaymentPercent)

	payload := DocumentPayload{
		CompanyName: orDefault(p.Client.CompanyName, "Firma"),
		Street:      orDefault(p.Client.Street, "Straße"),
		PostalCode:  orDefault(p.Client.PostalCode, "PLZ"),
		City:        orDefault(p.Client.City, "Ort"),
		Country:     orDefault(p.Client.Country, "Deutschland"),

		OfferNumber:     offerNumber,
		Date:            FormatGermanDate(p.Project.OfferDate),
		OfferValidUntil: FormatGermanDate(p.Project.OfferValidUntil),
		OfferValidDay:   validDay,
		OfferValidMonth: validMonth,
		DeliveryTime:    p.Delivery.Label(),
		DeliveryDaysMin: p.Delivery.MinDays,
		DeliveryDaysMax: p.Delivery.MaxDays,
		ProjectName:     p.Project.ProjectName,
		ProjectNumber:   p.Project.ProjectNumber,

		RequiresDownPayment:  down.Required,
		DownPaymentAmount:    FormatEUR(down.Amount),
		DownPaymentThreshold: FormatEUR(down.Threshold),

		Services: make([]PayloadService, 0, len(p.Services)),
		Images:   make([]PayloadImage, 0, len(p.Images)),

		SubtotalNet:    FormatEUR(totals.SubtotalNet),
		DiscountAmount: FormatEUR(totals.DiscountAmount),
		TotalNet:       FormatEUR(totals.TotalNet),
		TotalVAT:       FormatEUR(totals.TotalVAT),
		TotalGross:     FormatEUR(totals.TotalGross),

		SignatureName: orDefault(p.Signature, a.opts.SignatureName),
		Terms:         p.Terms,
		Company:       a.opts.Company,
	}

	for _, s := range p.Services {
		tiers := make([]string, 0, len(s.PricingTiers))
		for _, t := range s.PricingTiers {
			tiers = append(tiers, t.Label)
		}
		payload.Services = append(payload.Services, PayloadService{
			ID:           s.ID,
			Name:         s.Name,
			SubName:      s.SubName,
			Quantity:     s.Quantity,
			Description:  s.Description,
			PricingTiers: tiers,
			HasPricing:   len(tiers) > 0,
			Link:         s.Link,
			UnitPrice:    FormatEUR(s.UnitPrice),
			TotalPrice:   FormatEUR(s.TotalPrice),
			OnRequest:    IsPricedOnRequest(s.ID) && s.CustomUnitPrice == 0,
		})
	}
	payload.HasServices = len(payload.Services) > 0

	for _, img := range p.Images {
		payload.Images = append(payload.Images, PayloadImage{
			Title:       img.Title,
			Description: img.Description,
			FileName:    img.FileName,
			SizeLabel:   FileSizeLabel(img.FileSize),
			HasImage:    img.Data != "",
			Src:         img.Data,
		})
	}
	payload.HasImages = len(payload.Images) > 0

	if p.Discount.Active() {
		payload.HasDiscount = true
		payload.DiscountDescription = orDefault(p.Discount.Description, "Rabatt")
		payload.DiscountType = "€"
		if p.Discount.Kind == DiscountPercentage {
			payload.DiscountType = "%"
		}
	}

	return payload
}
