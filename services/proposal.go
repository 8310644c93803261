package services

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalJSON writes the amount as a euro number, e.g. 199.5.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Float())
}

// UnmarshalJSON reads a euro number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = MoneyFromFloat(f)
	return nil
}

// ClientInfo is the addressee block of a proposal.
type ClientInfo struct {
	ClientNumber string `json:"clientNumber"`
	CompanyName  string `json:"companyName"`
	Street       string `json:"street"`
	PostalCode   string `json:"postalCode"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

// ProjectInfo describes the project the proposal is for.
type ProjectInfo struct {
	ProjectNumber string `json:"projectNumber"`
	ProjectName   string `json:"projectName"`
	// BuildingType (EFH, DHH, MFH-3-5, ...) prices services that have no own selector.
	BuildingType      string    `json:"buildingType"`
	CustomProjectType string    `json:"customProjectType,omitempty"`
	OfferDate         time.Time `json:"date"`
	OfferValidUntil   time.Time `json:"offerValidUntil"`
}

// Service is one line item of a proposal.
type Service struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SubName  string `json:"subName,omitempty"`
	Quantity int    `json:"quantity"`

	UnitPrice  Money `json:"unitPrice"`
	TotalPrice Money `json:"totalPrice"`

	BuildingType    string `json:"buildingType,omitempty"`
	ApartmentSize   string `json:"apartmentSize,omitempty"`
	ProjectType     string `json:"projectType,omitempty"`
	AreaSize        string `json:"areaSize,omitempty"`
	CustomUnitPrice Money  `json:"customPrice,omitempty"`

	Description  []BulletNode  `json:"description"`
	PricingTiers []PricingTier `json:"pricingTiers,omitempty"`
	Link         string        `json:"link,omitempty"`

	// Detached is set once the description was edited by hand. A detached
	// description is never regenerated from the catalog default.
	Detached bool `json:"detached,omitempty"`
}

func (s Service) priceInput(project ProjectInfo) PriceInput {
	return PriceInput{
		ServiceID:           s.ID,
		Quantity:            s.Quantity,
		BuildingType:        s.BuildingType,
		ApartmentSize:       s.ApartmentSize,
		ProjectType:         s.ProjectType,
		AreaSize:            s.AreaSize,
		CustomUnitPrice:     s.CustomUnitPrice,
		ProjectBuildingType: project.BuildingType,
	}
}

func (s Service) clone() Service {
	s.Description = CloneTree(s.Description)
	s.PricingTiers = append([]PricingTier(nil), s.PricingTiers...)
	return s
}

// ImageAttachment is a picture shown in the proposal's reference section.
type ImageAttachment struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	FileType    string `json:"fileType"`
	// Data is a base64 data URL; it may be empty after a compact save.
	Data string `json:"imageData,omitempty"`
}

// Proposal is the complete editable state of one offer.
type Proposal struct {
	OfferNumber string            `json:"offerNumber,omitempty"`
	Client      ClientInfo        `json:"clientInfo"`
	Project     ProjectInfo       `json:"projectInfo"`
	Services    []Service         `json:"services"`
	Images      []ImageAttachment `json:"images"`
	Discount    Discount          `json:"discount"`
	Signature   string            `json:"signatureName"`
	Terms       map[string]string `json:"terms,omitempty"`

	Totals   ProposalTotals   `json:"-"`
	Delivery DeliveryEstimate `json:"-"`
}

func (p Proposal) clone() Proposal {
	out := p
	out.Services = make([]Service, len(p.Services))
	for i, s := range p.Services {
		out.Services[i] = s.clone()
	}
	out.Images = append([]ImageAttachment(nil), p.Images...)
	if p.Terms != nil {
		out.Terms = make(map[string]string, len(p.Terms))
		for k, v := range p.Terms {
			out.Terms[k] = v
		}
	}
	return out
}

// ServiceByID returns the service with the given id.
func (p Proposal) ServiceByID(id string) (Service, bool) {
	for _, s := range p.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}
