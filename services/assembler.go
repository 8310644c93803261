package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options tunes the commercial defaults of an Assembler.
type Options struct {
	VATPercent           float64
	DownPaymentThreshold Money
	DownPaymentPercent   float64
	OfferValidDays       int
	SignatureName        string
	Country              string
	Company              CompanyProfile
}

// DefaultOptions returns the standard terms.
func DefaultOptions() Options {
	return Options{
		VATPercent:           DefaultVATPercent,
		DownPaymentThreshold: Euros(DefaultDownPaymentThreshold),
		DownPaymentPercent:   DefaultDownPaymentPercent,
		OfferValidDays:       7,
		SignatureName:        "Christopher Helm",
		Country:              "Deutschland",
		Company:              DefaultCompanyProfile(),
	}
}

// ServiceUpdate lists the service fields to change. Nil fields stay as they are.
type ServiceUpdate struct {
	Name            *string
	Quantity        *int
	BuildingType    *string
	ApartmentSize   *string
	ProjectType     *string
	AreaSize        *string
	CustomUnitPrice *Money
}

func (u ServiceUpdate) touchesPricing() bool {
	return u.Quantity != nil || u.BuildingType != nil || u.ApartmentSize != nil ||
		u.ProjectType != nil || u.AreaSize != nil || u.CustomUnitPrice != nil
}

// Assembler owns one proposal and keeps its prices, descriptions, totals and
// delivery estimate consistent after every change. It is not safe for
// concurrent use.
type Assembler struct {
	catalog *Catalog
	logger  zerolog.Logger
	opts    Options
	now     func() time.Time

	proposal Proposal
}

// NewAssembler returns an assembler holding an empty proposal.
func NewAssembler(catalog *Catalog, logger zerolog.Logger, opts Options) *Assembler {
	a := &Assembler{
		catalog: catalog,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
	a.Reset()
	return a
}

// SetClock replaces the time source used for offer dates.
func (a *Assembler) SetClock(now func() time.Time) {
	a.now = now
}

// Reset discards the current proposal and starts a fresh one.
func (a *Assembler) Reset() {
	today := a.now()
	a.proposal = Proposal{
		Client: ClientInfo{Country: a.opts.Country},
		Project: ProjectInfo{
			OfferDate:       today,
			OfferValidUntil: today.AddDate(0, 0, a.opts.OfferValidDays),
		},
		Services:  []Service{},
		Images:    []ImageAttachment{},
		Signature: a.opts.SignatureName,
	}
	a.recompute()
}

// Proposal returns a copy of the current state.
func (a *Assembler) Proposal() Proposal {
	return a.proposal.clone()
}

// Load replaces the current state with p and recomputes all derived values.
func (a *Assembler) Load(p Proposal) {
	a.proposal = p.clone()
	if a.proposal.Services == nil {
		a.proposal.Services = []Service{}
	}
	if a.proposal.Images == nil {
		a.proposal.Images = []ImageAttachment{}
	}
	for i := range a.proposal.Services {
		a.reprice(&a.proposal.Services[i])
	}
	a.recompute()
}

// Options returns the options the assembler was built with.
func (a *Assembler) Options() Options {
	return a.opts
}

func (a *Assembler) indexOf(id string) int {
	for i, s := range a.proposal.Services {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// HasService reports whether the service is part of the proposal.
func (a *Assembler) HasService(id string) bool {
	return a.indexOf(id) >= 0
}

func (a *Assembler) placeholderContext(qty int) PlaceholderContext {
	return PlaceholderContext{Quantity: qty, ProjectName: a.proposal.Project.ProjectName}
}

// AddService adds the catalog service id with quantity 1. It does nothing
// when the service is already present or unknown and reports whether a
// service was added.
func (a *Assembler) AddService(id string) bool {
	if a.HasService(id) {
		return false
	}
	entry, ok := a.catalog.Lookup(id)
	if !ok {
		a.logger.Warn().Str("service", id).Msg("add service: not in catalog")
		return false
	}

	svc := Service{
		ID:           entry.ID,
		Name:         entry.Name,
		SubName:      entry.SubName,
		Quantity:     1,
		Description:  Substitute(entry.Description, a.placeholderContext(1)),
		PricingTiers: entry.PricingTiers,
		Link:         entry.Link,
	}
	a.reprice(&svc)
	a.proposal.Services = append(a.proposal.Services, svc)
	a.recompute()
	return true
}

// AddCustomService adds a free-text line item and returns its generated id.
func (a *Assembler) AddCustomService(name string, unitPrice Money, qty int, description []BulletNode) string {
	svc := Service{
		ID:              CustomServicePrefix + uuid.NewString(),
		Name:            name,
		Quantity:        max(qty, 0),
		CustomUnitPrice: unitPrice,
		Description:     CloneTree(description),
		Detached:        true,
	}
	if svc.Description == nil {
		svc.Description = []BulletNode{}
	}
	a.reprice(&svc)
	a.proposal.Services = append(a.proposal.Services, svc)
	a.recompute()
	return svc.ID
}

// RemoveService drops the service. It reports whether anything was removed.
func (a *Assembler) RemoveService(id string) bool {
	i := a.indexOf(id)
	if i < 0 {
		return false
	}
	a.proposal.Services = append(a.proposal.Services[:i], a.proposal.Services[i+1:]...)
	a.recompute()
	return true
}

// UpdateService merges u into the service. Pricing changes reprice the line
// and regenerate a description that was not edited by hand.
func (a *Assembler) UpdateService(id string, u ServiceUpdate) bool {
	i := a.indexOf(id)
	if i < 0 {
		a.logger.Warn().Str("service", id).Msg("update service: not in proposal")
		return false
	}
	svc := &a.proposal.Services[i]

	if u.Name != nil {
		svc.Name = *u.Name
	}
	if u.Quantity != nil {
		svc.Quantity = max(*u.Quantity, 0)
	}
	if u.BuildingType != nil {
		svc.BuildingType = *u.BuildingType
	}
	if u.ApartmentSize != nil {
		svc.ApartmentSize = *u.ApartmentSize
	}
	if u.ProjectType != nil {
		svc.ProjectType = *u.ProjectType
	}
	if u.AreaSize != nil {
		svc.AreaSize = *u.AreaSize
	}
	if u.CustomUnitPrice != nil {
		svc.CustomUnitPrice = *u.CustomUnitPrice
	}

	if u.touchesPricing() {
		a.reprice(svc)
		if u.Quantity != nil {
			a.rederive(svc)
		}
	}
	a.recompute()
	return true
}

// SetDescription replaces a service description and detaches it from the
// catalog default.
func (a *Assembler) SetDescription(id string, tree []BulletNode) error {
	i := a.indexOf(id)
	if i < 0 {
		return fmt.Errorf("set description %s: %w", id, ErrUnknownService)
	}
	a.proposal.Services[i].Description = CloneTree(tree)
	a.proposal.Services[i].Detached = true
	return nil
}

// SetDescriptionText parses dash-indented text into the service description.
func (a *Assembler) SetDescriptionText(id, text string) error {
	return a.SetDescription(id, FromIndentText(text))
}

// EditDescription applies a tree mutation such as InsertChild to a service
// description. A failed edit leaves the description unchanged.
func (a *Assembler) EditDescription(id string, edit func([]BulletNode) ([]BulletNode, error)) error {
	i := a.indexOf(id)
	if i < 0 {
		return fmt.Errorf("edit description %s: %w", id, ErrUnknownService)
	}
	next, err := edit(a.proposal.Services[i].Description)
	if err != nil {
		return err
	}
	a.proposal.Services[i].Description = next
	a.proposal.Services[i].Detached = true
	return nil
}

// SetClient replaces the client block.
func (a *Assembler) SetClient(c ClientInfo) {
	a.proposal.Client = c
}

// SetProject replaces the project block. A new project name or building
// type is pushed into every dependent price and description.
func (a *Assembler) SetProject(p ProjectInfo) {
	prev := a.proposal.Project
	a.proposal.Project = p
	if p.ProjectName != prev.ProjectName {
		for i := range a.proposal.Services {
			a.rederive(&a.proposal.Services[i])
		}
	}
	if p.BuildingType != prev.BuildingType {
		for i := range a.proposal.Services {
			a.reprice(&a.proposal.Services[i])
		}
	}
	a.recompute()
}

// SetOfferNumber attaches the externally assigned offer number.
func (a *Assembler) SetOfferNumber(n string) {
	a.proposal.OfferNumber = n
}

// SetDiscount replaces the discount.
func (a *Assembler) SetDiscount(d Discount) {
	a.proposal.Discount = d
	a.recompute()
}

// ClearDiscount removes the discount.
func (a *Assembler) ClearDiscount() {
	a.SetDiscount(Discount{})
}

// AddImage appends an image attachment.
func (a *Assembler) AddImage(img ImageAttachment) {
	a.proposal.Images = append(a.proposal.Images, img)
}

// RemoveImage drops the image at index.
func (a *Assembler) RemoveImage(index int) error {
	if index < 0 || index >= len(a.proposal.Images) {
		return fmt.Errorf("remove image %d: index out of range", index)
	}
	a.proposal.Images = append(a.proposal.Images[:index], a.proposal.Images[index+1:]...)
	return nil
}

// SetSignature sets the name printed under the proposal.
func (a *Assembler) SetSignature(name string) {
	a.proposal.Signature = name
}

// SetTerm overrides one named terms paragraph. An empty text removes the override.
func (a *Assembler) SetTerm(key, text string) {
	if strings.TrimSpace(text) == "" {
		delete(a.proposal.Terms, key)
		return
	}
	if a.proposal.Terms == nil {
		a.proposal.Terms = map[string]string{}
	}
	a.proposal.Terms[key] = text
}

// Totals returns the current derived totals.
func (a *Assembler) Totals() ProposalTotals {
	return a.proposal.Totals
}

// Delivery returns the current delivery estimate.
func (a *Assembler) Delivery() DeliveryEstimate {
	return a.proposal.Delivery
}

// RecomputeTotals recalculates the totals and delivery estimate and returns the totals.
func (a *Assembler) RecomputeTotals() ProposalTotals {
	a.recompute()
	return a.proposal.Totals
}

func (a *Assembler) reprice(svc *Service) {
	in := svc.priceInput(a.proposal.Project)
	svc.TotalPrice = ServiceTotal(in)
	svc.UnitPrice = ServiceUnitPrice(svc.TotalPrice, svc.Quantity)
	if NeedsSelector(in) {
		a.logger.Warn().Str("service", svc.ID).Msg("pricing selector not configured")
	}
}

// rederive regenerates a catalog description that was not edited by hand.
func (a *Assembler) rederive(svc *Service) {
	if svc.Detached || IsCustomService(svc.ID) {
		return
	}
	entry, ok := a.catalog.Lookup(svc.ID)
	if !ok {
		return
	}
	svc.Description = Substitute(entry.Description, a.placeholderContext(svc.Quantity))
}

func (a *Assembler) recompute() {
	lines := make([]LineTotal, 0, len(a.proposal.Services))
	deliveries := make([]DeliveryLine, 0, len(a.proposal.Services))
	for _, s := range a.proposal.Services {
		lines = append(lines, LineTotal{Quantity: s.Quantity, Total: s.TotalPrice})
		deliveries = append(deliveries, DeliveryLine{ServiceID: s.ID, Quantity: s.Quantity})
	}
	a.proposal.Totals = CalcTotals(lines, a.proposal.Discount, a.opts.VATPercent)
	a.proposal.Delivery = EstimateDelivery(deliveries)
}
