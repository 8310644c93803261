package services

import (
	"math"
	"strings"
)

// Money is an amount in euro cents.
type Money int64

// Euros converts whole euros into Money.
func Euros(n int64) Money {
	return Money(n * 100)
}

// MoneyFromFloat converts a euro amount into Money, rounding to the nearest cent.
func MoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

// Float returns the amount in euros.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Times multiplies the amount by an integer quantity.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// Percent returns p percent of m, rounded half away from zero to the cent.
func (m Money) Percent(p float64) Money {
	return Money(math.Round(float64(m) * p / 100))
}

// CustomServicePrefix marks free-text line items that are not in the catalog.
const CustomServicePrefix = "custom-"

// Project types used by the area-bracket and tiered rules.
const (
	ProjectTypeResidential = "residential"
	ProjectTypeCommercial  = "commercial"
)

// PriceInput carries everything a pricing rule may look at.
type PriceInput struct {
	ServiceID     string
	Quantity      int
	BuildingType  string
	ApartmentSize string
	ProjectType   string
	AreaSize      string
	// CustomUnitPrice wins over every rule when positive.
	CustomUnitPrice Money
	// ProjectBuildingType is used when the service has no building type of its own.
	ProjectBuildingType string
}

// IsCustomService reports whether id names a free-text line item.
func IsCustomService(id string) bool {
	return strings.HasPrefix(id, CustomServicePrefix)
}

// ServiceTotal computes the net total of one service line.
// Rules that depend on an unset selector yield 0.
func ServiceTotal(in PriceInput) Money {
	if in.Quantity <= 0 {
		return 0
	}
	if IsCustomService(in.ServiceID) || in.CustomUnitPrice > 0 {
		return in.CustomUnitPrice.Times(in.Quantity)
	}
	rule, ok := pricingRules[in.ServiceID]
	if !ok {
		return 0
	}
	return rule(in)
}

// ServiceUnitPrice is the per-unit price shown next to a line: total / quantity.
func ServiceUnitPrice(total Money, qty int) Money {
	if qty <= 0 {
		return 0
	}
	return Money(math.Round(float64(total) / float64(qty)))
}

// NeedsSelector reports whether the service's price depends on a selector
// that has not been chosen yet.
func NeedsSelector(in PriceInput) bool {
	if IsCustomService(in.ServiceID) || in.CustomUnitPrice > 0 {
		return false
	}
	switch in.ServiceID {
	case "exterior-ground":
		return buildingTypeFor(in) == ""
	case "360-exterior":
		return in.BuildingType == ""
	case "360-interior":
		return in.ApartmentSize == ""
	case "3d-floorplan", "2d-floorplan":
		return in.ProjectType == ProjectTypeCommercial && in.AreaSize == ""
	}
	return false
}

type priceRule func(in PriceInput) Money

func flatRate(euros int64) priceRule {
	return func(in PriceInput) Money {
		return Euros(euros).Times(in.Quantity)
	}
}

func onRequest(PriceInput) Money { return 0 }

// lookupRate prices per unit from a table keyed by a selector value.
func lookupRate(table map[string]int64, selector func(PriceInput) string) priceRule {
	return func(in PriceInput) Money {
		price, ok := table[selector(in)]
		if !ok {
			return 0
		}
		return Euros(price).Times(in.Quantity)
	}
}

// tieredRate picks the per-unit price by quantity position, using beyond
// once the quantity runs past the table.
func tieredRate(tiers []int64, beyond int64, quantity int) Money {
	if quantity > len(tiers) {
		return Euros(beyond).Times(quantity)
	}
	return Euros(tiers[quantity-1]).Times(quantity)
}

var exteriorGroundMatrix = map[string][]int64{
	"EFH":       {499, 349, 299, 229, 199},
	"DHH":       {599, 399, 359, 329, 299},
	"MFH-3-5":   {599, 399, 359, 329, 299},
	"MFH-6-10":  {699, 499, 399, 349, 329},
	"MFH-11-15": {799, 599, 499, 399, 349},
}

var (
	interiorResidentialTiers = []int64{399, 299, 289, 269, 259, 249, 239, 229, 219}
	interiorCommercialTiers  = []int64{499, 399, 389, 369, 359, 349, 339, 329, 319}
)

var floorplan3DAreaPrices = map[string]int64{
	"100": 99, "250": 199, "500": 299, "1000": 399, "1500": 499,
}

var floorplan2DAreaPrices = map[string]int64{
	"100": 39, "250": 79, "500": 119, "1000": 159, "1500": 199,
}

var interiorTourPrices = map[string]int64{
	"30": 999, "40": 1299, "50": 1499, "60": 1699, "70": 1799,
	"80": 1899, "90": 1999, "100": 2299, "EFH": 2499,
}

var exteriorTourPrices = map[string]int64{
	"EFH-DHH": 1299, "MFH-3-5": 1299, "MFH-6-10": 1699, "MFH-11-15": 1999,
}

func buildingTypeFor(in PriceInput) string {
	if in.BuildingType != "" {
		return in.BuildingType
	}
	return in.ProjectBuildingType
}

func priceExteriorGround(in PriceInput) Money {
	row, ok := exteriorGroundMatrix[buildingTypeFor(in)]
	if !ok {
		return 0
	}
	bracket := min(in.Quantity, len(row))
	return Euros(row[bracket-1]).Times(in.Quantity)
}

func priceExteriorBird(in PriceInput) Money {
	switch in.Quantity {
	case 1:
		return Euros(199)
	case 2:
		return Euros(298)
	}
	return Euros(99).Times(in.Quantity)
}

func priceInterior(in PriceInput) Money {
	if in.ProjectType == ProjectTypeCommercial {
		return tieredRate(interiorCommercialTiers, 299, in.Quantity)
	}
	return tieredRate(interiorResidentialTiers, 199, in.Quantity)
}

// areaBracket prices commercial projects from an area table and everything
// else at a flat residential rate.
func areaBracket(table map[string]int64, residential int64) priceRule {
	commercial := lookupRate(table, func(in PriceInput) string { return in.AreaSize })
	return func(in PriceInput) Money {
		if in.ProjectType == ProjectTypeCommercial {
			return commercial(in)
		}
		return Euros(residential).Times(in.Quantity)
	}
}

var pricingRules = map[string]priceRule{
	"exterior-ground":      priceExteriorGround,
	"exterior-bird":        priceExteriorBird,
	"interior":             priceInterior,
	"3d-floorplan":         areaBracket(floorplan3DAreaPrices, 69),
	"2d-floorplan":         areaBracket(floorplan2DAreaPrices, 49),
	"3d-floorplan-special": flatRate(99),
	"3d-complete-floor":    flatRate(199),
	"2d-floor-view":        flatRate(99),
	"2d-garage-plan":       flatRate(99),
	"home-staging":         flatRate(99),
	"renovation":           flatRate(139),
	"renovation-exterior":  flatRate(189),
	"timelapse-exterior":   flatRate(899),
	"ki-video":             flatRate(299),
	"2d-micro-location":    flatRate(129),
	"2d-macro-location":    flatRate(129),
	"360-interior":         lookupRate(interiorTourPrices, func(in PriceInput) string { return in.ApartmentSize }),
	"360-exterior":         lookupRate(exteriorTourPrices, func(in PriceInput) string { return in.BuildingType }),
	"slideshow":            onRequest,
	"site-plan":            onRequest,
	"social-media":         onRequest,
	"terrace":              onRequest,
	"video-snippet":        onRequest,
	"expose-layout":        onRequest,
	"expose-creation":      onRequest,
	"project-branding":     onRequest,
	"project-website":      onRequest,
	"flat-finder":          onRequest,
	"online-marketing":     onRequest,
}

// IsPricedOnRequest reports whether the service has no price formula.
func IsPricedOnRequest(id string) bool {
	switch id {
	case "slideshow", "site-plan", "social-media", "terrace", "video-snippet",
		"expose-layout", "expose-creation", "project-branding", "project-website",
		"flat-finder", "online-marketing":
		return true
	}
	return false
}
