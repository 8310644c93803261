package services

import (
	"fmt"
	"time"
)

// Processing buffer added on top of the slowest service.
const (
	deliveryBufferMin = 2
	deliveryBufferMax = 3
)

// UndeterminedDeliveryLabel is shown while no service is selected.
const UndeterminedDeliveryLabel = "XXX Werktage"

// DeliveryEstimate is a working-day range for the whole proposal.
type DeliveryEstimate struct {
	MinDays int
	MaxDays int
	// Determined is false when no service was selected.
	Determined bool
}

// Label renders the estimate the way it appears on the proposal.
func (d DeliveryEstimate) Label() string {
	if !d.Determined {
		return UndeterminedDeliveryLabel
	}
	if d.MinDays == d.MaxDays {
		return fmt.Sprintf("%d Werktage", d.MinDays)
	}
	return fmt.Sprintf("%d-%d Werktage", d.MinDays, d.MaxDays)
}

// DeliveryLine is the part of a service that feeds the estimate.
type DeliveryLine struct {
	ServiceID string
	Quantity  int
}

type dayRange struct {
	min, max int
	perUnit  bool
}

var deliveryTable = map[string]dayRange{
	"exterior-ground":   {7, 10, true},
	"exterior-bird":     {7, 10, true},
	"interior":          {5, 7, true},
	"terrace":           {5, 7, false},
	"3d-floorplan":      {3, 5, true},
	"3d-complete-floor": {5, 7, true},
	"2d-floorplan":      {2, 3, true},
	"home-staging":      {3, 5, true},
	"renovation":        {3, 5, true},
	"360-interior":      {10, 14, false},
	"360-exterior":      {7, 10, false},
	"slideshow":         {5, 7, false},
	"site-plan":         {5, 7, false},
	"social-media":      {2, 3, false},
	"video-snippet":     {3, 5, false},
	"expose-layout":     {7, 10, false},
	"expose-creation":   {5, 7, false},
}

var defaultDayRange = dayRange{5, 7, false}

// ServiceDeliveryDays returns the working-day range of a single service.
func ServiceDeliveryDays(id string, quantity int) (minDays, maxDays int) {
	r, ok := deliveryTable[id]
	if !ok {
		r = defaultDayRange
	}
	if r.perUnit {
		return r.min * quantity, r.max * quantity
	}
	return r.min, r.max
}

// EstimateDelivery combines service ranges by taking the slowest minimum and
// the slowest maximum, then adds the processing buffer.
func EstimateDelivery(lines []DeliveryLine) DeliveryEstimate {
	if len(lines) == 0 {
		return DeliveryEstimate{}
	}

	var est DeliveryEstimate
	for _, l := range lines {
		lo, hi := ServiceDeliveryDays(l.ServiceID, l.Quantity)
		est.MinDays = max(est.MinDays, lo)
		est.MaxDays = max(est.MaxDays, hi)
	}
	est.MinDays += deliveryBufferMin
	est.MaxDays += deliveryBufferMax
	est.Determined = true
	return est
}

// AddWorkingDays moves start forward by n days, skipping Saturdays and Sundays.
func AddWorkingDays(start time.Time, n int) time.Time {
	d := start
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}
