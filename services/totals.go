package services

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	DiscountNone       DiscountKind = ""
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DefaultVATPercent is the German standard VAT rate.
const DefaultVATPercent = 19

// Discount applies once to the proposal subtotal.
type Discount struct {
	Kind DiscountKind `json:"type"`
	// Value is a percentage for DiscountPercentage and euros for DiscountFixed.
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Active reports whether the discount changes the totals.
func (d Discount) Active() bool {
	return d.Kind != DiscountNone && d.Value > 0
}

// Amount returns the discount for the given subtotal.
func (d Discount) Amount(subtotal Money) Money {
	if !d.Active() {
		return 0
	}
	switch d.Kind {
	case DiscountPercentage:
		return subtotal.Percent(d.Value)
	case DiscountFixed:
		return MoneyFromFloat(d.Value)
	}
	return 0
}

// ProposalTotals holds the derived money figures of a proposal.
type ProposalTotals struct {
	SubtotalNet    Money
	DiscountAmount Money
	TotalNet       Money
	TotalVAT       Money
	TotalGross     Money
}

// LineTotal is the part of a service line that feeds the totals.
type LineTotal struct {
	Quantity int
	Total    Money
}

// CalcTotals sums the lines with a positive quantity, applies the discount
// and adds VAT. The net total is not clamped at zero.
func CalcTotals(lines []LineTotal, discount Discount, vatPercent float64) ProposalTotals {
	var subtotal Money
	for _, l := range lines {
		if l.Quantity > 0 {
			subtotal += l.Total
		}
	}

	discountAmount := discount.Amount(subtotal)
	net := subtotal - discountAmount
	vat := net.Percent(vatPercent)

	return ProposalTotals{
		SubtotalNet:    subtotal,
		DiscountAmount: discountAmount,
		TotalNet:       net,
		TotalVAT:       vat,
		TotalGross:     net + vat,
	}
}

// Default down payment terms.
const (
	DefaultDownPaymentThreshold = 5000
	DefaultDownPaymentPercent   = 50
)

// DownPayment describes the advance payment condition of a proposal.
type DownPayment struct {
	Required  bool
	Amount    Money
	Threshold Money
}

// CalcDownPayment requires percent of the gross total once it exceeds threshold.
func CalcDownPayment(gross, threshold Money, percent float64) DownPayment {
	dp := DownPayment{Threshold: threshold}
	if gross > threshold {
		dp.Required = true
		dp.Amount = gross.Percent(percent)
	}
	return dp
}
