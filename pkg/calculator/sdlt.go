// Package calculator holds the stamp duty (SDLT) and mortgage calculators shown
// on the property detail page. Everything here is pure and safe for concurrent use.
package calculator

import (
	"fmt"
	"math"
)

// Band is one marginal tax bracket. Rate applies to the slice of the price above
// the previous band's UpTo and up to this band's UpTo.
type Band struct {
	UpTo float64
	Rate float64
}

var (
	StandardBands = []Band{
		{UpTo: 125000, Rate: 0},
		{UpTo: 250000, Rate: 2},
		{UpTo: 925000, Rate: 5},
		{UpTo: 1500000, Rate: 10},
		{UpTo: math.Inf(1), Rate: 12},
	}
	FirstTimeBuyerBands = []Band{
		{UpTo: 300000, Rate: 0},
		{UpTo: 500000, Rate: 5},
	}
)

const (
	// FirstTimeBuyerCeiling is the highest price that still qualifies for relief.
	// Above it the whole purchase is taxed on StandardBands.
	FirstTimeBuyerCeiling = 500000

	AdditionalPropertySurcharge = 5
	NonResidentSurcharge        = 2
)

type SDLTInput struct {
	PropertyPrice            float64 `json:"propertyPrice"`
	IsFirstTimeBuyer         bool    `json:"isFirstTimeBuyer"`
	OwnsAdditionalProperty   bool    `json:"ownsAdditionalProperty"`
	IsNonUKResident          bool    `json:"isNonUKResident"`
	IsReplacingMainResidence bool    `json:"isReplacingMainResidence"`
}

type BandCharge struct {
	RatePercent    float64 `json:"ratePercent"`
	TaxAmount      float64 `json:"taxAmount"`
	TaxablePortion float64 `json:"taxablePortion"`
}

type SDLTResult struct {
	TotalTax  int64        `json:"totalTax"`
	Breakdown []BandCharge `json:"breakdown"`
	price     float64
}

// EffectiveRate is the total tax as a percentage of the price.
func (r SDLTResult) EffectiveRate() float64 {
	if r.price <= 0 {
		return 0
	}
	return float64(r.TotalTax) / r.price * 100
}

// Surcharge returns the percentage points added to every band for these buyer flags.
func (in SDLTInput) Surcharge() float64 {
	var s float64
	if in.OwnsAdditionalProperty && !in.IsReplacingMainResidence {
		s += AdditionalPropertySurcharge
	}
	if in.IsNonUKResident {
		s += NonResidentSurcharge
	}
	return s
}

// Bands returns the table in force: first-time buyer relief up to and including the
// ceiling, standard bands otherwise.
func (in SDLTInput) Bands() []Band {
	if in.IsFirstTimeBuyer && in.PropertyPrice <= FirstTimeBuyerCeiling {
		return FirstTimeBuyerBands
	}
	return StandardBands
}

// CalculateSDLT computes the progressive stamp duty for a purchase.
func CalculateSDLT(in SDLTInput) (SDLTResult, error) {
	price := in.PropertyPrice
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return SDLTResult{}, &ValidationError{Field: "propertyPrice", Reason: "must be a finite number"}
	}
	if price <= 0 {
		return SDLTResult{}, &ValidationError{Field: "propertyPrice", Reason: fmt.Sprintf("must be positive, got %v", price)}
	}

	total, breakdown := applyBands(price, in.Bands(), in.Surcharge())
	return SDLTResult{
		TotalTax:  int64(math.Round(total)),
		Breakdown: breakdown,
		price:     price,
	}, nil
}

func applyBands(price float64, bands []Band, surcharge float64) (float64, []BandCharge) {
	var total, previous float64
	breakdown := make([]BandCharge, 0, len(bands))
	for _, b := range bands {
		portion := math.Min(price, b.UpTo) - previous
		if portion <= 0 {
			break
		}
		rate := b.Rate + surcharge
		tax := portion * rate / 100
		total += tax
		breakdown = append(breakdown, BandCharge{
			RatePercent:    rate,
			TaxAmount:      tax,
			TaxablePortion: portion,
		})
		previous = b.UpTo
	}
	return total, breakdown
}
