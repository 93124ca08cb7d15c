package rate

import (
	"math"

	"shipquote/internal/quote"
)

// Estimator defines the interface for provisional cost engines.
type Estimator interface {
	Estimate(in quote.LocalInputs) quote.Estimate
}

// Heuristic is a linear cost model: (base + weight surcharge) scaled when the
// shipment crosses regions. It has no distance model; region inequality is
// the only signal.
type Heuristic struct {
	BaseCost          float64
	PerKg             float64
	InterRegionFactor float64
}

// NewLocal returns the heuristic used for instant form feedback.
func NewLocal() *Heuristic {
	return &Heuristic{BaseCost: 50, PerKg: 5, InterRegionFactor: 1.5}
}

// Estimate never fails: absent or malformed inputs contribute nothing.
func (h *Heuristic) Estimate(in quote.LocalInputs) quote.Estimate {
	weightCost := 0.0
	if w := in.WeightKg; w != nil && *w >= 0 && !math.IsInf(*w, 0) && !math.IsNaN(*w) {
		weightCost = *w * h.PerKg
	}
	factor := 1.0
	if in.OriginRegion != "" && in.DestinationRegion != "" && in.OriginRegion != in.DestinationRegion {
		factor = h.InterRegionFactor
	}
	return quote.Estimate{
		Cost:       quote.RoundCents((h.BaseCost + weightCost) * factor),
		Confidence: quote.Provisional,
	}
}

var local = NewLocal()

// EstimateLocal computes the provisional estimate with the default heuristic.
func EstimateLocal(in quote.LocalInputs) quote.Estimate {
	return local.Estimate(in)
}
