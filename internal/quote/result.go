package quote

import (
	"math"
	"strconv"
	"strings"
)

// Confidence separates locally computed guidance from the priced answer.
type Confidence string

const (
	Provisional Confidence = "provisional"
	Final       Confidence = "final"
)

// Result is the authoritative answer of the pricing service.
type Result struct {
	Success       bool       `json:"success"`
	PredictedCost float64    `json:"predicted_cost"`
	Error         string     `json:"error,omitempty"`
	Confidence    Confidence `json:"confidence"`
}

// DisplayCost is PredictedCost rounded to cents. PredictedCost itself is never rounded.
func (r Result) DisplayCost() float64 {
	return RoundCents(r.PredictedCost)
}

// Estimate is a provisional cost computed without the network.
type Estimate struct {
	Cost       float64    `json:"cost"`
	Confidence Confidence `json:"confidence"`
}

// LocalInputs is the partial form state the local estimator works from.
// Empty regions and a nil weight count as absent.
type LocalInputs struct {
	WeightKg          *float64
	OriginRegion      string
	DestinationRegion string
}

// ParseLocalInputs builds LocalInputs from raw form values. A weight that
// does not parse is treated as absent.
func ParseLocalInputs(weight, origin, destination string) LocalInputs {
	in := LocalInputs{OriginRegion: origin, DestinationRegion: destination}
	if w := strings.TrimSpace(weight); w != "" {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			in.WeightKg = &f
		}
	}
	return in
}

// RoundCents rounds f to two decimal places.
func RoundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

// FormatINR renders amount in rupees with Indian digit grouping,
// e.g. 1234567.5 -> "₹12,34,567.50".
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatFloat(RoundCents(amount), 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		// lakh grouping: pairs above the last three digits
		lead := len(head) % 2
		if lead > 0 {
			b.WriteString(head[:lead])
		}
		for i := lead; i < len(head); i += 2 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(whole)
	}
	return sign + "₹" + b.String() + "." + frac
}
