package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"shipquote/internal/quote"
	"shipquote/internal/rate"
)

const dateLayout = "2006-01-02"

// Shipment is the shipment creation form.
type Shipment struct {
	OriginCity       string  `json:"originCity"`
	OriginState      string  `json:"originState"`
	OriginZip        string  `json:"originZip"`
	DestinationCity  string  `json:"destinationCity"`
	DestinationState string  `json:"destinationState"`
	DestinationZip   string  `json:"destinationZip"`
	ShipmentDate     string  `json:"shipmentDate,omitempty"`
	DeliveryDate     string  `json:"deliveryDate,omitempty"`
	PackageType      string  `json:"packageType"`
	Quantity         int     `json:"packageQuantity"`
	WeightKg         float64 `json:"weight"`
	LengthCm         float64 `json:"length,omitempty"`
	WidthCm          float64 `json:"width,omitempty"`
	HeightCm         float64 `json:"height,omitempty"`
	Fragile          bool    `json:"fragile,omitempty"`
	Hazardous        bool    `json:"hazardous,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

func (s Shipment) Validate() error {
	var v quote.ValidationError
	Required(&v, "originCity", s.OriginCity)
	Required(&v, "destinationCity", s.DestinationCity)
	Required(&v, "packageType", s.PackageType)

	if s.Quantity < 1 {
		v.Add("packageQuantity", "Value must be at least 1")
	}
	if !(s.WeightKg > 0) || math.IsInf(s.WeightKg, 0) {
		v.Add("weight", "Weight must be greater than 0")
	}
	dims := []struct {
		field string
		value float64
	}{{"length", s.LengthCm}, {"width", s.WidthCm}, {"height", s.HeightCm}}
	for _, d := range dims {
		if !(d.value >= 0) || math.IsInf(d.value, 0) {
			v.Add(d.field, "Value must be at least 0")
		}
	}

	shipOn, okShip := parseDate(&v, "shipmentDate", s.ShipmentDate)
	deliverOn, okDeliver := parseDate(&v, "deliveryDate", s.DeliveryDate)
	if okShip && okDeliver && !deliverOn.After(shipOn) {
		v.Add("deliveryDate", "Delivery date must be after the shipment date")
	}
	return v.Err()
}

func parseDate(v *quote.ValidationError, field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		v.Add(field, "Please enter a valid date")
		return time.Time{}, false
	}
	return t, true
}

// Summary is the side-panel digest shown while the shipment form is filled in.
type Summary struct {
	Origin       string         `json:"origin"`
	Destination  string         `json:"destination"`
	DeliveryDate string         `json:"delivery_date,omitempty"`
	Package      string         `json:"package"`
	Weight       string         `json:"weight"`
	Dimensions   string         `json:"dimensions"`
	Estimate     quote.Estimate `json:"estimate"`
}

// Summarize builds the summary once origin city, destination city and weight
// are present; ok is false before that.
func Summarize(s Shipment) (Summary, bool) {
	if s.OriginCity == "" || s.DestinationCity == "" || !(s.WeightKg > 0) {
		return Summary{}, false
	}
	sum := Summary{
		Origin:      fmt.Sprintf("%s, %s %s", s.OriginCity, s.OriginState, s.OriginZip),
		Destination: fmt.Sprintf("%s, %s %s", s.DestinationCity, s.DestinationState, s.DestinationZip),
		Package:     "Not specified",
		Weight:      strconv.FormatFloat(s.WeightKg, 'f', -1, 64) + " kg",
		Dimensions:  "Not specified",
	}
	if d, err := time.Parse(dateLayout, s.DeliveryDate); err == nil {
		sum.DeliveryDate = d.Format("Jan 2, 2006")
	}
	if s.PackageType != "" {
		qty := s.Quantity
		if qty < 1 {
			qty = 1
		}
		sum.Package = fmt.Sprintf("%s (%d)", capitalize(s.PackageType), qty)
	}
	if s.LengthCm > 0 && s.WidthCm > 0 && s.HeightCm > 0 {
		sum.Dimensions = fmt.Sprintf("%s × %s × %s cm", num(s.LengthCm), num(s.WidthCm), num(s.HeightCm))
	}

	w := s.WeightKg
	sum.Estimate = rate.EstimateLocal(quote.LocalInputs{
		WeightKg:          &w,
		OriginRegion:      s.OriginState,
		DestinationRegion: s.DestinationState,
	})
	return sum, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToTitle(r)) + s[size:]
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
