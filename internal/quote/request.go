package quote

import (
	"math"
	"strings"
)

// Defaults applied to a request before validation when the field is absent or invalid.
const (
	DefaultOriginZip      = 110001
	DefaultDestinationZip = 10001
	DefaultDeclaredValue  = 10000.0
)

// Request describes a complete shipment to be priced by the remote service.
type Request struct {
	OriginCountry      string  `json:"origin_country" yaml:"origin_country"`
	OriginZip          int     `json:"origin_zip" yaml:"origin_zip"`
	DestinationCountry string  `json:"destination_country" yaml:"destination_country"`
	DestinationZip     int     `json:"destination_zip" yaml:"destination_zip"`
	PackageType        string  `json:"package_type" yaml:"package_type"`
	Quantity           int     `json:"quantity" yaml:"quantity"`
	WeightKg           float64 `json:"weight_kg" yaml:"weight_kg"`
	LengthCm           float64 `json:"length_cm" yaml:"length_cm"`
	WidthCm            float64 `json:"width_cm" yaml:"width_cm"`
	HeightCm           float64 `json:"height_cm" yaml:"height_cm"`
	DeclaredValue      float64 `json:"declared_value" yaml:"declared_value"`
	ContentType        string  `json:"content_type" yaml:"content_type"`
	ServiceLevel       string  `json:"service_level" yaml:"service_level"`
	TransportMode      string  `json:"transport_mode" yaml:"transport_mode"`
	AddInsurance       Flag    `json:"add_insurance" yaml:"add_insurance"`
	SignatureRequired  Flag    `json:"signature_required" yaml:"signature_required"`
	Tracking           Flag    `json:"tracking" yaml:"tracking"`
}

// WithDefaults returns a copy of r with the zip codes and declared value
// filled in where they are absent or unusable.
func (r Request) WithDefaults() Request {
	if r.OriginZip <= 0 {
		r.OriginZip = DefaultOriginZip
	}
	if r.DestinationZip <= 0 {
		r.DestinationZip = DefaultDestinationZip
	}
	if !positive(r.DeclaredValue) {
		r.DeclaredValue = DefaultDeclaredValue
	}
	return r
}

// Payload is the flat wire form sent to the pricing service.
// Boolean flags travel as 0/1.
type Payload struct {
	OriginCountry      string  `json:"origin_country"`
	OriginZip          int     `json:"origin_zip"`
	DestinationCountry string  `json:"destination_country"`
	DestinationZip     int     `json:"destination_zip"`
	PackageType        string  `json:"package_type"`
	Quantity           int     `json:"quantity"`
	WeightKg           float64 `json:"weight_kg"`
	LengthCm           float64 `json:"length_cm"`
	WidthCm            float64 `json:"width_cm"`
	HeightCm           float64 `json:"height_cm"`
	DeclaredValue      float64 `json:"declared_value"`
	ContentType        string  `json:"content_type"`
	ServiceLevel       string  `json:"service_level"`
	TransportMode      string  `json:"transport_mode"`
	AddInsurance       int     `json:"add_insurance"`
	SignatureRequired  int     `json:"signature_required"`
	Tracking           int     `json:"tracking"`
}

// Wire converts the request into its wire payload. Callers validate first.
func (r Request) Wire() Payload {
	return Payload{
		OriginCountry:      r.OriginCountry,
		OriginZip:          r.OriginZip,
		DestinationCountry: r.DestinationCountry,
		DestinationZip:     r.DestinationZip,
		PackageType:        r.PackageType,
		Quantity:           r.Quantity,
		WeightKg:           r.WeightKg,
		LengthCm:           r.LengthCm,
		WidthCm:            r.WidthCm,
		HeightCm:           r.HeightCm,
		DeclaredValue:      r.DeclaredValue,
		ContentType:        r.ContentType,
		ServiceLevel:       r.ServiceLevel,
		TransportMode:      r.TransportMode,
		AddInsurance:       r.AddInsurance.Int(),
		SignatureRequired:  r.SignatureRequired.Int(),
		Tracking:           r.Tracking.Int(),
	}
}

// Enums restricts the enumerated request fields to caller-defined sets.
// An empty set accepts any non-empty value.
type Enums struct {
	PackageTypes   []string `yaml:"package_types"`
	ContentTypes   []string `yaml:"content_types"`
	ServiceLevels  []string `yaml:"service_levels"`
	TransportModes []string `yaml:"transport_modes"`
}

// Validate checks every invariant of r and returns a *ValidationError naming
// each failing field, or nil.
func (e Enums) Validate(r Request) error {
	var v ValidationError

	v.requireText("origin_country", r.OriginCountry)
	v.requireText("destination_country", r.DestinationCountry)
	v.requireMember("package_type", r.PackageType, e.PackageTypes)
	v.requireMember("content_type", r.ContentType, e.ContentTypes)
	v.requireMember("service_level", r.ServiceLevel, e.ServiceLevels)
	v.requireMember("transport_mode", r.TransportMode, e.TransportModes)

	if r.Quantity <= 0 {
		v.Add("quantity", "must be a positive integer")
	}
	v.requirePositive("weight_kg", r.WeightKg)
	v.requirePositive("length_cm", r.LengthCm)
	v.requirePositive("width_cm", r.WidthCm)
	v.requirePositive("height_cm", r.HeightCm)
	v.requirePositive("declared_value", r.DeclaredValue)

	if r.OriginZip <= 0 {
		v.Add("origin_zip", "must be a positive integer")
	}
	if r.DestinationZip <= 0 {
		v.Add("destination_zip", "must be a positive integer")
	}
	return v.Err()
}

func (v *ValidationError) requireText(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func (v *ValidationError) requireMember(field, value string, allowed []string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return
	}
	if len(allowed) == 0 {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.Add(field, "must be one of "+strings.Join(allowed, ", "))
}

func (v *ValidationError) requirePositive(field string, value float64) {
	if !positive(value) {
		v.Add(field, "must be a positive number")
	}
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
