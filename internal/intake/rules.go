package intake

import (
	"fmt"
	"regexp"
	"strings"

	"shipquote/internal/quote"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

// Required flags a blank value.
func Required(v *quote.ValidationError, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "This field is required")
		return false
	}
	return true
}

// Email checks the address shape when a value is present.
func Email(v *quote.ValidationError, field, value string) bool {
	if value != "" && !emailPattern.MatchString(value) {
		v.Add(field, "Please enter a valid email address")
		return false
	}
	return true
}

// Phone checks the number shape when a value is present.
func Phone(v *quote.ValidationError, field, value string) bool {
	if value != "" && !phonePattern.MatchString(value) {
		v.Add(field, "Please enter a valid phone number")
		return false
	}
	return true
}

// Range checks min <= value <= max.
func Range(v *quote.ValidationError, field string, value, min, max float64) bool {
	if value < min {
		v.Add(field, fmt.Sprintf("Value must be at least %g", min))
		return false
	}
	if value > max {
		v.Add(field, fmt.Sprintf("Value must be at most %g", max))
		return false
	}
	return true
}
