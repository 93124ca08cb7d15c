package quote

import (
	"errors"
	"fmt"
	"strings"
)

// GenericDenial is reported when the pricing service refuses a request
// without saying why.
const GenericDenial = "Failed to fetch cost estimation."

// Kind names the remedy class of an error returned by a quote operation.
type Kind string

const (
	KindNone       Kind = ""
	KindInvalid    Kind = "invalid"
	KindDenied     Kind = "denied"
	KindTransport  Kind = "transport"
	KindUnexpected Kind = "unexpected"
)

// FieldError is a single failed invariant.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports input that must be corrected before it is sent.
type ValidationError struct {
	Fields []FieldError
}

// Add records a failing field.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Err returns v when any field failed, otherwise nil.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (v *ValidationError) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// DeniedError is an explicit refusal by the remote service to handle a
// well-formed request.
type DeniedError struct {
	StatusCode int
	Message    string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// TransportError means the service could not be reached or its answer could
// not be understood. Retrying may help.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf classifies err into the quote error taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		ve *ValidationError
		de *DeniedError
		te *TransportError
	)
	switch {
	case errors.As(err, &ve):
		return KindInvalid
	case errors.As(err, &de):
		return KindDenied
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindUnexpected
	}
}
