package intake

import "shipquote/internal/quote"

// Feedback is the customer feedback form.
type Feedback struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Category      string `json:"category,omitempty"`
	TrackingID    string `json:"trackingId,omitempty"`
	Rating        int    `json:"rating"`
	Message       string `json:"message"`
	TermsAccepted bool   `json:"-"`
}

func (f Feedback) Validate() error {
	var v quote.ValidationError
	Required(&v, "name", f.Name)
	if Required(&v, "email", f.Email) {
		Email(&v, "email", f.Email)
	}
	Phone(&v, "phone", f.Phone)
	Range(&v, "rating", float64(f.Rating), 1, 5)
	Required(&v, "message", f.Message)
	if !f.TermsAccepted {
		v.Add("termsCheck", "You must accept the terms")
	}
	return v.Err()
}

// feedbackWire is the submitted form; the terms checkbox travels as on/off.
type feedbackWire struct {
	Feedback
	TermsCheck string `json:"termsCheck"`
}

func (f Feedback) wire() feedbackWire {
	terms := "off"
	if f.TermsAccepted {
		terms = "on"
	}
	return feedbackWire{Feedback: f, TermsCheck: terms}
}
