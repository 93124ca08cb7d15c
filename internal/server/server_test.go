package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shipquote/internal/intake"
	"shipquote/internal/pricing"
	"shipquote/internal/quote"
	"shipquote/internal/upstream"
)

type fakeQuoter struct {
	res   quote.Result
	err   error
	calls int
	last  quote.Request
}

func (f *fakeQuoter) RequestQuote(ctx context.Context, req quote.Request) (quote.Result, error) {
	f.calls++
	f.last = req
	return f.res, f.err
}

type fakeIntake struct {
	shipmentID string
	feedbackID string
	err        error
	feedback   intake.Feedback
}

func (f *fakeIntake) SubmitShipment(ctx context.Context, s intake.Shipment) (string, error) {
	return f.shipmentID, f.err
}

func (f *fakeIntake) SubmitFeedback(ctx context.Context, fb intake.Feedback) (string, error) {
	f.feedback = fb
	return f.feedbackID, f.err
}

func postJSON(h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("expected body 'ok', got %q", body)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	h := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rid := rr.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req2.Header.Set("X-Request-ID", "abc-123")
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req2)
	if rid := rr2.Header().Get("X-Request-ID"); rid != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", rid)
	}
}

func TestGetLocalEstimate(t *testing.T) {
	h := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/estimates/local?weight_kg=10&origin_region=MH&destination_region=KA", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var res LocalEstimateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	// (50 + 10*5) * 1.5 = 150
	if res.Cost != 150 || res.Confidence != quote.Provisional || res.DisplayCost != "₹150.00" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestGetLocalEstimate_MalformedInputsDegrade(t *testing.T) {
	h := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/estimates/local?weight_kg=heavy", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var res LocalEstimateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if rr.Code != http.StatusOK || res.Cost != 50 {
		t.Fatalf("expected 200 with base cost, got %d %+v", rr.Code, res)
	}
}

func TestPostQuote(t *testing.T) {
	q := &fakeQuoter{res: quote.Result{Success: true, PredictedCost: 4500, Confidence: quote.Final}}
	h := New(Options{Quotes: q})

	rr := postJSON(h, "/quotes", map[string]any{
		"origin_country":      "India",
		"destination_country": "USA",
		"weight_kg":           10,
		"tracking":            true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !res.Success || res.PredictedCost != 4500 || res.DisplayCost != "₹4,500.00" || res.Confidence != quote.Final {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Route != "India → USA" || res.GeneratedAt == "" {
		t.Fatalf("unexpected route/time: %+v", res)
	}
	if q.calls != 1 || q.last.WeightKg != 10 || !q.last.Tracking {
		t.Fatalf("quoter not called with decoded request: %+v", q.last)
	}
}

func TestPostShipment(t *testing.T) {
	h := New(Options{Intake: &fakeIntake{shipmentID: "SH-10001"}})
	rr := postJSON(h, "/shipments", intake.Shipment{
		OriginCity:       "Pune",
		OriginState:      "MH",
		DestinationCity:  "Delhi",
		DestinationState: "DL",
		PackageType:      "envelope",
		Quantity:         1,
		WeightKg:         1,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res ShipmentCreateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.ShipmentID != "SH-10001" || res.Status != "created" || res.Summary == nil {
		t.Fatalf("unexpected response: %+v", res)
	}
	// (50 + 5) * 1.5
	if res.Summary.Estimate.Cost != 82.5 {
		t.Fatalf("unexpected summary estimate: %+v", res.Summary.Estimate)
	}
}

func TestPostFeedback(t *testing.T) {
	in := &fakeIntake{feedbackID: "FB-1"}
	h := New(Options{Intake: in})
	rr := postJSON(h, "/feedback", map[string]any{
		"name":           "Ravi",
		"email":          "ravi@example.com",
		"rating":         5,
		"message":        "great",
		"terms_accepted": true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	if !in.feedback.TermsAccepted || in.feedback.Email != "ravi@example.com" {
		t.Fatalf("feedback not decoded: %+v", in.feedback)
	}
	var res FeedbackResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.FeedbackID != "FB-1" || res.Status != "received" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestPostQuote_FlagsAsDigitsEndToEnd(t *testing.T) {
	var sent map[string]any
	var sentID string
	pricingSvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sentID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"success": true, "predicted_cost": 4500.00}`))
	}))
	defer pricingSvc.Close()

	quotes, err := pricing.New(pricing.Config{Endpoint: pricingSvc.URL})
	if err != nil {
		t.Fatalf("pricing client: %v", err)
	}
	h := New(Options{Quotes: quotes})

	body := `{"weight_kg": 10, "origin_country": "India", "destination_country": "USA", "quantity": 1,
"length_cm": 10, "width_cm": 10, "height_cm": 10, "declared_value": 5000, "package_type": "box",
"content_type": "goods", "service_level": "standard", "transport_mode": "air",
"add_insurance": 0, "signature_required": 0, "tracking": 1}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(body))
	req.Header.Set("X-Request-ID", "edge-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !res.Success || res.PredictedCost != 4500 {
		t.Fatalf("unexpected response: %+v", res)
	}
	if sent["tracking"] != float64(1) || sent["add_insurance"] != float64(0) || sent["signature_required"] != float64(0) {
		t.Fatalf("flags not forwarded as 0/1: %v", sent)
	}
	if sentID != "edge-123" {
		t.Fatalf("expected inbound request id upstream, got %q", sentID)
	}
}

func TestRequestIDInContext(t *testing.T) {
	var seen string
	q := quoterFunc(func(ctx context.Context, _ quote.Request) (quote.Result, error) {
		seen = upstream.RequestID(ctx)
		return quote.Result{Success: true, PredictedCost: 1, Confidence: quote.Final}, nil
	})
	h := New(Options{Quotes: q})

	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Fatalf("expected request id in handler context, got %q", seen)
	}
}

type quoterFunc func(ctx context.Context, req quote.Request) (quote.Result, error)

func (f quoterFunc) RequestQuote(ctx context.Context, req quote.Request) (quote.Result, error) {
	return f(ctx, req)
}
