package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipquote/internal/intake"
	"shipquote/internal/quote"
	"shipquote/internal/rate"
	"shipquote/internal/upstream"
)

// Quoter prices a complete shipment against the authoritative service.
type Quoter interface {
	RequestQuote(ctx context.Context, req quote.Request) (quote.Result, error)
}

// Intake forwards the shipment and feedback forms.
type Intake interface {
	SubmitShipment(ctx context.Context, s intake.Shipment) (string, error)
	SubmitFeedback(ctx context.Context, f intake.Feedback) (string, error)
}

type Options struct {
	Estimator rate.Estimator
	Quotes    Quoter
	Intake    Intake
	Logger    *zap.Logger
}

type Server struct {
	est    rate.Estimator
	quotes Quoter
	intake Intake
	log    *zap.Logger
}

func New(opts Options) http.Handler {
	s := &Server{est: opts.Estimator, quotes: opts.Quotes, intake: opts.Intake, log: opts.Logger}
	if s.est == nil {
		s.est = rate.NewLocal()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/estimates/local", s.handleLocalEstimate)
	r.Post("/quotes", s.handleQuote)
	r.Post("/shipments", s.handleCreateShipment)
	r.Post("/feedback", s.handleFeedback)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Local estimate
type LocalEstimateResponse struct {
	Cost        float64          `json:"cost"`
	DisplayCost string           `json:"display_cost"`
	Confidence  quote.Confidence `json:"confidence"`
}

func (s *Server) handleLocalEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := quote.ParseLocalInputs(q.Get("weight_kg"), q.Get("origin_region"), q.Get("destination_region"))
	est := s.est.Estimate(in)
	writeJSON(w, http.StatusOK, LocalEstimateResponse{
		Cost:        est.Cost,
		DisplayCost: quote.FormatINR(est.Cost),
		Confidence:  est.Confidence,
	})
}

// Quotes
type QuoteResponse struct {
	Success       bool             `json:"success"`
	PredictedCost float64          `json:"predicted_cost"`
	DisplayCost   string           `json:"display_cost"`
	Confidence    quote.Confidence `json:"confidence"`
	Route         string           `json:"route"`
	GeneratedAt   string           `json:"generated_at"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "not_configured", "pricing is not configured")
		return
	}
	var req quote.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := s.quotes.RequestQuote(r.Context(), req)
	if r.Context().Err() != nil {
		// caller went away; nothing to report
		return
	}
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{
		Success:       res.Success,
		PredictedCost: res.PredictedCost,
		DisplayCost:   quote.FormatINR(res.PredictedCost),
		Confidence:    res.Confidence,
		Route:         req.OriginCountry + " → " + req.DestinationCountry,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Shipments
type ShipmentCreateResponse struct {
	ShipmentID string          `json:"shipment_id"`
	Status     string          `json:"status"`
	Summary    *intake.Summary `json:"summary,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "not_configured", "intake is not configured")
		return
	}
	var req intake.Shipment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	id, err := s.intake.SubmitShipment(r.Context(), req)
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	res := ShipmentCreateResponse{
		ShipmentID: id,
		Status:     "created",
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if sum, ok := intake.Summarize(req); ok {
		res.Summary = &sum
	}
	writeJSON(w, http.StatusOK, res)
}

// Feedback
type FeedbackRequest struct {
	intake.Feedback
	TermsAccepted bool `json:"terms_accepted"`
}

type FeedbackResponse struct {
	FeedbackID string `json:"feedback_id,omitempty"`
	Status     string `json:"status"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "not_configured", "intake is not configured")
		return
	}
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	fb := req.Feedback
	fb.TermsAccepted = req.TermsAccepted
	id, err := s.intake.SubmitFeedback(r.Context(), fb)
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FeedbackResponse{FeedbackID: id, Status: "received"})
}

// writeUpstreamError maps the quote error taxonomy onto HTTP.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *quote.ValidationError
		de *quote.DeniedError
	)
	switch quote.KindOf(err) {
	case quote.KindInvalid:
		errors.As(err, &ve)
		writeError(w, http.StatusBadRequest, apiError{
			Code:    "invalid_request",
			Message: "Please fill in all required fields correctly.",
			Fields:  ve.Fields,
		})
	case quote.KindDenied:
		errors.As(err, &de)
		writeError(w, http.StatusUnprocessableEntity, apiError{
			Code:    "quote_denied",
			Message: de.Message,
			Hint:    "Please check your inputs and try again.",
		})
	case quote.KindTransport:
		s.log.Warn("upstream unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, apiError{
			Code:    "upstream_unavailable",
			Message: "Unable to connect to the server. Please try again later.",
			Hint:    "retry",
		})
	default:
		s.log.Error("unexpected upstream error", zap.String("path", r.URL.Path), zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type apiError struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Hint    string             `json:"hint,omitempty"`
	Fields  []quote.FieldError `json:"fields,omitempty"`
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	writeError(w, status, apiError{Code: code, Message: message})
}

func writeError(w http.ResponseWriter, status int, e apiError) {
	writeJSON(w, status, map[string]apiError{"error": e})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestIDMiddleware ensures X-Request-ID is set on the response and carried
// in the request context for outbound calls. If provided in the request header,
// it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(upstream.WithRequestID(r.Context(), rid)))
	})
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", ww.Header().Get("X-Request-ID")))
		})
	}
}
