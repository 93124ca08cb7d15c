// Package pricing submits validated shipment quotes to the remote pricing
// service and maps its answers into the quote error taxonomy.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"shipquote/internal/quote"
	"shipquote/internal/upstream"
)

// DefaultTimeout bounds a call whose context carries no deadline.
const DefaultTimeout = 15 * time.Second

var errMissingCost = errors.New("response has no usable predicted_cost")

type Config struct {
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Enums      quote.Enums
	Logger     *zap.Logger
	// OnPhase observes lifecycle transitions. Calls for one request are
	// serialized with its cancellation: a callback running when the context
	// is cancelled completes, and none starts afterwards.
	OnPhase func(requestID string, p quote.Phase)
}

// Client talks to the pricing service. It keeps no per-call state and is
// safe for concurrent use.
type Client struct {
	endpoint string
	timeout  time.Duration
	hc       *http.Client
	enums    quote.Enums
	log      *zap.Logger
	onPhase  func(string, quote.Phase)
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("pricing endpoint is not set")
	}
	c := &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		hc:       cfg.HTTPClient,
		enums:    cfg.Enums,
		log:      cfg.Logger,
		onPhase:  cfg.OnPhase,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// RequestQuote validates req, submits it once and returns the priced result.
// Errors are always one of *quote.ValidationError, *quote.DeniedError or
// *quote.TransportError.
func (c *Client) RequestQuote(ctx context.Context, req quote.Request) (quote.Result, error) {
	rid := upstream.RequestID(ctx)
	gate := newPhaseGate(ctx, rid, c.onPhase)
	defer gate.stop()
	emit := gate.emit
	emit(quote.Idle)

	emit(quote.Validating)
	req = req.WithDefaults()
	if err := c.enums.Validate(req); err != nil {
		emit(quote.Invalid)
		return quote.Result{}, err
	}

	callCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	emit(quote.Submitting)
	start := time.Now()
	c.log.Debug("requesting quote",
		zap.String("request_id", rid),
		zap.String("origin", req.OriginCountry),
		zap.String("destination", req.DestinationCountry),
		zap.String("transport_mode", req.TransportMode))

	resp, err := upstream.PostJSON(callCtx, c.hc, c.endpoint, rid, req.Wire())
	if err != nil {
		c.log.Warn("quote transport failure", zap.String("request_id", rid), zap.Error(err))
		emit(quote.Failed)
		return quote.Result{}, err
	}
	emit(quote.Transmitted)

	res, err := interpret(resp)
	phase := quote.PhaseFor(err)
	switch phase {
	case quote.Priced:
		c.log.Debug("quote priced",
			zap.String("request_id", rid),
			zap.Float64("predicted_cost", res.PredictedCost),
			zap.Duration("elapsed", time.Since(start)))
	default:
		c.log.Warn("quote not priced",
			zap.String("request_id", rid),
			zap.Int("status", resp.StatusCode),
			zap.Stringer("phase", phase),
			zap.Error(err))
	}
	emit(phase)
	return res, err
}

func interpret(resp upstream.Response) (quote.Result, error) {
	if resp.Body == nil {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return quote.Result{}, &quote.DeniedError{StatusCode: resp.StatusCode, Message: quote.GenericDenial}
		}
		return quote.Result{}, &quote.TransportError{
			Op:  "decode response",
			Err: fmt.Errorf("status %d: %w", resp.StatusCode, upstream.ErrNotObject),
		}
	}

	if !resp.OK() || !upstream.Bool(resp.Body, "success") {
		msg := upstream.String(resp.Body, "error", "message", "error.message")
		if msg == "" {
			msg = quote.GenericDenial
		}
		return quote.Result{}, &quote.DeniedError{StatusCode: resp.StatusCode, Message: msg}
	}

	cost, ok := upstream.Number(resp.Body, "predicted_cost")
	if !ok || cost < 0 || math.IsInf(cost, 0) || math.IsNaN(cost) {
		return quote.Result{}, &quote.TransportError{Op: "decode response", Err: errMissingCost}
	}
	return quote.Result{Success: true, PredictedCost: cost, Confidence: quote.Final}, nil
}

// phaseGate delivers phases for one request until its context is done.
type phaseGate struct {
	ctx  context.Context
	rid  string
	fn   func(string, quote.Phase)
	stop func() bool

	mu   sync.Mutex
	done bool
}

func newPhaseGate(ctx context.Context, rid string, fn func(string, quote.Phase)) *phaseGate {
	g := &phaseGate{ctx: ctx, rid: rid, fn: fn}
	g.stop = context.AfterFunc(ctx, func() {
		g.mu.Lock()
		g.done = true
		g.mu.Unlock()
	})
	return g
}

func (g *phaseGate) emit(p quote.Phase) {
	if g.fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done || g.ctx.Err() != nil {
		return
	}
	g.fn(g.rid, p)
}
