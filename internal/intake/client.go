// Package intake validates and submits the shipment creation and feedback
// forms to their remote collection endpoints.
package intake

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shipquote/internal/quote"
	"shipquote/internal/upstream"
)

const (
	shipmentDenial = "Error creating shipment. Please try again."
	feedbackDenial = "There was an error submitting your feedback. Please try again."
)

var errMissingShipmentID = errors.New("response has no shipment id")

type Config struct {
	ShipmentsURL string
	FeedbackURL  string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

type Client struct {
	cfg Config
	hc  *http.Client
	log *zap.Logger
}

func NewClient(cfg Config) *Client {
	c := &Client{cfg: cfg, hc: cfg.HTTPClient, log: cfg.Logger}
	if c.cfg.Timeout <= 0 {
		c.cfg.Timeout = 15 * time.Second
	}
	if c.hc == nil {
		c.hc = &http.Client{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// SubmitShipment validates s, posts it and returns the issued shipment id.
func (c *Client) SubmitShipment(ctx context.Context, s Shipment) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	body, err := c.post(ctx, c.cfg.ShipmentsURL, s, shipmentDenial)
	if err != nil {
		return "", err
	}
	id := upstream.String(body, "shipmentId", "shipment_id", "id")
	if id == "" {
		return "", &quote.TransportError{Op: "decode response", Err: errMissingShipmentID}
	}
	return id, nil
}

// SubmitFeedback validates f and posts it. The returned id is empty when the
// service acknowledges without issuing one.
func (c *Client) SubmitFeedback(ctx context.Context, f Feedback) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	body, err := c.post(ctx, c.cfg.FeedbackURL, f.wire(), feedbackDenial)
	if err != nil {
		return "", err
	}
	return upstream.String(body, "feedbackId", "feedback_id", "id"), nil
}

func (c *Client) post(ctx context.Context, url string, payload any, denial string) (map[string]any, error) {
	if url == "" {
		return nil, fmt.Errorf("intake endpoint is not configured")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	rid := upstream.RequestID(ctx)
	resp, err := upstream.PostJSON(ctx, c.hc, url, rid, payload)
	if err != nil {
		c.log.Warn("intake transport failure", zap.String("request_id", rid), zap.String("url", url), zap.Error(err))
		return nil, err
	}
	switch {
	case resp.OK() && resp.Body != nil:
		return resp.Body, nil
	case resp.OK() || (resp.StatusCode >= 500 && resp.Body == nil):
		return nil, &quote.TransportError{
			Op:  "decode response",
			Err: fmt.Errorf("status %d: %w", resp.StatusCode, upstream.ErrNotObject),
		}
	}
	msg := upstream.String(resp.Body, "error", "message", "error.message")
	if msg == "" {
		msg = denial
	}
	c.log.Warn("intake submission refused", zap.String("request_id", rid), zap.Int("status", resp.StatusCode), zap.String("reason", msg))
	return nil, &quote.DeniedError{StatusCode: resp.StatusCode, Message: msg}
}
