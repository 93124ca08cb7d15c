// Package upstream performs the single JSON request/response exchange shared
// by every remote collaborator and normalizes transport trouble into
// *quote.TransportError.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shipquote/internal/quote"
)

const maxBodyBytes = 1 << 20

// Response is a completed exchange. Body is nil when the service did not
// answer with a JSON object.
type Response struct {
	StatusCode int
	Body       map[string]any
}

func (r Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// PostJSON marshals payload and POSTs it to url exactly once.
// Any failure to obtain a response is returned as *quote.TransportError.
func PostJSON(ctx context.Context, hc *http.Client, url, requestID string, payload any) (Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Response{}, &quote.TransportError{Op: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Response{}, &quote.TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return Response{}, &quote.TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, &quote.TransportError{Op: "read response", Err: err}
	}
	out := Response{StatusCode: resp.StatusCode}
	if body, err := decodeObject(raw); err == nil {
		out.Body = body
	}
	return out, nil
}

var (
	// ErrNotObject is returned when a response body is not a JSON object.
	ErrNotObject = errors.New("response body is not a JSON object")
	// ErrTrailingData is returned when a JSON object is followed by more input.
	ErrTrailingData = errors.New("response body has data after the JSON object")
)

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, ErrTrailingData
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}
