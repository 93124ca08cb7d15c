package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipquote/internal/quote"
)

func TestPostJSON_SendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "rid-1", r.Header.Get("X-Request-ID"))
		var in map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "x", in["a"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"SH-1","nested":{"message":"hi"},"n":12.5}`))
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, "rid-1", map[string]string{"a": "x"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "SH-1", String(resp.Body, "shipmentId", "id"))
	assert.Equal(t, "hi", String(resp.Body, "error", "nested.message"))
	n, ok := Number(resp.Body, "n")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)
}

func TestPostJSON_NonObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, "", struct{}{})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Nil(t, resp.Body)
}

func TestPostJSON_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := PostJSON(context.Background(), http.DefaultClient, url, "", struct{}{})
	var te *quote.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "send", te.Op)
}

func TestBool(t *testing.T) {
	m, err := decodeObject([]byte(`{"a":true,"b":1,"c":"true","d":0}`))
	require.NoError(t, err)
	assert.True(t, Bool(m, "a"))
	assert.True(t, Bool(m, "b"))
	assert.False(t, Bool(m, "c"))
	assert.False(t, Bool(m, "d"))
	assert.False(t, Bool(m, "missing"))
}

func TestDecodeObject_RejectsArrays(t *testing.T) {
	_, err := decodeObject([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestDecodeObject_RejectsTrailingData(t *testing.T) {
	_, err := decodeObject([]byte(`{"success":true,"predicted_cost":12} <html>oops`))
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = decodeObject([]byte(`{"a":1}{"b":2}`))
	assert.ErrorIs(t, err, ErrTrailingData)

	m, err := decodeObject([]byte("{\"a\":1}\n  "))
	require.NoError(t, err)
	assert.Contains(t, m, "a")
}

func TestPostJSON_TrailingDataLeavesBodyNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"predicted_cost":12} <html>oops`))
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, "", struct{}{})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Nil(t, resp.Body)
}

func TestPostJSON_UnencodablePayload(t *testing.T) {
	_, err := PostJSON(context.Background(), http.DefaultClient, "http://127.0.0.1:1", "", map[string]float64{"w": math.Inf(1)})
	var te *quote.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "encode request", te.Op)
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "edge-42")
	assert.Equal(t, "edge-42", RequestID(ctx))

	a, b := RequestID(context.Background()), RequestID(context.Background())
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, "", RequestID(WithRequestID(context.Background(), "")))
}
