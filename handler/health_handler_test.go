package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"code":404,"message":"Not Found"}`, rr.Body.String())
}

func TestRateLimiter_PerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limited := NewRateLimiter(ctx, 0.001, 1).Middleware(http.HandlerFunc(HealthCheck))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:2222"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111"))
}
