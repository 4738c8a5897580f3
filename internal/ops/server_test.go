package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishpatch/internal/types"
)

func healthyProbe(name string) HealthProbe {
	return NewProbe(name, func(context.Context) error { return nil })
}

func unhealthyProbe(name, msg string) HealthProbe {
	return NewProbe(name, func(context.Context) error { return errors.New(msg) })
}

func doHealthRequest(t *testing.T, s *Server) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAllProbesHealthy(t *testing.T) {
	s := NewServer("0", []HealthProbe{
		healthyProbe("broker"),
		healthyProbe("templates"),
	}, types.NopLogger{})

	rec, body := doHealthRequest(t, s)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["broker"].Status)
	assert.Equal(t, "healthy", body.Components["templates"].Status)
}

func TestHealthUnhealthyProbe(t *testing.T) {
	s := NewServer("0", []HealthProbe{
		healthyProbe("templates"),
		unhealthyProbe("broker", "connection closed"),
	}, types.NopLogger{})

	rec, body := doHealthRequest(t, s)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "unhealthy", body.Components["broker"].Status)
	assert.Equal(t, "connection closed", body.Components["broker"].Message)
	assert.Equal(t, "healthy", body.Components["templates"].Status)
}

func TestHealthNoProbes(t *testing.T) {
	s := NewServer("0", nil, types.NopLogger{})

	rec, body := doHealthRequest(t, s)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Empty(t, body.Components)
}

func TestHealthProbePanicCountsAsFailure(t *testing.T) {
	s := NewServer("0", []HealthProbe{
		NewProbe("broker", func(context.Context) error { panic("boom") }),
	}, types.NopLogger{})

	rec, body := doHealthRequest(t, s)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body.Components["broker"].Message, "probe panicked")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := NewServer("0", nil, types.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
