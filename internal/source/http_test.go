package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/internal/resilience"
)

func fastResilience() config.ResilienceConfig {
	return config.ResilienceConfig{
		MaxAttempts:      3,
		InitialBackoffMs: 1,
		MaxBackoffMs:     2,
		FailureThreshold: 2,
		ResetTimeoutSecs: 60,
	}
}

func newHTTPSource(t *testing.T, url string, sc config.SourceConfig) *HTTP {
	t.Helper()
	sc.ID = "dir"
	sc.Kind = config.SourceKindHTTP
	sc.URL = url
	h, err := NewHTTP(sc, fastResilience())
	require.NoError(t, err)
	return h
}

func TestHTTP_FetchSendsPreferencesAndToken(t *testing.T) {
	t.Setenv("LEADFINDER_TEST_TOKEN", "s3cret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"api", "billing"}, r.URL.Query()["keyword"])
		assert.Equal(t, []string{"Technology"}, r.URL.Query()["industry"])
		assert.Equal(t, "us", r.URL.Query().Get("region"))
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"company_name":"TickVantage","website":"tickvantage.io","industry":"Technology"},{"name":"Acme","description":"billing api"}]`))
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL+"/search?region=us", config.SourceConfig{TokenEnv: "LEADFINDER_TEST_TOKEN", RateLimit: 100})

	got, err := h.Fetch(context.Background(), model.Preferences{
		HighValueKeywords:   []string{"api", "billing"},
		PreferredIndustries: []string{"Technology"},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.RawCandidate{
		{CompanyName: "TickVantage", Website: "tickvantage.io", Industry: "Technology"},
		{CompanyName: "Acme", Description: "billing api"},
	}, got)
}

func TestHTTP_FetchResultsWrapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"company_name":"Initech","website":"https://initech.com"}]}`))
	}))
	defer srv.Close()

	got, err := newHTTPSource(t, srv.URL, config.SourceConfig{}).Fetch(context.Background(), model.Preferences{})
	require.NoError(t, err)
	assert.Equal(t, []model.RawCandidate{{CompanyName: "Initech", Website: "https://initech.com"}}, got)
}

func TestHTTP_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"company_name":"Acme"}]`))
	}))
	defer srv.Close()

	got, err := newHTTPSource(t, srv.URL, config.SourceConfig{}).Fetch(context.Background(), model.Preferences{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTP_DoesNotRetryPermanentStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newHTTPSource(t, srv.URL, config.SourceConfig{}).Fetch(context.Background(), model.Preferences{})
	var se *resilience.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTP_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, config.SourceConfig{})
	assert.Equal(t, resilience.CircuitClosed, h.breaker.State())
	for i := 0; i < 2; i++ {
		_, err := h.Fetch(context.Background(), model.Preferences{})
		require.Error(t, err)
	}
	assert.Equal(t, resilience.CircuitOpen, h.breaker.State())

	_, err := h.Fetch(context.Background(), model.Preferences{})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTP_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newHTTPSource(t, srv.URL, config.SourceConfig{}).Fetch(context.Background(), model.Preferences{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
