package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadfinder/internal/discovery"
	"github.com/sells-group/leadfinder/internal/model"
)

func staticConnector(id string, cands ...model.RawCandidate) discovery.Connector {
	return discovery.ConnectorFunc(id, func(context.Context, model.Preferences) ([]model.RawCandidate, error) {
		return cands, nil
	})
}

func testRouter(connectors ...discovery.Connector) http.Handler {
	engine := discovery.NewEngine(connectors, discovery.Options{SourceTimeout: 50 * time.Millisecond})
	return newRouter(engine, 10, []string{"https://app.example.com"})
}

func defaultTestRouter() http.Handler {
	return testRouter(
		staticConnector("source_a", model.RawCandidate{CompanyName: "Acme", Website: "acme.io"}),
		staticConnector("source_b", model.RawCandidate{CompanyName: "ACME Inc", Website: "https://www.acme.io", Industry: "Technology"}),
		staticConnector("source_c", model.RawCandidate{CompanyName: "TickVantage", Website: "tickvantage.io", Industry: "Technology"}),
	)
}

func postDiscover(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/discover", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	defaultTestRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestSourcesEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/sources", nil)
	rr := httptest.NewRecorder()
	defaultTestRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string][]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, []string{"source_a", "source_b", "source_c"}, body["sources"])
}

func TestDiscoverEndpoint_OK(t *testing.T) {
	rr := postDiscover(t, defaultTestRouter(),
		`{"preferences":{"high_value_keywords":["api"],"preferred_industries":["Technology"]},"limit":5}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var res discovery.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.NotEmpty(t, res.CallID)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, "Acme", res.Leads[0].CompanyName)
	assert.Equal(t, []string{"source_a", "source_b"}, res.Leads[0].DataSources)
	assert.Equal(t, "TickVantage", res.Leads[1].CompanyName)
	assert.Len(t, res.Sources, 3)
}

func TestDiscoverEndpoint_DefaultLimit(t *testing.T) {
	rr := postDiscover(t, defaultTestRouter(), `{"preferences":{"preferred_industries":["Technology"]}}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDiscoverEndpoint_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"preferences":`},
		{"unknown field", `{"prefs":{}}`},
		{"zero limit", `{"preferences":{"high_value_keywords":["api"]},"limit":0}`},
		{"negative limit", `{"preferences":{"high_value_keywords":["api"]},"limit":-2}`},
		{"huge limit", `{"preferences":{"high_value_keywords":["api"]},"limit":5000}`},
		{"no preferences", `{"preferences":{},"limit":5}`},
		{"blank keyword", `{"preferences":{"high_value_keywords":["api",""]}}`},
		{"over-long industry", `{"preferences":{"preferred_industries":["` + strings.Repeat("x", model.MaxPreferenceLength+1) + `"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postDiscover(t, defaultTestRouter(), tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var body errorBody
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestDiscoverEndpoint_RejectsBeforeFetch(t *testing.T) {
	var calls int
	conn := discovery.ConnectorFunc("a", func(context.Context, model.Preferences) ([]model.RawCandidate, error) {
		calls++
		return nil, nil
	})

	body := `{"preferences":{"high_value_keywords":["` + strings.Repeat("k", model.MaxPreferenceLength+1) + `"]},"limit":3}`
	rr := postDiscover(t, testRouter(conn), body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "invalid request")
	assert.Zero(t, calls)
}

func TestDiscoverEndpoint_AllSourcesFailed(t *testing.T) {
	down := discovery.ConnectorFunc("down", func(context.Context, model.Preferences) ([]model.RawCandidate, error) {
		return nil, errors.New("connection refused")
	})
	slow := discovery.ConnectorFunc("slow", func(ctx context.Context, _ model.Preferences) ([]model.RawCandidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	rr := postDiscover(t, testRouter(down, slow), `{"preferences":{"high_value_keywords":["api"]}}`)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var body errorBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "all sources failed", body.Error)
	require.Len(t, body.Failures, 2)
	assert.Equal(t, sourceFailure{Source: "down", Error: "connection refused"}, body.Failures[0])
	assert.Equal(t, "slow", body.Failures[1].Source)
	assert.True(t, body.Failures[1].TimedOut)
}

func TestDiscoverEndpoint_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/discover", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	defaultTestRouter().ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	defaultTestRouter().ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorResponse(t *testing.T) {
	bg := context.Background()
	cancelled, cancel := context.WithCancel(bg)
	cancel()

	status, _ := errorResponse(bg, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = errorResponse(cancelled, context.Canceled)
	assert.Equal(t, statusClientClosedRequest, status)

	status, _ = errorResponse(bg, context.DeadlineExceeded)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body := errorResponse(bg, &discovery.AllSourcesFailedError{
		Failures: []*discovery.SourceError{{SourceID: "a", Err: errors.New("down")}},
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Len(t, body.Failures, 1)
}
