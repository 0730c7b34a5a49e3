package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/internal/resilience"
)

const (
	// maxResponseBytes limits how much of a response body is decoded.
	maxResponseBytes = 4 << 20

	defaultUserAgent = "leadfinder/1.0"
)

// HTTP queries a JSON API with the call's preferences as query parameters:
// one "keyword" per high-value keyword and one "industry" per preferred
// industry. The response is a JSON list of records or {"results": [...]}.
type HTTP struct {
	id       string
	endpoint *url.URL
	token    string
	client   *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
}

// NewHTTP creates an HTTP source from its config. The bearer token, if any,
// is read from the environment variable named by TokenEnv.
func NewHTTP(sc config.SourceConfig, res config.ResilienceConfig) (*HTTP, error) {
	u, err := url.Parse(sc.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, eris.Errorf("http source requires an absolute url, got %q", sc.URL)
	}

	var token string
	if sc.TokenEnv != "" {
		token = os.Getenv(sc.TokenEnv)
		if token == "" {
			return nil, eris.Errorf("http source token env %s is empty", sc.TokenEnv)
		}
	}

	limit := rate.Inf
	if sc.RateLimit > 0 {
		limit = rate.Limit(sc.RateLimit)
	}

	retry, breaker := resilience.FromConfig(sc.ID, res)
	return &HTTP{
		id:       sc.ID,
		endpoint: u,
		token:    token,
		client:   &http.Client{Transport: http.DefaultTransport},
		limiter:  rate.NewLimiter(limit, 1),
		retry:    retry,
		breaker:  resilience.NewCircuitBreaker(breaker),
	}, nil
}

// ID implements discovery.Connector.
func (h *HTTP) ID() string { return h.id }

// Fetch implements discovery.Connector. Transient failures are retried with
// backoff; a source that keeps failing is short-circuited by its breaker.
func (h *HTTP) Fetch(ctx context.Context, prefs model.Preferences) ([]model.RawCandidate, error) {
	candidates, err := resilience.ExecuteVal(ctx, h.breaker, func(ctx context.Context) ([]model.RawCandidate, error) {
		return resilience.DoVal(ctx, h.retry, func(ctx context.Context) ([]model.RawCandidate, error) {
			return h.fetchOnce(ctx, prefs)
		})
	})
	if err != nil {
		zap.L().Warn("http: fetch failed",
			zap.String("source", h.id),
			zap.String("breaker", h.breaker.State().String()),
			zap.Error(err),
		)
		return nil, err
	}
	return candidates, nil
}

func (h *HTTP) fetchOnce(ctx context.Context, prefs model.Preferences) ([]model.RawCandidate, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "http: rate limiter wait")
	}

	u := *h.endpoint
	q := u.Query()
	for _, kw := range prefs.HighValueKeywords {
		q.Add("keyword", kw)
	}
	for _, ind := range prefs.PreferredIndustries {
		q.Add("industry", ind)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &resilience.StatusError{Source: h.id, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}

	candidates, err := decodeResults(body)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("http: fetched candidates",
		zap.String("source", h.id),
		zap.Int("candidates", len(candidates)),
		zap.Duration("duration", time.Since(start)),
	)
	return candidates, nil
}

type apiRecord struct {
	CompanyName string `json:"company_name"`
	Name        string `json:"name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

func decodeResults(body []byte) ([]model.RawCandidate, error) {
	var records []apiRecord
	if err := json.Unmarshal(body, &records); err != nil {
		var wrapper struct {
			Results []apiRecord `json:"results"`
		}
		if werr := json.Unmarshal(body, &wrapper); werr != nil {
			return nil, eris.Wrap(werr, "http: decode response")
		}
		records = wrapper.Results
	}

	out := make([]model.RawCandidate, len(records))
	for i, r := range records {
		name := r.CompanyName
		if name == "" {
			name = r.Name
		}
		out[i] = model.RawCandidate{
			CompanyName: name,
			Website:     r.Website,
			Industry:    r.Industry,
			Description: r.Description,
		}
	}
	return out, nil
}
