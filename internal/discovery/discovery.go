// Package discovery finds company leads by querying several sources
// concurrently, merging duplicate discoveries, scoring each lead against the
// caller's preferences and ranking the result.
package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/company"
	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/model"
)

// DefaultSourceTimeout bounds a single connector when Options leaves it unset.
const DefaultSourceTimeout = 10 * time.Second

// Options configures an Engine.
type Options struct {
	SourceTimeout  time.Duration
	Weights        Weights
	MinScore       float64
	DirectoryHosts []string
}

// OptionsFromConfig converts discovery config values to Options.
func OptionsFromConfig(cfg config.DiscoveryConfig) Options {
	opts := Options{
		SourceTimeout: time.Duration(cfg.SourceTimeoutSecs) * time.Second,
		Weights: Weights{
			Keyword:       cfg.Weights.Keyword,
			Industry:      cfg.Weights.Industry,
			Corroboration: cfg.Weights.Corroboration,
			Presence:      cfg.Weights.Presence,
		},
		MinScore:       cfg.MinScore,
		DirectoryHosts: cfg.DirectoryBlocklist,
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	return opts
}

// SourceReport summarizes one source's part in a call.
type SourceReport struct {
	ID         string `json:"id"`
	Candidates int    `json:"candidates"`
	Error      string `json:"error,omitempty"`
	TimedOut   bool   `json:"timed_out,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Result is the outcome of a discovery call.
type Result struct {
	CallID  string         `json:"call_id"`
	Leads   []model.Lead   `json:"leads"`
	Sources []SourceReport `json:"sources"`
}

// Engine runs discovery calls against a fixed list of connectors. It holds
// no per-call state and is safe for concurrent use.
type Engine struct {
	connectors []Connector
	opts       Options
	resolver   *Resolver
	scorer     *Scorer
}

// NewEngine creates an Engine. Connectors are queried and merged in the
// order given.
func NewEngine(connectors []Connector, opts Options) *Engine {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	return &Engine{
		connectors: connectors,
		opts:       opts,
		resolver:   NewResolver(company.NewNormalizer(opts.DirectoryHosts)),
		scorer:     NewScorer(opts.Weights),
	}
}

// Discover fetches, merges, scores and ranks leads for prefs, returning at
// most limit leads. Invalid input fails with ErrInvalidArgument before any
// source is queried; if every source fails the error matches
// ErrAllSourcesFailed.
func (e *Engine) Discover(ctx context.Context, prefs model.Preferences, limit int) (*Result, error) {
	if err := e.validate(prefs, limit); err != nil {
		return nil, err
	}
	prefs = prefs.Normalize()

	callID := uuid.NewString()
	log := zap.L().With(zap.String("call_id", callID))
	log.Info("discovery: starting",
		zap.Int("sources", len(e.connectors)),
		zap.Int("limit", limit),
		zap.Strings("keywords", prefs.HighValueKeywords),
		zap.Strings("industries", prefs.PreferredIndustries),
	)

	outcomes, err := FetchAll(ctx, prefs, e.connectors, e.opts.SourceTimeout)
	if err != nil {
		log.Error("discovery: fetch failed", zap.Error(err))
		return nil, err
	}

	leads := e.resolver.Resolve(outcomes)
	for _, l := range leads {
		e.scorer.Score(l, prefs)
	}
	ranked := Rank(leads, limit, e.opts.MinScore)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "discovery: call cancelled")
	}

	log.Info("discovery: complete",
		zap.Int("unique_leads", len(leads)),
		zap.Int("returned", len(ranked)),
	)

	return &Result{
		CallID:  callID,
		Leads:   ranked,
		Sources: reports(outcomes),
	}, nil
}

// Sources returns the IDs of the engine's connectors in order.
func (e *Engine) Sources() []string {
	ids := make([]string, len(e.connectors))
	for i, c := range e.connectors {
		ids[i] = c.ID()
	}
	return ids
}

func (e *Engine) validate(prefs model.Preferences, limit int) error {
	if limit <= 0 {
		return invalidArgument("limit must be positive, got %d", limit)
	}
	if err := prefs.Validate(); err != nil {
		return invalidArgument("%v", err)
	}
	if err := e.opts.Weights.Validate(); err != nil {
		return invalidArgument("%v", err)
	}
	if len(e.connectors) == 0 {
		return invalidArgument("no sources configured")
	}
	seen := make(map[string]struct{}, len(e.connectors))
	for i, c := range e.connectors {
		if c == nil {
			return invalidArgument("source %d is nil", i)
		}
		id := c.ID()
		if id == "" {
			return invalidArgument("source %d has an empty id", i)
		}
		if _, ok := seen[id]; ok {
			return invalidArgument("duplicate source id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func reports(outcomes []SourceOutcome) []SourceReport {
	out := make([]SourceReport, len(outcomes))
	for i, o := range outcomes {
		r := SourceReport{
			ID:         o.SourceID,
			Candidates: len(o.Candidates),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			r.Error = o.Err.Err.Error()
			r.TimedOut = o.Err.TimedOut
		}
		out[i] = r
	}
	return out
}
