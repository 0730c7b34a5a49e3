package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadfinder/internal/model"
)

// SourceOutcome is the result of one connector's fetch: candidates on
// success, Err on failure.
type SourceOutcome struct {
	SourceID   string
	Candidates []model.RawCandidate
	Err        *SourceError
	Duration   time.Duration
}

// OK reports whether the source succeeded.
func (o SourceOutcome) OK() bool {
	return o.Err == nil
}

type fetchResult struct {
	candidates []model.RawCandidate
	err        error
}

// FetchAll runs every connector concurrently, each bounded by timeout, and
// waits for all of them. Outcomes are returned in connector order. A failing
// source is recorded in its outcome and never cancels the others. If every
// source fails the result is an *AllSourcesFailedError. If ctx is cancelled
// the outcomes are discarded and the context error is returned.
func FetchAll(ctx context.Context, prefs model.Preferences, connectors []Connector, timeout time.Duration) ([]SourceOutcome, error) {
	log := zap.L().With(zap.String("phase", "fetch"))

	outcomes := make([]SourceOutcome, len(connectors))

	// Tasks always return nil so one failure never cancels its siblings.
	var g errgroup.Group
	for i, conn := range connectors {
		g.Go(func() error {
			outcomes[i] = fetchOne(ctx, prefs, conn, timeout)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "discovery: fetch cancelled")
	}

	var failures []*SourceError
	for _, o := range outcomes {
		if o.OK() {
			log.Debug("source succeeded",
				zap.String("source", o.SourceID),
				zap.Int("candidates", len(o.Candidates)),
				zap.Duration("duration", o.Duration),
			)
			continue
		}
		failures = append(failures, o.Err)
		log.Warn("source failed",
			zap.String("source", o.SourceID),
			zap.Bool("timed_out", o.Err.TimedOut),
			zap.Duration("duration", o.Duration),
			zap.Error(o.Err.Err),
		)
	}

	if len(failures) == len(connectors) {
		return outcomes, &AllSourcesFailedError{Failures: failures}
	}
	return outcomes, nil
}

// fetchOne runs a single connector under its own deadline. A connector that
// ignores its context is abandoned when the deadline passes.
func fetchOne(parent context.Context, prefs model.Preferences, conn Connector, timeout time.Duration) SourceOutcome {
	id := conn.ID()
	start := time.Now()

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: eris.Errorf("connector panic: %v", r)}
			}
		}()
		candidates, err := conn.Fetch(ctx, prefs)
		done <- fetchResult{candidates: candidates, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: ctx.Err()}
	}

	outcome := SourceOutcome{SourceID: id, Duration: time.Since(start)}
	if res.err != nil {
		timedOut := parent.Err() == nil &&
			(errors.Is(res.err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded))
		outcome.Err = &SourceError{SourceID: id, TimedOut: timedOut, Err: res.err}
		return outcome
	}

	candidates := make([]model.RawCandidate, len(res.candidates))
	for i, c := range res.candidates {
		c.SourceID = id
		candidates[i] = c
	}
	outcome.Candidates = candidates
	return outcome
}
