package discovery

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sells-group/leadfinder/internal/model"
)

// stubConnector returns fixed candidates or an error after an optional delay.
type stubConnector struct {
	id         string
	candidates []model.RawCandidate
	err        error
	delay      time.Duration
	// ignoreCtx makes the stub sleep through cancellation.
	ignoreCtx bool
	calls     atomic.Int32
}

func (s *stubConnector) ID() string { return s.id }

func (s *stubConnector) Fetch(ctx context.Context, _ model.Preferences) ([]model.RawCandidate, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		if s.ignoreCtx {
			time.Sleep(s.delay)
		} else {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.RawCandidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

func stub(id string, candidates ...model.RawCandidate) *stubConnector {
	return &stubConnector{id: id, candidates: candidates}
}

func cand(name, website, industry string) model.RawCandidate {
	return model.RawCandidate{CompanyName: name, Website: website, Industry: industry}
}
