package source

import (
	"context"

	"github.com/sells-group/leadfinder/internal/model"
)

// Static returns the same records on every fetch.
type Static struct {
	id      string
	records []model.RawCandidate
}

// NewStatic creates a Static source.
func NewStatic(id string, records []model.RawCandidate) *Static {
	return &Static{id: id, records: records}
}

// ID implements discovery.Connector.
func (s *Static) ID() string { return s.id }

// Fetch implements discovery.Connector.
func (s *Static) Fetch(ctx context.Context, _ model.Preferences) ([]model.RawCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.RawCandidate, len(s.records))
	copy(out, s.records)
	return out, nil
}
