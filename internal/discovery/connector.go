package discovery

import (
	"context"

	"github.com/sells-group/leadfinder/internal/model"
)

// Connector retrieves raw candidates for a set of preferences. Implementations
// own their retry and backoff policy; the coordinator only imposes a timeout.
type Connector interface {
	// ID returns the source identifier recorded in Lead.DataSources.
	ID() string
	// Fetch returns the source's candidates or a source-level error.
	Fetch(ctx context.Context, prefs model.Preferences) ([]model.RawCandidate, error)
}

// FetchFunc is the function form of Connector.Fetch.
type FetchFunc func(ctx context.Context, prefs model.Preferences) ([]model.RawCandidate, error)

type funcConnector struct {
	id string
	fn FetchFunc
}

// ConnectorFunc adapts fn into a Connector with the given id.
func ConnectorFunc(id string, fn FetchFunc) Connector {
	return &funcConnector{id: id, fn: fn}
}

func (c *funcConnector) ID() string { return c.id }

func (c *funcConnector) Fetch(ctx context.Context, prefs model.Preferences) ([]model.RawCandidate, error) {
	return c.fn(ctx, prefs)
}
