package main

import (
	"time"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/discovery"
	"github.com/sells-group/leadfinder/internal/source"
)

// newEngine validates c and builds a discovery engine over its sources. A
// positive timeout overrides discovery.source_timeout_secs.
func newEngine(c *config.Config, timeout time.Duration) (*discovery.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	conns, err := source.Build(c.Sources, c.Resilience)
	if err != nil {
		return nil, err
	}

	opts := discovery.OptionsFromConfig(c.Discovery)
	if timeout > 0 {
		opts.SourceTimeout = timeout
	}
	return discovery.NewEngine(conns, opts), nil
}
