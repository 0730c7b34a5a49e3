// Package source implements the discovery connectors configured under
// "sources": inline static records, YAML/JSON files and HTTP JSON APIs.
package source

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/discovery"
	"github.com/sells-group/leadfinder/internal/model"
)

// Build creates connectors for cfgs, preserving their order.
func Build(cfgs []config.SourceConfig, res config.ResilienceConfig) ([]discovery.Connector, error) {
	conns := make([]discovery.Connector, 0, len(cfgs))
	for i, sc := range cfgs {
		if strings.TrimSpace(sc.ID) == "" {
			return nil, eris.Errorf("source: sources[%d] has no id", i)
		}

		var (
			conn discovery.Connector
			err  error
		)
		switch sc.Kind {
		case config.SourceKindStatic:
			conn = NewStatic(sc.ID, recordsToCandidates(sc.Records))
		case config.SourceKindFile:
			conn, err = NewFile(sc.ID, sc.Path)
		case config.SourceKindHTTP:
			conn, err = NewHTTP(sc, res)
		default:
			err = eris.Errorf("unknown kind %q", sc.Kind)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "source: build %s", sc.ID)
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func recordsToCandidates(records []config.RecordConfig) []model.RawCandidate {
	out := make([]model.RawCandidate, len(records))
	for i, r := range records {
		out[i] = model.RawCandidate{
			CompanyName: r.CompanyName,
			Website:     r.Website,
			Industry:    r.Industry,
			Description: r.Description,
		}
	}
	return out
}
