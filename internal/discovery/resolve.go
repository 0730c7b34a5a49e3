package discovery

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadfinder/internal/company"
	"github.com/sells-group/leadfinder/internal/model"
)

// Resolver merges raw candidates that refer to the same company.
type Resolver struct {
	normalizer *company.Normalizer
}

// NewResolver creates a Resolver keyed by the given normalizer.
func NewResolver(n *company.Normalizer) *Resolver {
	if n == nil {
		n = company.NewNormalizer(nil)
	}
	return &Resolver{normalizer: n}
}

// Resolve groups the candidates of every successful outcome by canonical
// identity key. Outcomes are read in order and, within each group, the first
// non-empty name, website, industry and description win. Leads are returned
// in order of first appearance, so the same input always yields the same
// output.
func (r *Resolver) Resolve(outcomes []SourceOutcome) []*model.Lead {
	var (
		leads   []*model.Lead
		byKey   = make(map[string]*model.Lead)
		dropped int
	)

	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		for _, c := range o.Candidates {
			domain := r.normalizer.Domain(c.Website)
			key := r.normalizer.IdentityKey(c.CompanyName, c.Website)
			if key == "" {
				dropped++
				zap.L().Debug("resolve: candidate has no usable identity",
					zap.String("source", c.SourceID),
					zap.String("name", c.CompanyName),
					zap.String("website", c.Website),
				)
				continue
			}

			lead, ok := byKey[key]
			if !ok {
				lead = &model.Lead{Key: key}
				byKey[key] = lead
				leads = append(leads, lead)
			}
			merge(lead, c, domain)
		}
	}

	for _, l := range leads {
		if l.CompanyName == "" {
			l.CompanyName = company.NormalizeDomain(l.Website)
		}
	}

	if dropped > 0 {
		zap.L().Info("resolve: dropped candidates without identity", zap.Int("dropped", dropped))
	}
	return leads
}

// merge folds c into lead using first-wins for every optional field.
// A directory website (domain == "") is never taken as the lead's website.
func merge(lead *model.Lead, c model.RawCandidate, domain string) {
	if lead.CompanyName == "" {
		lead.CompanyName = strings.TrimSpace(c.CompanyName)
	}
	if lead.Website == "" && domain != "" {
		lead.Website = strings.TrimSpace(c.Website)
	}
	if lead.Industry == "" {
		lead.Industry = strings.TrimSpace(c.Industry)
	}
	if lead.Description == "" {
		lead.Description = strings.TrimSpace(c.Description)
	}
	if !lead.HasSource(c.SourceID) {
		lead.DataSources = append(lead.DataSources, c.SourceID)
	}
}
