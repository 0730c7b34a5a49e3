package discovery

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfinder/internal/model"
)

// corroborationStep is the credit per additional source that found a lead.
const corroborationStep = 0.1

// Weights scale each scoring signal. The defaults sum to 1.0.
type Weights struct {
	Keyword       float64 `json:"keyword"`
	Industry      float64 `json:"industry"`
	Corroboration float64 `json:"corroboration"`
	Presence      float64 `json:"presence"`
}

// DefaultWeights returns the documented weight vector:
// keyword 0.50, industry 0.30, corroboration 0.10, presence 0.10.
func DefaultWeights() Weights {
	return Weights{
		Keyword:       0.50,
		Industry:      0.30,
		Corroboration: 0.10,
		Presence:      0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Keyword + w.Industry + w.Corroboration + w.Presence
}

// Validate checks that no weight is negative and at least one is positive.
func (w Weights) Validate() error {
	var errs []string
	for name, v := range map[string]float64{
		"keyword":       w.Keyword,
		"industry":      w.Industry,
		"corroboration": w.Corroboration,
		"presence":      w.Presence,
	} {
		if v < 0 || math.IsNaN(v) {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}
	if len(errs) == 0 && w.Sum() <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return eris.Errorf("discovery: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Signals holds the four bounded inputs to a lead's score.
type Signals struct {
	Keyword       float64
	Industry      float64
	Corroboration float64
	Presence      float64

	matchedKeywords []string
}

// Scorer computes match scores and reasons for merged leads.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Signals computes the raw signals for lead without applying weights.
func (s *Scorer) Signals(lead *model.Lead, prefs model.Preferences) Signals {
	var sig Signals

	if n := len(prefs.HighValueKeywords); n > 0 {
		haystack := strings.ToLower(strings.Join([]string{lead.CompanyName, lead.Industry, lead.Description}, "\n"))
		for _, kw := range prefs.HighValueKeywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				sig.matchedKeywords = append(sig.matchedKeywords, kw)
			}
		}
		sig.Keyword = float64(len(sig.matchedKeywords)) / float64(n)
	}

	if industry := strings.TrimSpace(lead.Industry); industry != "" {
		for _, pref := range prefs.PreferredIndustries {
			if strings.EqualFold(industry, strings.TrimSpace(pref)) {
				sig.Industry = 1.0
				break
			}
		}
	}

	if n := len(lead.DataSources); n > 1 {
		sig.Corroboration = math.Min(1.0, float64(n-1)*corroborationStep)
	}

	if lead.Website != "" {
		sig.Presence = 1.0
	}

	return sig
}

// Score sets lead.MatchScore and lead.MatchReasons. Reasons are listed in
// keyword, industry, corroboration, presence order and only for signals that
// added to the score.
func (s *Scorer) Score(lead *model.Lead, prefs model.Preferences) {
	sig := s.Signals(lead, prefs)
	w := s.weights

	var (
		total   float64
		reasons = make([]string, 0, 4)
	)

	if c := w.Keyword * sig.Keyword; c > 0 {
		total += c
		reasons = append(reasons, fmt.Sprintf("Matched %d of %d keywords: %s",
			len(sig.matchedKeywords), len(prefs.HighValueKeywords), strings.Join(sig.matchedKeywords, ", ")))
	}
	if c := w.Industry * sig.Industry; c > 0 {
		total += c
		reasons = append(reasons, "Preferred industry: "+lead.Industry)
	}
	if c := w.Corroboration * sig.Corroboration; c > 0 {
		total += c
		reasons = append(reasons, fmt.Sprintf("Found by %d sources: %s",
			len(lead.DataSources), strings.Join(lead.DataSources, ", ")))
	}
	if c := w.Presence * sig.Presence; c > 0 {
		total += c
		reasons = append(reasons, "Has website: "+lead.Website)
	}

	lead.MatchScore = clamp(math.Round(total*10000)/10000, 0, 1)
	lead.MatchReasons = reasons
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
