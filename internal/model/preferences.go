package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Limits on caller-supplied preference sets.
const (
	MaxPreferenceEntries = 50
	MaxPreferenceLength  = 100
)

// Preferences are the caller-supplied criteria a discovery call scores leads against.
// Both fields are sets; Normalize collapses duplicates.
type Preferences struct {
	HighValueKeywords   []string `json:"high_value_keywords" mapstructure:"high_value_keywords" validate:"max=50,dive,required,max=100"`
	PreferredIndustries []string `json:"preferred_industries" mapstructure:"preferred_industries" validate:"max=50,dive,required,max=100"`
}

// Normalize returns a copy with entries trimmed, blanks dropped and
// case-insensitive duplicates removed. First occurrence wins.
func (p Preferences) Normalize() Preferences {
	return Preferences{
		HighValueKeywords:   uniqueFold(p.HighValueKeywords),
		PreferredIndustries: uniqueFold(p.PreferredIndustries),
	}
}

// Validate reports whether the preferences, as supplied by the caller, can
// drive a discovery call. Empty entries, entries longer than
// MaxPreferenceLength and sets larger than MaxPreferenceEntries are
// rejected, and at least one non-blank keyword or industry is required.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return eris.Wrap(err, "preferences: invalid entry")
	}
	n := p.Normalize()
	if len(n.HighValueKeywords) == 0 && len(n.PreferredIndustries) == 0 {
		return eris.New("preferences: at least one high_value_keyword or preferred_industry is required")
	}
	return nil
}

func uniqueFold(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
