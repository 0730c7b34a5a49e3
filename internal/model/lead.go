package model

// RawCandidate is one source's view of a possible lead. Optional fields are
// empty when the source did not supply them.
type RawCandidate struct {
	SourceID    string `json:"source_id" yaml:"source_id" mapstructure:"source_id"`
	CompanyName string `json:"company_name" yaml:"company_name" mapstructure:"company_name"`
	Website     string `json:"website,omitempty" yaml:"website" mapstructure:"website"`
	Industry    string `json:"industry,omitempty" yaml:"industry" mapstructure:"industry"`
	Description string `json:"description,omitempty" yaml:"description" mapstructure:"description"`
}

// Lead is a company merged from one or more raw candidates and scored
// against the call's preferences.
type Lead struct {
	Key          string   `json:"key"`
	CompanyName  string   `json:"company_name"`
	Website      string   `json:"website,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Description  string   `json:"description,omitempty"`
	DataSources  []string `json:"data_sources"`
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

// HasSource reports whether id contributed to the lead.
func (l *Lead) HasSource(id string) bool {
	for _, s := range l.DataSources {
		if s == id {
			return true
		}
	}
	return false
}
