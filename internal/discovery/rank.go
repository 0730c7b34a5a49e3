package discovery

import (
	"sort"

	"github.com/sells-group/leadfinder/internal/model"
)

// Rank orders leads by score descending, breaking ties by identity key
// ascending, drops leads scoring below minScore and truncates to limit.
func Rank(leads []*model.Lead, limit int, minScore float64) []model.Lead {
	kept := make([]*model.Lead, 0, len(leads))
	for _, l := range leads {
		if l.MatchScore >= minScore {
			kept = append(kept, l)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].MatchScore != kept[j].MatchScore {
			return kept[i].MatchScore > kept[j].MatchScore
		}
		return kept[i].Key < kept[j].Key
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]model.Lead, len(kept))
	for i, l := range kept {
		out[i] = *l
	}
	return out
}
