package registry

import (
	"strings"

	"afisha/internal/title"
)

// MatchKind classifies the outcome of a title match.
type MatchKind int

const (
	// MatchNone means no candidate shared a single word with the query.
	MatchNone MatchKind = iota
	// MatchUnique means exactly one candidate won.
	MatchUnique
	// MatchAmbiguous means several candidates tied at the top score.
	MatchAmbiguous
)

// MatchResult reports how a scraped title resolved against the register.
type MatchResult struct {
	Kind MatchKind
	// ID is the winning register id when Kind is MatchUnique.
	ID int64
	// IDs holds every candidate tied at the top score when Kind is
	// MatchAmbiguous, in candidate order.
	IDs []int64
}

// Match resolves a scraped title against the supplied candidates. Callers
// pre-filter candidates by production-year window; Match only compares text.
//
// A candidate whose normalized title equals the normalized query wins
// immediately. Otherwise candidates are scored by consumable word overlap:
// each query word consumes at most one matching word from the candidate, so
// repeated words cannot double-count. The best score takes it; ties are
// reported as ambiguous and a top score of zero as no match.
func Match(query string, candidates []Candidate) MatchResult {
	normalized := title.Normalize(query)
	for _, c := range candidates {
		if title.Normalize(c.Title) == normalized {
			return MatchResult{Kind: MatchUnique, ID: c.ID}
		}
	}

	queryWords := strings.Fields(normalized)
	best := 0
	scores := make([]int, len(candidates))
	for i, c := range candidates {
		remaining := strings.Fields(title.Normalize(c.Title))
		for _, word := range queryWords {
			for j, candidateWord := range remaining {
				if candidateWord == word {
					remaining = append(remaining[:j], remaining[j+1:]...)
					scores[i]++
					break
				}
			}
		}
		if scores[i] > best {
			best = scores[i]
		}
	}

	if best == 0 {
		return MatchResult{Kind: MatchNone}
	}

	var top []int64
	for i, score := range scores {
		if score == best {
			top = append(top, candidates[i].ID)
		}
	}
	if len(top) == 1 {
		return MatchResult{Kind: MatchUnique, ID: top[0]}
	}
	return MatchResult{Kind: MatchAmbiguous, IDs: top}
}
