package resolve

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match tier scores. Lower is better; 0 is an exact normalized match.
const (
	ScoreExact       = 0.0
	ScorePrefix      = 0.02
	ScoreTokenSubset = 0.05
	ScoreSubstring   = 0.08
	ScoreTokenAny    = 0.12
	scoreFuzzyBase   = 0.2
)

// minimum similarity before a fuzzy match is considered at all
const fuzzyFloor = 0.5

// WeightedField is a free-text field considered in the fuzzy tier. Higher
// weight fields (names) produce better scores than lower weight ones
// (usernames, keywords) at the same similarity.
type WeightedField struct {
	Name   string
	Value  string
	Weight float64
}

// Entry is one indexable record.
type Entry struct {
	ID          string
	DisplayName string
	Identifiers []Identifier
	Fuzzy       []WeightedField
}

// Candidate is an accumulated ranking result. Multiple signals may touch the
// same record; matched values and reasons are unioned while the minimum score
// wins.
type Candidate struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Score       float64  `json:"score"`
	Method      string   `json:"method"`
	Matched     []string `json:"matched,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
}

// Index is a searchable structure over a fixed record set. Build once per
// record set; Replace swaps the set wholesale.
type Index struct {
	entries []Entry
}

// NewIndex builds an index over records.
func NewIndex(entries []Entry) *Index {
	return &Index{entries: entries}
}

// Replace swaps the indexed record set.
func (ix *Index) Replace(entries []Entry) {
	ix.entries = entries
}

// Len reports the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.entries)
}

type accumulator struct {
	entry   Entry
	score   float64
	method  string
	matched map[string]struct{}
	reasons map[string]struct{}
}

func (a *accumulator) hit(score float64, method, matched, reason string) {
	if score < a.score {
		a.score = score
		a.method = method
	}
	if matched != "" {
		a.matched[matched] = struct{}{}
	}
	if reason != "" {
		a.reasons[reason] = struct{}{}
	}
}

// Rank scores every indexed record against query and returns up to limit
// candidates, best first. Ties break on display-name lexical order.
func (ix *Index) Rank(query string, limit int) []Candidate {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}
	queryTokens := Tokenize(query)

	accs := make(map[string]*accumulator, len(ix.entries))
	touch := func(e Entry) *accumulator {
		acc, ok := accs[e.ID]
		if !ok {
			acc = &accumulator{
				entry:   e,
				score:   scoreFuzzyBase + 1, // worse than any real hit
				matched: map[string]struct{}{},
				reasons: map[string]struct{}{},
			}
			accs[e.ID] = acc
		}
		return acc
	}

	for _, entry := range ix.entries {
		for _, id := range entry.Identifiers {
			switch {
			case id.Normalized == normalized:
				touch(entry).hit(ScoreExact, "exact", id.Value, "exact:"+id.Source)
			case strings.HasPrefix(id.Normalized, normalized):
				touch(entry).hit(ScorePrefix, "prefix", id.Value, "prefix:"+id.Source)
			}
			idTokens := tokenSet(id.Tokens)
			if len(queryTokens) > 0 && allTokensIn(queryTokens, idTokens) {
				touch(entry).hit(ScoreTokenSubset, "token-subset", id.Value, "tokens:"+id.Source)
			}
			if strings.Contains(id.Normalized, normalized) {
				touch(entry).hit(ScoreSubstring, "substring", id.Value, "substring:"+id.Source)
			}
			for _, tok := range queryTokens {
				if _, ok := idTokens[tok]; ok {
					touch(entry).hit(ScoreTokenAny, "token", id.Value, "token:"+tok)
				}
			}
		}

		for _, field := range entry.Fuzzy {
			sim := similarity(normalized, Normalize(field.Value))
			if sim < fuzzyFloor {
				continue
			}
			weight := field.Weight
			if weight <= 0 || weight > 1 {
				weight = 1
			}
			score := scoreFuzzyBase + (1 - sim*weight)
			touch(entry).hit(score, "fuzzy", field.Value, "fuzzy:"+field.Name)
		}
	}

	candidates := make([]Candidate, 0, len(accs))
	for _, acc := range accs {
		if acc.score > scoreFuzzyBase+1-1e-9 {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:          acc.entry.ID,
			DisplayName: acc.entry.DisplayName,
			Score:       acc.score,
			Method:      acc.method,
			Matched:     sortedSet(acc.matched),
			Reasons:     sortedSet(acc.reasons),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score < candidates[j].Score
		}
		if candidates[i].DisplayName != candidates[j].DisplayName {
			return candidates[i].DisplayName < candidates[j].DisplayName
		}
		return candidates[i].ID < candidates[j].ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Direct wraps a known identifier as a score-0 candidate, bypassing ranking.
func Direct(id, displayName string) Candidate {
	return Candidate{ID: id, DisplayName: displayName, Score: ScoreExact, Method: "direct"}
}

func allTokensIn(tokens []string, set map[string]struct{}) bool {
	for _, t := range tokens {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// similarity is a normalized Levenshtein ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
