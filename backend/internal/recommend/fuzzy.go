package recommend

import (
	"context"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
)

// ============================================================================
// Fuzzy Name Lookup
// ============================================================================

// levenshteinRatio scores the similarity of two strings on a 0-100 scale
// using edit distance with substitutions weighted double, so the ratio is
// (matched characters) / (total characters).
func levenshteinRatio(a, b string) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	total := len(a) + len(b)
	return (total - distance) * 100 / total
}

// FuzzySearch ranks students by approximate name similarity to query.
// Comparison is case-insensitive; results at or above threshold are returned
// ordered by similarity descending, id ascending, capped at limit.
func (e *Engine) FuzzySearch(ctx context.Context, query string, threshold, limit int) ([]student.FuzzyMatch, error) {
	if limit < 1 {
		limit = 10
	}

	students, err := e.store.AllStudents(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := []student.FuzzyMatch{}
	for _, s := range students {
		similarity := levenshteinRatio(needle, strings.ToLower(s.Name))
		if similarity >= threshold {
			matches = append(matches, student.FuzzyMatch{Student: s, Similarity: similarity})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
