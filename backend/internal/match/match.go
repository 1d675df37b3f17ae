package match

import (
	"strings"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
)

// ============================================================================
// Attribute Normalization and Pair Comparison
// ============================================================================

// NormalizeKey canonicalizes a text attribute for comparison:
// leading/trailing whitespace is trimmed and the result is lower-cased.
// A missing attribute normalizes to the empty string.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// keysEqual reports whether two attribute values match. Empty never matches
// empty: a student with no college set shares a college with nobody.
func keysEqual(a, b string) bool {
	ka, kb := NormalizeKey(a), NormalizeKey(b)
	return ka != "" && ka == kb
}

// SharedInterests returns the interests of subject that other also has, under
// normalized comparison. The returned values keep the subject side's original
// casing and order, with duplicates within the subject list collapsed to one
// entry per normalized key.
func SharedInterests(subject, other []string) []string {
	if len(subject) == 0 || len(other) == 0 {
		return nil
	}

	otherKeys := make(map[string]bool, len(other))
	for _, v := range other {
		if k := NormalizeKey(v); k != "" {
			otherKeys[k] = true
		}
	}

	seen := make(map[string]bool, len(subject))
	var shared []string
	for _, v := range subject {
		k := NormalizeKey(v)
		if k == "" || seen[k] {
			continue
		}
		if otherKeys[k] {
			seen[k] = true
			shared = append(shared, v)
		}
	}
	return shared
}

// Result holds the outcome of comparing two students across the five
// similarity dimensions
type Result struct {
	Board           bool
	Stream          bool
	College         bool
	Address         bool
	SharedInterests []string
}

// Score is the integer ranking value: one point per matched field plus one
// per shared interest
func (r Result) Score() int {
	score := len(r.SharedInterests)
	for _, matched := range []bool{r.Board, r.Stream, r.College, r.Address} {
		if matched {
			score++
		}
	}
	return score
}

// MatchedOn lists the names of the matched dimensions, with "interests"
// appended when the intersection is non-empty
func (r Result) MatchedOn() []string {
	fields := []string{}
	if r.Board {
		fields = append(fields, "board")
	}
	if r.Stream {
		fields = append(fields, "stream")
	}
	if r.College {
		fields = append(fields, "college")
	}
	if r.Address {
		fields = append(fields, "address")
	}
	if len(r.SharedInterests) > 0 {
		fields = append(fields, "interests")
	}
	return fields
}

// Evaluate compares subject a against candidate b. Both the relationship
// materializer and the recommendation engine rank through this single
// comparator so edges and scores can never disagree on what "matches" means.
// Shared interests carry a's original casing.
func Evaluate(a, b student.Student) Result {
	return Result{
		Board:           keysEqual(a.Board, b.Board),
		Stream:          keysEqual(a.Stream, b.Stream),
		College:         keysEqual(a.College, b.College),
		Address:         keysEqual(a.Address, b.Address),
		SharedInterests: SharedInterests(a.Interests, b.Interests),
	}
}
