package student

// ============================================================================
// Domain Models
// ============================================================================

// Student represents a single onboarded student node.
// ID is assigned by the store on creation and never changes afterwards.
type Student struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	College   string   `json:"college,omitempty"`
	Board     string   `json:"board,omitempty"`
	Stream    string   `json:"stream,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// Recommendation is one ranked peer suggestion for a subject student
type Recommendation struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Address           string   `json:"address,omitempty"`
	MatchedOn         []string `json:"matched_on"`
	MatchingInterests []string `json:"matching_interests,omitempty"`
	SameAddress       bool     `json:"same_address"`
	Score             int      `json:"score"`
}

// FuzzyMatch is one approximate-name lookup result
type FuzzyMatch struct {
	Student
	Similarity int `json:"similarity"` // 0-100
}
