package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "nepal board", NormalizeKey("  Nepal Board "))
	assert.Equal(t, "math", NormalizeKey("MATH"))
	assert.Equal(t, "", NormalizeKey("   "))
	assert.Equal(t, "", NormalizeKey(""))
}

func TestKeysEqual_EmptyNeverMatchesEmpty(t *testing.T) {
	assert.False(t, keysEqual("", ""))
	assert.False(t, keysEqual("  ", ""))
	assert.False(t, keysEqual("", "Pulchowk"))
	assert.True(t, keysEqual("Pulchowk Campus", " pulchowk campus "))
}

func TestSharedInterests(t *testing.T) {
	shared := SharedInterests(
		[]string{"Math", "chess", "MATH", "fifa"},
		[]string{"math ", "art", "Fifa"},
	)
	// Subject casing and order preserved, duplicate "MATH" collapsed
	assert.Equal(t, []string{"Math", "fifa"}, shared)
}

func TestSharedInterests_Empty(t *testing.T) {
	assert.Nil(t, SharedInterests(nil, []string{"math"}))
	assert.Nil(t, SharedInterests([]string{"math"}, nil))
	assert.Nil(t, SharedInterests([]string{"chess"}, []string{"math"}))
	// Blank entries never count as overlap
	assert.Nil(t, SharedInterests([]string{"  "}, []string{" "}))
}

func TestEvaluate_BoardAndInterestScenario(t *testing.T) {
	a := student.Student{ID: 1, Board: "Nepal Board", Interests: []string{"math", "chess"}}
	b := student.Student{ID: 2, Board: "nepal board ", Interests: []string{"Math", "art"}}

	result := Evaluate(a, b)

	assert.True(t, result.Board)
	assert.False(t, result.Stream)
	assert.False(t, result.College)
	assert.False(t, result.Address)
	assert.Equal(t, []string{"math"}, result.SharedInterests)
	assert.Equal(t, 2, result.Score())
	assert.Equal(t, []string{"board", "interests"}, result.MatchedOn())
}

func TestEvaluate_NoAttributesNoMatch(t *testing.T) {
	a := student.Student{ID: 1, Name: "A"}
	b := student.Student{ID: 2, Name: "B"}

	result := Evaluate(a, b)

	assert.Equal(t, 0, result.Score())
	assert.Empty(t, result.MatchedOn())
}

func TestEvaluate_AllDimensions(t *testing.T) {
	a := student.Student{
		ID: 1, College: "Pulchowk", Board: "NEB", Stream: "Science",
		Address: "Kathmandu", Interests: []string{"fifa", "chess"},
	}
	b := student.Student{
		ID: 2, College: "pulchowk", Board: "neb", Stream: "science",
		Address: "KATHMANDU", Interests: []string{"FIFA", "Chess"},
	}

	result := Evaluate(a, b)

	assert.Equal(t, 6, result.Score())
	assert.Equal(t, []string{"board", "stream", "college", "address", "interests"}, result.MatchedOn())
}
