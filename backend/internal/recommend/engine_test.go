package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
)

// Mock implementations for testing

type mockStore struct {
	students []student.Student
	listErr  error
}

func (m *mockStore) StudentByID(ctx context.Context, id int64) (*student.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], nil
		}
	}
	return nil, apperrors.NewStudentNotFound(id)
}

func (m *mockStore) AllStudents(ctx context.Context) ([]student.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.students, nil
}

type mockSyncer struct {
	calls   int
	onSync  func()
	syncErr error
}

func (m *mockSyncer) Sync(ctx context.Context) error {
	m.calls++
	if m.onSync != nil {
		m.onSync()
	}
	return m.syncErr
}

func TestRecommend_BoardAndInterestScenario(t *testing.T) {
	store := &mockStore{students: []student.Student{
		{ID: 1, Name: "A", Board: "Nepal Board", Interests: []string{"math", "chess"}},
		{ID: 2, Name: "B", Board: "nepal board ", Interests: []string{"Math", "art"}},
	}}
	engine := NewEngine(store, nil)

	recs, err := engine.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	if rec.ID != 2 || rec.Score != 2 {
		t.Errorf("Expected student 2 with score 2, got id=%d score=%d", rec.ID, rec.Score)
	}
	if len(rec.MatchedOn) != 2 || rec.MatchedOn[0] != "board" || rec.MatchedOn[1] != "interests" {
		t.Errorf("Expected matched_on [board interests], got %v", rec.MatchedOn)
	}
	if len(rec.MatchingInterests) != 1 || rec.MatchingInterests[0] != "math" {
		t.Errorf("Expected matching_interests [math], got %v", rec.MatchingInterests)
	}
	if rec.SameAddress {
		t.Error("Expected same_address to be false")
	}
}

func TestRecommend_ZeroScoreExcluded(t *testing.T) {
	store := &mockStore{students: []student.Student{
		{ID: 1, Name: "A", Board: "NEB"},
		{ID: 2, Name: "B", Board: "CBSE"},
	}}
	engine := NewEngine(store, nil)

	recs, err := engine.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %d", len(recs))
	}
}

func TestRecommend_DeterministicTieBreak(t *testing.T) {
	store := &mockStore{students: []student.Student{
		{ID: 5, Name: "High", Board: "NEB", Stream: "Science"},
		{ID: 1, Name: "Subject", Board: "NEB", Stream: "Science", Address: "Kathmandu"},
		{ID: 3, Name: "TieLow", Board: "NEB"},
		{ID: 2, Name: "TieLower", Stream: "Science"},
	}}
	engine := NewEngine(store, nil)

	for run := 0; run < 3; run++ {
		recs, err := engine.Recommend(context.Background(), 1)
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("Expected 3 recommendations, got %d", len(recs))
		}
		// score 2 first, then equal scores ordered by ascending id
		if recs[0].ID != 5 || recs[1].ID != 2 || recs[2].ID != 3 {
			t.Errorf("Run %d: expected order [5 2 3], got [%d %d %d]",
				run, recs[0].ID, recs[1].ID, recs[2].ID)
		}
	}
}

func TestRecommend_UnknownIDReturnsEmptyNotError(t *testing.T) {
	store := &mockStore{}
	syncer := &mockSyncer{}
	engine := NewEngine(store, syncer)

	recs, err := engine.Recommend(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected nil error for unknown id, got %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Expected empty slice, got %v", recs)
	}
	if syncer.calls != 1 {
		t.Errorf("Expected exactly one mirror sync attempt, got %d", syncer.calls)
	}
}

func TestRecommend_MirrorSyncSuppliesSubject(t *testing.T) {
	store := &mockStore{students: []student.Student{
		{ID: 2, Name: "B", College: "Pulchowk"},
	}}
	syncer := &mockSyncer{}
	syncer.onSync = func() {
		store.students = append(store.students, student.Student{ID: 1, Name: "A", College: "Pulchowk"})
	}
	engine := NewEngine(store, syncer)

	recs, err := engine.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 2 {
		t.Fatalf("Expected student 2 recommended after sync, got %v", recs)
	}
}

func TestRecommend_StoreErrorPropagates(t *testing.T) {
	store := &mockStore{
		students: []student.Student{{ID: 1, Name: "A"}},
		listErr:  errors.New("connection refused"),
	}
	engine := NewEngine(store, nil)

	if _, err := engine.Recommend(context.Background(), 1); err == nil {
		t.Fatal("Expected store error to propagate")
	}
}
