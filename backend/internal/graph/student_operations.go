package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
)

// ============================================================================
// Student Node Operations
// ============================================================================

const studentReturnClause = `
	s.id AS id, s.name AS name, s.address AS address,
	s.college AS college, s.board AS board, s.stream AS stream,
	s.interests AS interests
`

func studentFromRecord(record *neo4j.Record) student.Student {
	return student.Student{
		ID:        getInt64FromRecord(record, "id"),
		Name:      getStringFromRecord(record, "name"),
		Address:   getStringFromRecord(record, "address"),
		College:   getStringFromRecord(record, "college"),
		Board:     getStringFromRecord(record, "board"),
		Stream:    getStringFromRecord(record, "stream"),
		Interests: getStringSliceFromRecord(record, "interests"),
	}
}

func studentParams(s student.Student) map[string]interface{} {
	interests := s.Interests
	if interests == nil {
		interests = []string{}
	}
	return map[string]interface{}{
		"id":        s.ID,
		"name":      s.Name,
		"address":   s.Address,
		"college":   s.College,
		"board":     s.Board,
		"stream":    s.Stream,
		"interests": interests,
	}
}

// CreateStudent allocates the next id (max existing + 1, or 1) and inserts the
// node, both inside one managed write transaction so concurrent onboarding
// calls never race to the same id. Returns the assigned id.
func (r *Repository) CreateStudent(ctx context.Context, s student.Student) (int64, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	assigned, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, "MATCH (s:Student) RETURN max(s.id) AS max_id", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read max id: %w", err)
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read max id: %w", err)
		}
		nextID := getInt64FromRecord(record, "max_id") + 1

		s.ID = nextID
		createQuery := `
			CREATE (s:Student {
				id: $id,
				name: $name,
				address: $address,
				college: $college,
				board: $board,
				stream: $stream,
				interests: $interests
			})
			RETURN s.id AS id
		`
		created, err := tx.Run(ctx, createQuery, studentParams(s))
		if err != nil {
			return nil, wrapInsertError(nextID, err)
		}
		if _, err := created.Single(ctx); err != nil {
			return nil, wrapInsertError(nextID, err)
		}
		return nextID, nil
	})
	if err != nil {
		return 0, err
	}

	id := assigned.(int64)
	r.logger.Info("Student created",
		zap.Int64("student_id", id),
		zap.String("name", s.Name),
	)
	return id, nil
}

// wrapInsertError maps a unique-constraint violation onto the duplicate-id
// error so the caller sees the invariant breach rather than a raw driver error
func wrapInsertError(id int64, err error) error {
	if strings.Contains(err.Error(), "ConstraintValidationFailed") {
		return apperrors.NewDuplicateStudentID(id, err)
	}
	return fmt.Errorf("failed to insert student %d: %w", id, err)
}

// StudentByID is a point lookup by id
func (r *Repository) StudentByID(ctx context.Context, id int64) (*student.Student, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `MATCH (s:Student {id: $id}) RETURN ` + studentReturnClause

	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student %d: %w", id, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch student %d: %w", id, err)
		}
		return nil, apperrors.NewStudentNotFound(id)
	}

	s := studentFromRecord(result.Record())
	return &s, nil
}

// AllStudents returns every student node, ordered by id. Used by the
// materializer, the recommendation engine and fuzzy search; a full scan is
// fine at the node counts this system targets.
func (r *Repository) AllStudents(ctx context.Context) ([]student.Student, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	query := `MATCH (s:Student) RETURN ` + studentReturnClause + ` ORDER BY s.id`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	var students []student.Student
	for result.Next(ctx) {
		students = append(students, studentFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// CreateStudentIfAbsent inserts a student with a fixed id unless a node with
// that id already exists. Existing nodes are never touched, so the graph wins
// every conflict with mirror data, and losing a race against a concurrent
// onboarding insert degrades to a no-op. Returns whether a node was created.
func (r *Repository) CreateStudentIfAbsent(ctx context.Context, s student.Student) (bool, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (s:Student {id: $id})
		ON CREATE SET
			s.name = $name,
			s.address = $address,
			s.college = $college,
			s.board = $board,
			s.stream = $stream,
			s.interests = $interests,
			s.mirror_created = true
		WITH s, coalesce(s.mirror_created, false) AS created
		REMOVE s.mirror_created
		RETURN created
	`

	result, err := session.Run(ctx, query, studentParams(s))
	if err != nil {
		return false, fmt.Errorf("failed to merge student %d: %w", s.ID, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to merge student %d: %w", s.ID, err)
	}

	created, _ := record.Get("created")
	wasCreated, _ := created.(bool)
	return wasCreated, nil
}
