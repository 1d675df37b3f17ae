package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

// ============================================================================
// Mirror File Reconciliation
// ============================================================================

// Store reads and writes the flat mirror file, a human-editable JSON array of
// student records keyed by id
type Store struct {
	path string
}

// NewStore creates a mirror store for the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads all records from the mirror file. A missing file is an empty
// mirror, not an error.
func (s *Store) Load() ([]student.Student, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mirror file %s: %w", s.path, err)
	}

	var records []student.Student
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse mirror file %s: %w", s.path, err)
	}
	return records, nil
}

// Save writes records back to the mirror file, pretty-printed so the file
// stays hand-editable
func (s *Store) Save(records []student.Student) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mirror records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mirror file %s: %w", s.path, err)
	}
	return nil
}

// GraphInserter is the single store primitive reconciliation needs: an
// insert that never touches an existing node
type GraphInserter interface {
	CreateStudentIfAbsent(ctx context.Context, s student.Student) (bool, error)
}

// Report summarizes one reconciliation pass
type Report struct {
	Inserted         int `json:"inserted"`
	SkippedExisting  int `json:"skipped_existing"`
	SkippedMalformed int `json:"skipped_malformed"`
}

// Reconciler pulls mirror records into the graph. The graph wins every
// conflict: records whose id already has a node are skipped, never merged.
type Reconciler struct {
	store  *Store
	graph  GraphInserter
	logger *zap.Logger
}

// NewReconciler creates a mirror reconciler
func NewReconciler(store *Store, graph GraphInserter) *Reconciler {
	return &Reconciler{
		store:  store,
		graph:  graph,
		logger: logger.Get(),
	}
}

// Reconcile inserts every well-formed mirror record whose id is absent from
// the graph. Malformed records (non-positive id, empty name) are logged and
// skipped; the pass continues with the remaining records. Safe to call
// repeatedly and concurrently with onboarding: losing an id race degrades to
// a skip.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	records, err := r.store.Load()
	if err != nil {
		return Report{}, err
	}

	var report Report
	for i, record := range records {
		if reason := validate(record); reason != "" {
			report.SkippedMalformed++
			r.logger.Warn("Skipping malformed mirror record",
				zap.Error(apperrors.NewMalformedMirrorRecord(i, reason)),
			)
			continue
		}

		created, err := r.graph.CreateStudentIfAbsent(ctx, record)
		if err != nil {
			return report, fmt.Errorf("failed to reconcile mirror record %d: %w", record.ID, err)
		}
		if created {
			report.Inserted++
		} else {
			report.SkippedExisting++
		}
	}

	r.logger.Info("Mirror reconciliation finished",
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped_existing", report.SkippedExisting),
		zap.Int("skipped_malformed", report.SkippedMalformed),
	)
	return report, nil
}

// Sync adapts Reconcile for callers that only care whether the pass ran
func (r *Reconciler) Sync(ctx context.Context) error {
	_, err := r.Reconcile(ctx)
	return err
}

func validate(s student.Student) string {
	if s.ID <= 0 {
		return "id must be a positive integer"
	}
	if s.Name == "" {
		return "name is required"
	}
	return ""
}
