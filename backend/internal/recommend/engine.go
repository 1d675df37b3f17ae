package recommend

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/match"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

// Store is the node-store surface the engine reads from
type Store interface {
	StudentByID(ctx context.Context, id int64) (*student.Student, error)
	AllStudents(ctx context.Context) ([]student.Student, error)
}

// MirrorSyncer pulls mirror-file records into the store; the engine triggers
// it once when a subject id is unknown before giving up on the lookup
type MirrorSyncer interface {
	Sync(ctx context.Context) error
}

// Engine ranks peers for a subject student by weighted attribute overlap.
// It is read-only against the graph; edge materialization is a separate,
// explicitly invoked precomputation.
type Engine struct {
	store  Store
	syncer MirrorSyncer
	logger *zap.Logger
}

// NewEngine creates a recommendation engine. syncer may be nil.
func NewEngine(store Store, syncer MirrorSyncer) *Engine {
	return &Engine{
		store:  store,
		syncer: syncer,
		logger: logger.Get(),
	}
}

// Recommend scores every other student against the subject and returns those
// with at least one matching dimension, ordered by score descending with id
// ascending as the tie-break so repeated calls rank identically. An unknown
// subject id yields an empty result, not an error.
func (e *Engine) Recommend(ctx context.Context, id int64) ([]student.Recommendation, error) {
	subject, err := e.resolveSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return []student.Recommendation{}, nil
	}

	candidates, err := e.store.AllStudents(ctx)
	if err != nil {
		return nil, err
	}

	recommendations := []student.Recommendation{}
	for _, candidate := range candidates {
		if candidate.ID == subject.ID {
			continue
		}
		result := match.Evaluate(*subject, candidate)
		score := result.Score()
		if score == 0 {
			continue
		}
		recommendations = append(recommendations, student.Recommendation{
			ID:                candidate.ID,
			Name:              candidate.Name,
			Address:           candidate.Address,
			MatchedOn:         result.MatchedOn(),
			MatchingInterests: result.SharedInterests,
			SameAddress:       result.Address,
			Score:             score,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].ID < recommendations[j].ID
	})

	e.logger.Debug("Recommendations computed",
		zap.Int64("subject_id", id),
		zap.Int("matches", len(recommendations)),
	)
	return recommendations, nil
}

// resolveSubject looks the subject up, falling back to one mirror sync and a
// single retry when the id is unknown. Returns (nil, nil) when the subject
// genuinely does not exist.
func (e *Engine) resolveSubject(ctx context.Context, id int64) (*student.Student, error) {
	subject, err := e.store.StudentByID(ctx, id)
	if err == nil {
		return subject, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	if e.syncer == nil {
		return nil, nil
	}
	if syncErr := e.syncer.Sync(ctx); syncErr != nil {
		e.logger.Warn("Mirror sync during recommend failed",
			zap.Int64("subject_id", id),
			zap.Error(syncErr),
		)
	}

	subject, err = e.store.StudentByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return subject, nil
}
