package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/match"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
)

// ============================================================================
// Relationship Materialization
// ============================================================================

// RelKind names one of the five similarity edge types
type RelKind string

const (
	RelSameCollege    RelKind = "SAME_COLLEGE"
	RelSameBoard      RelKind = "SAME_BOARD"
	RelSameStream     RelKind = "SAME_STREAM"
	RelNearby         RelKind = "NEARBY"
	RelSharesInterest RelKind = "SHARES_INTEREST"
)

// relKinds is the fixed evaluation order for reports and tests
var relKinds = []RelKind{RelSameCollege, RelSameBoard, RelSameStream, RelNearby, RelSharesInterest}

// BackfillOptions selects which edge kinds a backfill run materializes
type BackfillOptions struct {
	College  bool `json:"college"`
	Board    bool `json:"board"`
	Stream   bool `json:"stream"`
	Address  bool `json:"address"`
	Interest bool `json:"interest"`
}

// AllKinds enables every edge kind
func AllKinds() BackfillOptions {
	return BackfillOptions{College: true, Board: true, Stream: true, Address: true, Interest: true}
}

func (o BackfillOptions) enabled(kind RelKind) bool {
	switch kind {
	case RelSameCollege:
		return o.College
	case RelSameBoard:
		return o.Board
	case RelSameStream:
		return o.Stream
	case RelNearby:
		return o.Address
	case RelSharesInterest:
		return o.Interest
	}
	return false
}

// KindReport is the per-kind outcome of a materialization run
type KindReport struct {
	Kind  RelKind `json:"kind"`
	Pairs int     `json:"pairs"`
	Error string  `json:"error,omitempty"`
}

// BackfillReport aggregates per-kind outcomes; one failed kind never blocks
// the others
type BackfillReport struct {
	Kinds []KindReport `json:"kinds"`
}

// edgePair is one canonical (lower id -> higher id) edge to merge
type edgePair struct {
	a, b   int64
	common []string // SHARES_INTEREST only
}

func (p edgePair) params(kind RelKind) map[string]interface{} {
	m := map[string]interface{}{"a": p.a, "b": p.b}
	if kind == RelSharesInterest {
		m["common"] = p.common
	}
	return m
}

// pairsFor evaluates one unordered student pair and returns the edge kinds it
// produces. Ordering is canonical: x becomes the source iff x.id < y.id, and
// the shared-interest values keep the lower-id side's casing.
func pairsFor(x, y student.Student) map[RelKind]edgePair {
	low, high := x, y
	if low.ID > high.ID {
		low, high = high, low
	}

	res := match.Evaluate(low, high)
	pairs := make(map[RelKind]edgePair)
	if res.College {
		pairs[RelSameCollege] = edgePair{a: low.ID, b: high.ID}
	}
	if res.Board {
		pairs[RelSameBoard] = edgePair{a: low.ID, b: high.ID}
	}
	if res.Stream {
		pairs[RelSameStream] = edgePair{a: low.ID, b: high.ID}
	}
	if res.Address {
		pairs[RelNearby] = edgePair{a: low.ID, b: high.ID}
	}
	if len(res.SharedInterests) > 0 {
		pairs[RelSharesInterest] = edgePair{a: low.ID, b: high.ID, common: res.SharedInterests}
	}
	return pairs
}

// mergeEdges persists one kind's pairs in a single batched write. MERGE on the
// canonical pair makes the operation idempotent; re-running it is a no-op.
func (r *Repository) mergeEdges(ctx context.Context, kind RelKind, pairs []edgePair) error {
	if len(pairs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UNWIND $pairs AS pair
		MATCH (a:Student {id: pair.a})
		MATCH (b:Student {id: pair.b})
		MERGE (a)-[:%s]->(b)
	`, kind)
	if kind == RelSharesInterest {
		query = `
			UNWIND $pairs AS pair
			MATCH (a:Student {id: pair.a})
			MATCH (b:Student {id: pair.b})
			MERGE (a)-[rel:SHARES_INTEREST]->(b)
			SET rel.common = pair.common
		`
	}

	params := make([]interface{}, 0, len(pairs))
	for _, p := range pairs {
		params = append(params, p.params(kind))
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	if _, err := session.Run(ctx, query, map[string]interface{}{"pairs": params}); err != nil {
		return fmt.Errorf("failed to merge %s edges: %w", kind, err)
	}
	return nil
}

// MaterializeForStudent computes and persists the similarity edges between a
// freshly onboarded student and every existing one. Each kind is written
// independently: a failure on one kind is reported but does not abort the
// remaining kinds, and every write is individually retryable via backfill.
func (r *Repository) MaterializeForStudent(ctx context.Context, s student.Student) error {
	others, err := r.AllStudents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load students for materialization: %w", err)
	}

	byKind := make(map[RelKind][]edgePair)
	for _, o := range others {
		if o.ID == s.ID {
			continue
		}
		for kind, pair := range pairsFor(s, o) {
			byKind[kind] = append(byKind[kind], pair)
		}
	}

	var errs []error
	for _, kind := range relKinds {
		if err := r.mergeEdges(ctx, kind, byKind[kind]); err != nil {
			r.logger.Warn("Edge materialization failed for kind",
				zap.String("kind", string(kind)),
				zap.Int64("student_id", s.ID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MaterializeAll recomputes edges for every unordered student pair. Safe to
// run repeatedly and concurrently with incremental inserts: the worst case is
// redundant MERGE no-ops, never duplicate or lost edges. Enabled kinds run
// concurrently, each reporting its own outcome.
func (r *Repository) MaterializeAll(ctx context.Context, opts BackfillOptions) (BackfillReport, error) {
	all, err := r.AllStudents(ctx)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("failed to load students for backfill: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	byKind := make(map[RelKind][]edgePair)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			for kind, pair := range pairsFor(all[i], all[j]) {
				byKind[kind] = append(byKind[kind], pair)
			}
		}
	}

	// Plain errgroup, no shared cancellation: one failed kind must not abort
	// the writes of the others.
	report := BackfillReport{Kinds: make([]KindReport, len(relKinds))}
	var g errgroup.Group
	for i, kind := range relKinds {
		i, kind := i, kind
		report.Kinds[i] = KindReport{Kind: kind}
		if !opts.enabled(kind) {
			continue
		}
		pairs := byKind[kind]
		report.Kinds[i].Pairs = len(pairs)
		g.Go(func() error {
			if err := r.mergeEdges(ctx, kind, pairs); err != nil {
				report.Kinds[i].Error = err.Error()
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		r.logger.Warn("Backfill finished with failed kinds", zap.Error(err))
	} else {
		r.logger.Info("Backfill finished", zap.Int("students", len(all)))
	}
	return report, err
}
