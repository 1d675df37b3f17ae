package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a new graph repository. The caller owns the driver;
// the repository only opens and closes sessions on it.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

func (r *Repository) readSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.database,
	})
}

func (r *Repository) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
}

// EnsureSchema creates the unique constraint on Student.id if it does not
// exist yet. The constraint is what turns an id-allocation race into a loud
// failure instead of a silent overwrite.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE CONSTRAINT student_id_unique IF NOT EXISTS
		FOR (s:Student) REQUIRE s.id IS UNIQUE
	`

	if _, err := session.Run(ctx, query, nil); err != nil {
		return fmt.Errorf("failed to create id constraint: %w", err)
	}

	r.logger.Info("Student id constraint ensured")
	return nil
}

// Ping verifies that the database answers a trivial query
func (r *Repository) Ping(ctx context.Context) error {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "RETURN 1", nil)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
