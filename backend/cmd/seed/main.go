package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/graph"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/config"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

var sampleStudents = []student.Student{
	{Name: "Aashish", Address: "Kathmandu", College: "Pulchowk Campus", Board: "Nepal Board", Stream: "Science", Interests: []string{"math", "chess", "fifa"}},
	{Name: "Pragya", Address: "Lalitpur", College: "Pulchowk Campus", Board: "Nepal Board", Stream: "Science", Interests: []string{"art", "math"}},
	{Name: "Siddharth", Address: "Kathmandu", College: "St. Xavier's", Board: "CBSE", Stream: "Management", Interests: []string{"fifa", "music"}},
	{Name: "Nabin", Address: "Pokhara", College: "Prithvi Narayan Campus", Board: "Nepal Board", Stream: "Humanities", Interests: []string{"chess", "literature"}},
}

// Seeds a small sample cohort and materializes their relationships.
func main() {
	skipEdges := flag.Bool("skip-edges", false, "Seed nodes without materializing relationships")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure graph schema", zap.Error(err))
	}

	for _, s := range sampleStudents {
		id, err := repo.CreateStudent(ctx, s)
		if err != nil {
			log.Fatal("Failed to seed student", zap.String("name", s.Name), zap.Error(err))
		}
		log.Info("Seeded student", zap.Int64("id", id), zap.String("name", s.Name))
	}

	if !*skipEdges {
		report, err := repo.MaterializeAll(ctx, graph.AllKinds())
		if err != nil {
			log.Fatal("Failed to materialize relationships", zap.Error(err))
		}
		for _, kind := range report.Kinds {
			log.Info("Materialized", zap.String("kind", string(kind.Kind)), zap.Int("pairs", kind.Pairs))
		}
	}

	log.Info("Seeding complete")
}
