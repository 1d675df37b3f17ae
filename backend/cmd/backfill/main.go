package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/graph"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/config"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

// Recomputes similarity relationships over the whole student set. Idempotent:
// rerunning merges the same edges again as no-ops.
func main() {
	noCollege := flag.Bool("no-college", false, "Skip SAME_COLLEGE relationships")
	noBoard := flag.Bool("no-board", false, "Skip SAME_BOARD relationships")
	noStream := flag.Bool("no-stream", false, "Skip SAME_STREAM relationships")
	noAddress := flag.Bool("no-address", false, "Skip NEARBY relationships")
	noInterest := flag.Bool("no-interest", false, "Skip SHARES_INTEREST relationships")
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
	log.Info("Starting relationship backfill...")

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

	opts := graph.BackfillOptions{
		College:  !*noCollege,
		Board:    !*noBoard,
		Stream:   !*noStream,
		Address:  !*noAddress,
		Interest: !*noInterest,
	}

	report, err := repo.MaterializeAll(ctx, opts)
	for _, kind := range report.Kinds {
		if kind.Error != "" {
			fmt.Printf("%-16s FAILED: %s\n", kind.Kind, kind.Error)
			continue
		}
		fmt.Printf("%-16s %d pairs\n", kind.Kind, kind.Pairs)
	}
	if err != nil {
		log.Error("Backfill finished with errors", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Backfill complete")
}
