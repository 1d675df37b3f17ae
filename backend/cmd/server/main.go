package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/dabster108/GraphDB-Neo4j/backend/internal/adapter"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/graph"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/mirror"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/recommend"
	"github.com/dabster108/GraphDB-Neo4j/backend/internal/student"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/config"
	apperrors "github.com/dabster108/GraphDB-Neo4j/backend/pkg/errors"
	"github.com/dabster108/GraphDB-Neo4j/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting student recommendation server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure graph schema", zap.Error(err))
	}
	mirrorStore := mirror.NewStore(cfg.MirrorPath)
	reconciler := mirror.NewReconciler(mirrorStore, repo)
	engine := recommend.NewEngine(repo, reconciler)
	llmAdapter := adapter.NewLLMAdapter(cfg.LLMURL, cfg.LLMAPIKey, cfg.ModelID)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		// Onboard a new student
		api.POST("/onboard", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				Name      string   `json:"name" binding:"required"`
				Address   string   `json:"address"`
				College   string   `json:"college"`
				Board     string   `json:"board"`
				Stream    string   `json:"stream"`
				Interests []string `json:"interests"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			s := student.Student{
				Name:      req.Name,
				Address:   req.Address,
				College:   req.College,
				Board:     req.Board,
				Stream:    req.Stream,
				Interests: req.Interests,
			}

			id, err := repo.CreateStudent(ctx, s)
			if err != nil {
				log.Error("Failed to onboard student", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error onboarding student"})
				return
			}

			// Edges are recomputable by backfill, so a materialization
			// failure does not fail the onboarding that already committed.
			s.ID = id
			if err := repo.MaterializeForStudent(ctx, s); err != nil {
				log.Warn("Incremental materialization incomplete",
					zap.Int64("student_id", id),
					zap.Error(err),
				)
			}

			c.JSON(http.StatusOK, gin.H{
				"message":    "Student onboarded successfully",
				"student_id": id,
			})
		})

		// Ranked peer recommendations
		api.GET("/recommend/people/:id", func(c *gin.Context) {
			ctx := c.Request.Context()

			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "student id must be an integer"})
				return
			}

			recommendations, err := engine.Recommend(ctx, id)
			if err != nil {
				log.Error("Failed to compute recommendations", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting recommendations"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"students":      recommendations,
				"message":       recommendationMessage(recommendations),
				"total_matches": len(recommendations),
			})
		})

		// Student detail
		api.GET("/students/:id", func(c *gin.Context) {
			ctx := c.Request.Context()

			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "student id must be an integer"})
				return
			}

			s, err := repo.StudentByID(ctx, id)
			if err != nil {
				if apperrors.IsNotFound(err) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
					return
				}
				log.Error("Failed to fetch student", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching student"})
				return
			}

			c.JSON(http.StatusOK, s)
		})

		// Fuzzy name lookup
		api.GET("/students/search", func(c *gin.Context) {
			ctx := c.Request.Context()

			query := c.Query("q")
			if strings.TrimSpace(query) == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
				return
			}
			threshold := intQuery(c, "threshold", 60)
			limit := intQuery(c, "limit", 5)

			matches, err := engine.FuzzySearch(ctx, query, threshold, limit)
			if err != nil {
				log.Error("Fuzzy search failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching students"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"students": matches, "total": len(matches)})
		})

		// Reconcile mirror file into the graph
		api.POST("/sync", func(c *gin.Context) {
			ctx := c.Request.Context()

			report, err := reconciler.Reconcile(ctx)
			if err != nil {
				log.Error("Mirror reconciliation failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error syncing students"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"message": "Successfully synced students from mirror file",
				"report":  report,
			})
		})

		// Backfill similarity relationships
		api.POST("/relationships/backfill", func(c *gin.Context) {
			ctx := c.Request.Context()

			// Absent flags default to enabled
			var req struct {
				College  *bool `json:"college"`
				Board    *bool `json:"board"`
				Stream   *bool `json:"stream"`
				Address  *bool `json:"address"`
				Interest *bool `json:"interest"`
			}
			if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			opts := graph.BackfillOptions{
				College:  flagOrDefault(req.College),
				Board:    flagOrDefault(req.Board),
				Stream:   flagOrDefault(req.Stream),
				Address:  flagOrDefault(req.Address),
				Interest: flagOrDefault(req.Interest),
			}

			report, err := repo.MaterializeAll(ctx, opts)
			status := "completed"
			if err != nil {
				status = "completed_with_errors"
			}

			c.JSON(http.StatusOK, gin.H{"status": status, "report": report})
		})

		// Natural-language question over the graph
		api.POST("/ask", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				Question string `json:"question" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			cypher, err := llmAdapter.GenerateCypher(ctx, req.Question)
			if err != nil {
				var unsafe *apperrors.ErrUnsafeQuery
				if errors.As(err, &unsafe) {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
				log.Error("Cypher generation failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering question"})
				return
			}

			rows, err := repo.RunReadQuery(ctx, cypher)
			if err != nil {
				log.Error("Generated query failed", zap.String("query", cypher), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering question"})
				return
			}

			answer, err := llmAdapter.ExplainResults(ctx, req.Question, rows)
			if err != nil {
				log.Error("Result explanation failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error answering question"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"question": req.Question,
				"query":    cypher,
				"results":  rows,
				"answer":   answer,
			})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// recommendationMessage renders the human-readable summary line for a result
// set ("A, B, and C are also in this platform.")
func recommendationMessage(recommendations []student.Recommendation) string {
	names := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		names = append(names, rec.Name)
	}

	switch len(names) {
	case 0:
		return "No matching students found in this platform."
	case 1:
		return fmt.Sprintf("%s is also in this platform.", names[0])
	case 2:
		return fmt.Sprintf("%s and %s are also in this platform.", names[0], names[1])
	default:
		return fmt.Sprintf("%s, and %s are also in this platform.",
			strings.Join(names[:len(names)-1], ", "), names[len(names)-1])
	}
}

func flagOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return defaultValue
}

// requestID tags every request with an id for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
