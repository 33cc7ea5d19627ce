package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"testdeck/internal/auth"
	"testdeck/internal/config"
	"testdeck/internal/handler"
	"testdeck/internal/middleware"
	"testdeck/internal/repository/postgres"
	"testdeck/internal/service"
	"testdeck/internal/statuses"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Local HMAC token issuer for register/login
	issuer, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Verifier for incoming tokens: external IdP via JWKS when configured,
	// otherwise the local issuer verifies its own tokens
	var verifier auth.TokenVerifier = issuer
	if cfg.AuthJWKSURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
		verifier = jwksVerifier
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	caseRepo := postgres.NewTestCaseRepository(repoConfig)
	tagRepo := postgres.NewTagRepository(repoConfig)
	runRepo := postgres.NewTestRunRepository(repoConfig)
	attRepo := postgres.NewAttachmentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load the execution status and priority catalog
	registry, err := statuses.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load statuses catalog: %v", err)
	}

	// Create services
	authService := service.NewAuthService(userRepo, issuer, logger)
	projectService := service.NewProjectService(projectRepo, logger)
	folderService := service.NewFolderService(folderRepo, projectRepo, txManager, logger)
	caseService := service.NewTestCaseService(caseRepo, folderRepo, tagRepo, txManager, registry, logger)
	tagService := service.NewTagService(tagRepo, caseRepo, projectRepo, logger)
	runService := service.NewTestRunService(runRepo, caseRepo, folderRepo, projectRepo, txManager, registry, logger)
	attService := service.NewAttachmentService(attRepo, runRepo, cfg.AttachmentDir, logger)

	// Create handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	caseHandler := handler.NewTestCaseHandler(caseService, tagService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	runHandler := handler.NewTestRunHandler(runService, attService, logger)
	metaHandler := handler.NewMetaHandler(registry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", metaHandler.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// Project routes
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Folder routes
	mux.HandleFunc("GET /api/projects/{id}/folders", folderHandler.ListProjectFolders)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", folderHandler.MoveFolder)
	mux.HandleFunc("POST /api/folders/{id}/reorder", folderHandler.ReorderFolder)
	mux.HandleFunc("GET /api/folders/{id}/path", folderHandler.GetAncestorPath)

	// Test case routes
	mux.HandleFunc("POST /api/testcases", caseHandler.CreateTestCase)
	mux.HandleFunc("POST /api/testcases/bulk", caseHandler.BulkCreateTestCases)
	mux.HandleFunc("GET /api/testcases/{id}", caseHandler.GetTestCase)
	mux.HandleFunc("PATCH /api/testcases/{id}", caseHandler.UpdateTestCase)
	mux.HandleFunc("DELETE /api/testcases/{id}", caseHandler.DeleteTestCase)
	mux.HandleFunc("GET /api/folders/{id}/testcases", caseHandler.ListByFolder)

	// Tag routes
	mux.HandleFunc("POST /api/projects/{id}/tags", tagHandler.CreateTag)
	mux.HandleFunc("GET /api/projects/{id}/tags", tagHandler.ListTags)
	mux.HandleFunc("DELETE /api/tags/{id}", tagHandler.DeleteTag)
	mux.HandleFunc("PUT /api/testcases/{id}/tags/{tagID}", caseHandler.AttachTag)
	mux.HandleFunc("DELETE /api/testcases/{id}/tags/{tagID}", caseHandler.DetachTag)

	// Run routes
	mux.HandleFunc("POST /api/runs", runHandler.CreateRun)
	mux.HandleFunc("GET /api/runs/{id}", runHandler.GetRun)
	mux.HandleFunc("GET /api/projects/{id}/runs", runHandler.ListRuns)
	mux.HandleFunc("PATCH /api/runs/{id}/entries/{entryID}", runHandler.SetEntryStatus)
	mux.HandleFunc("POST /api/runs/{id}/entries/{entryID}/attachments", runHandler.UploadAttachment)
	mux.HandleFunc("GET /api/runs/{id}/entries/{entryID}/attachments", runHandler.ListAttachments)

	// Meta routes
	mux.HandleFunc("GET /api/meta/statuses", metaHandler.GetStatuses)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
