package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"testdeck/internal/auth"
	"testdeck/internal/config"
	"testdeck/internal/domain"
	"testdeck/internal/domain/services"
	"testdeck/internal/repository/postgres"
	"testdeck/internal/service"
	"testdeck/internal/statuses"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const (
	demoEmail    = "demo@testdeck.local"
	demoPassword = "demo-password-1"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

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
	txManager := postgres.NewTransactionManager(pool)

	registry, err := statuses.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load statuses catalog: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Create services - seeding goes through the same code paths as the API
	// so positions, defaults and validation all apply
	authService := service.NewAuthService(userRepo, issuer, logger)
	projectService := service.NewProjectService(projectRepo, logger)
	folderService := service.NewFolderService(folderRepo, projectRepo, txManager, logger)
	caseService := service.NewTestCaseService(caseRepo, folderRepo, tagRepo, txManager, registry, logger)

	// Demo user
	user, err := authService.Register(ctx, &services.RegisterRequest{
		Email:       demoEmail,
		DisplayName: "Demo User",
		Password:    demoPassword,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		existing, getErr := userRepo.GetByEmail(ctx, demoEmail)
		if getErr != nil {
			log.Fatalf("Failed to load existing demo user: %v", getErr)
		}
		user = existing
	}
	log.Printf("Demo user ready: %s (%s)", user.Email, user.ID)

	// Demo project
	project, err := projectService.CreateProject(ctx, &services.CreateProjectRequest{
		Name:    "Web Checkout",
		OwnerID: user.ID,
	})
	if err != nil {
		log.Fatalf("Failed to create demo project: %v", err)
	}
	log.Printf("Created project: %s (%s)", project.Name, project.ID)

	// Folder tree: two roots, one nested level
	folderIDs := make(map[string]string)
	folders := []struct {
		key    string
		title  string
		parent string
	}{
		{key: "smoke", title: "Smoke"},
		{key: "regression", title: "Regression"},
		{key: "cart", title: "Cart", parent: "regression"},
		{key: "payment", title: "Payment", parent: "regression"},
	}
	for _, f := range folders {
		var parentID *string
		if f.parent != "" {
			id := folderIDs[f.parent]
			parentID = &id
		}
		folder, err := folderService.CreateFolder(ctx, &services.CreateFolderRequest{
			ProjectID:      project.ID,
			Title:          f.title,
			ParentFolderID: parentID,
			CreatedBy:      user.ID,
		})
		if err != nil {
			log.Fatalf("Failed to create folder %q: %v", f.title, err)
		}
		folderIDs[f.key] = folder.ID
		log.Printf("Created folder: %s (position %d)", folder.Title, folder.Position)
	}

	// Test cases in bulk per folder
	cases := map[string][]services.BulkTestCaseItem{
		"smoke": {
			{Title: "Homepage loads", Priority: "critical"},
			{Title: "Login with valid credentials", Priority: "critical"},
		},
		"cart": {
			{Title: "Add item to cart"},
			{Title: "Remove item from cart"},
			{Title: "Cart survives page reload", Priority: "low"},
		},
		"payment": {
			{Title: "Pay with credit card", Priority: "high"},
			{Title: "Declined card shows error", Priority: "high"},
		},
	}
	for key, items := range cases {
		created, err := caseService.BulkCreateTestCases(ctx, &services.BulkCreateTestCasesRequest{
			FolderID:  folderIDs[key],
			Cases:     items,
			CreatedBy: user.ID,
		})
		if err != nil {
			log.Fatalf("Failed to seed cases in %q: %v", key, err)
		}
		log.Printf("Seeded %d cases in folder %q", len(created), key)
	}

	log.Println("Seeding complete")
}

// runSchema creates tables if they don't exist. The sibling position
// uniqueness constraints are DEFERRABLE INITIALLY DEFERRED: repositioning
// shifts positions row by row inside a transaction and the constraint must
// only hold at commit. NULLS NOT DISTINCT makes root-level sibling groups
// (parent_folder_id IS NULL) subject to the same constraint.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			parent_folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			position INTEGER NOT NULL CHECK (position >= 0),
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			CONSTRAINT ` + tablePrefix + `folders_sibling_position UNIQUE NULLS NOT DISTINCT (project_id, parent_folder_id, position)
				DEFERRABLE INITIALLY DEFERRED
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.TestCases + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			folder_id UUID NOT NULL REFERENCES ` + tables.Folders + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			position INTEGER NOT NULL CHECK (position >= 0),
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			CONSTRAINT ` + tablePrefix + `test_cases_folder_position UNIQUE (folder_id, position)
				DEFERRABLE INITIALLY DEFERRED
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Tags + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (project_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.CaseTags + ` (
			case_id UUID NOT NULL REFERENCES ` + tables.TestCases + `(id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES ` + tables.Tags + `(id) ON DELETE CASCADE,
			PRIMARY KEY (case_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Runs + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			closed_at TIMESTAMPTZ
		)`,
		// case_id carries no foreign key: run entries are snapshots and must
		// survive deletion of the case they were taken from
		`CREATE TABLE IF NOT EXISTS ` + tables.RunEntries + ` (
			id UUID PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES ` + tables.Runs + `(id) ON DELETE CASCADE,
			case_id UUID NOT NULL,
			case_title TEXT NOT NULL,
			folder_title TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Attachments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			entry_id UUID NOT NULL REFERENCES ` + tables.RunEntries + `(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			storage_key TEXT NOT NULL UNIQUE,
			size_bytes BIGINT NOT NULL,
			uploaded_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Create indexes
	indexes := []string{
		// Partial index so a soft-deleted project frees its name
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_owner_name ON ` + tables.Projects + `(owner_id, name) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_project_parent ON ` + tables.Folders + `(project_id, parent_folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `test_cases_folder ON ` + tables.TestCases + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_owner ON ` + tables.Projects + `(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `runs_project ON ` + tables.Runs + `(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `run_entries_run ON ` + tables.RunEntries + `(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `attachments_entry ON ` + tables.Attachments + `(entry_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Attachments,
		tables.RunEntries,
		tables.Runs,
		tables.CaseTags,
		tables.Tags,
		tables.TestCases,
		tables.Folders,
		tables.Projects,
		tables.Users,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}
