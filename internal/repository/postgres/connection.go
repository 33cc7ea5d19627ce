package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users       string
	Projects    string
	Folders     string
	TestCases   string
	Tags        string
	CaseTags    string
	Runs        string
	RunEntries  string
	Attachments string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:       fmt.Sprintf("%susers", prefix),
		Projects:    fmt.Sprintf("%sprojects", prefix),
		Folders:     fmt.Sprintf("%sfolders", prefix),
		TestCases:   fmt.Sprintf("%stest_cases", prefix),
		Tags:        fmt.Sprintf("%stags", prefix),
		CaseTags:    fmt.Sprintf("%scase_tags", prefix),
		Runs:        fmt.Sprintf("%sruns", prefix),
		RunEntries:  fmt.Sprintf("%srun_entries", prefix),
		Attachments: fmt.Sprintf("%sattachments", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// If port 6543 is detected (transaction pooler such as PgBouncer), the query
// exec mode is switched to QueryExecModeCacheDescribe, which caches statement
// descriptions instead of prepared statements and so stays pooler-compatible.
// An explicit default_query_exec_mode in the connection string takes
// precedence over this auto-detection.
//
// The fmt.Sprintf table-prefix interpolation used by the repositories is safe
// with prepared statements because the SQL string is built before being sent;
// each environment gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool. This enables repositories to
// automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
