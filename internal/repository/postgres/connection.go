package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"seriatim/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Documents  string
	Items      string
	Styles     string
	Categories string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:  fmt.Sprintf("%sdocuments", prefix),
		Items:      fmt.Sprintf("%sitems", prefix),
		Styles:     fmt.Sprintf("%sstyles", prefix),
		Categories: fmt.Sprintf("%scategories", prefix),
	}
}

// All returns the table names in dependency order, dependents last.
func (t *TableNames) All() []string {
	return []string{t.Documents, t.Items, t.Styles, t.Categories}
}

// Pool sizing
const (
	MaxConns = 25
	MinConns = 5
)

// CreateConnectionPool creates a pgx pool and verifies it with a ping.
//
// Port 6543 is a transaction-mode PgBouncer, which cannot hold prepared
// statements; there the pool switches to QueryExecModeCacheDescribe unless
// the connection string already chose a mode via default_query_exec_mode.
// Prefixed table names are interpolated before a statement is prepared,
// so each prefix gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = MaxConns
	config.MinConns = MinConns

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or pool when there is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
