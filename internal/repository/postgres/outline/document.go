package outline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	"seriatim/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) outlineRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, user_id, root_item_id, toc_item_id, publicly_viewable, created_at, modified_at`

func scanDocument(row interface{ Scan(...any) error }, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.RootItemID,
		&doc.TOCItemID,
		&doc.PubliclyViewable,
		&doc.CreatedAt,
		&doc.ModifiedAt,
	)
}

// Create inserts a document row without a root item
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, publicly_viewable, created_at, modified_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.UserID,
		doc.PubliclyViewable,
		doc.CreatedAt,
		doc.ModifiedAt,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		return nil, postgres.TranslateError(err, "get document", "document", id)
	}

	return &doc, nil
}

// ListByUser lists a user's documents, newest first
func (r *PostgresDocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// SetRootItem back-fills the root item id. It refuses to overwrite an existing root.
func (r *PostgresDocumentRepository) SetRootItem(ctx context.Context, id, rootItemID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET root_item_id = $2
		WHERE id = $1 AND root_item_id IS NULL
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, rootItemID)
	if err != nil {
		return postgres.TranslateError(err, "set root item", "document", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s has a root item or does not exist: %w", id, domain.ErrConflict)
	}

	return nil
}

// LockForUpdate blocks until no other transaction holds the document row.
// Outside a transaction the lock is released as soon as the statement ends.
func (r *PostgresDocumentRepository) LockForUpdate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Documents)

	var locked string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		return postgres.TranslateError(err, "lock document", "document", id)
	}
	return nil
}

func (r *PostgresDocumentRepository) SetTOCItem(ctx context.Context, id string, itemID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET toc_item_id = $2 WHERE id = $1`, r.tables.Documents)
	return r.execOne(ctx, "set toc item", id, query, id, itemID)
}

func (r *PostgresDocumentRepository) SetPubliclyViewable(ctx context.Context, id string, viewable bool) error {
	query := fmt.Sprintf(`UPDATE %s SET publicly_viewable = $2 WHERE id = $1`, r.tables.Documents)
	return r.execOne(ctx, "set publicly viewable", id, query, id, viewable)
}

// Touch sets modified_at
func (r *PostgresDocumentRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET modified_at = $2 WHERE id = $1`, r.tables.Documents)
	return r.execOne(ctx, "touch document", id, query, id, at)
}

// Delete removes a document; items, styles and categories cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)
	return r.execOne(ctx, "delete document", id, query, id)
}

// execOne runs an update or delete that must hit exactly the document id.
func (r *PostgresDocumentRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return postgres.TranslateError(err, op, "document", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
