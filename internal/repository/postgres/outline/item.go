package outline

import (
	"context"
	"fmt"
	"log/slog"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	"seriatim/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresItemRepository implements the ItemRepository interface.
// Subtree deletes rely on the parent_id ON DELETE CASCADE constraint.
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *postgres.RepositoryConfig) outlineRepo.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const itemColumns = `id, document_id, parent_id, item_text, child_order, collapsed`

func scanItem(row interface{ Scan(...any) error }, item *models.Item) error {
	return row.Scan(
		&item.ID,
		&item.DocumentID,
		&item.ParentID,
		&item.ItemText,
		&item.ChildOrder,
		&item.Collapsed,
	)
}

// Create inserts an item and assigns its ID
func (r *PostgresItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, parent_id, item_text, child_order, collapsed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		item.DocumentID,
		item.ParentID,
		item.ItemText,
		item.ChildOrder,
		item.Collapsed,
	).Scan(&item.ID)
	if err != nil {
		return postgres.TranslateError(err, "create item", "document", item.DocumentID)
	}

	return nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.tables.Items)

	var item models.Item
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanItem(executor.QueryRow(ctx, query, id), &item); err != nil {
		return nil, postgres.TranslateError(err, "get item", "item", id)
	}

	return &item, nil
}

// ListByDocument returns the flat item list, root first, siblings by child_order
func (r *PostgresItemRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE document_id = $1
		ORDER BY parent_id NULLS FIRST, child_order
	`, itemColumns, r.tables.Items)

	return r.list(ctx, "list items", query, documentID)
}

func (r *PostgresItemRepository) ListChildren(ctx context.Context, parentID string) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1
		ORDER BY child_order
	`, itemColumns, r.tables.Items)

	return r.list(ctx, "list children", query, parentID)
}

func (r *PostgresItemRepository) list(ctx context.Context, op, query string, arg string) ([]models.Item, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, postgres.TranslateError(err, op, "item", arg)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var item models.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// DeleteChildren removes the direct children of parentID; their subtrees
// and styles go with them through ON DELETE CASCADE.
func (r *PostgresItemRepository) DeleteChildren(ctx context.Context, parentID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE parent_id = $1`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentID)
	if err != nil {
		return 0, postgres.TranslateError(err, "delete children", "item", parentID)
	}

	return result.RowsAffected(), nil
}

// Delete removes an item and its subtree
func (r *PostgresItemRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return postgres.TranslateError(err, "delete item", "item", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresItemRepository) UpdateText(ctx context.Context, documentID, id, text string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET item_text = $3
		WHERE id = $1 AND document_id = $2
	`, r.tables.Items)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, documentID, text)
	if err != nil {
		return postgres.TranslateError(err, "update item text", "item", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
