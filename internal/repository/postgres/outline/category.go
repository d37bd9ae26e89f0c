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

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *postgres.RepositoryConfig) outlineRepo.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanCategory(row interface{ Scan(...any) error }, c *models.Category) error {
	return row.Scan(&c.ID, &c.UserID, &c.DocumentID, &c.CategoryName)
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, document_id, category_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		category.UserID,
		category.DocumentID,
		category.CategoryName,
	).Scan(&category.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existing, getErr := r.Get(ctx, category.UserID, category.DocumentID, category.CategoryName)
			if getErr != nil {
				return fmt.Errorf("category '%s' already exists: %w", category.CategoryName, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category '%s' already exists on this document", category.CategoryName),
				ResourceType: "category",
				ResourceID:   existing.ID,
			}
		}
		return postgres.TranslateError(err, "create category", "document", category.DocumentID)
	}

	return nil
}

func (r *PostgresCategoryRepository) Get(ctx context.Context, userID, documentID, name string) (*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, document_id, category_name
		FROM %s
		WHERE user_id = $1 AND document_id = $2 AND category_name = $3
	`, r.tables.Categories)

	var c models.Category
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanCategory(executor.QueryRow(ctx, query, userID, documentID, name), &c); err != nil {
		return nil, postgres.TranslateError(err, "get category", "category", name)
	}

	return &c, nil
}

func (r *PostgresCategoryRepository) ListByDocument(ctx context.Context, userID, documentID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, document_id, category_name
		FROM %s
		WHERE user_id = $1 AND document_id = $2
		ORDER BY category_name
	`, r.tables.Categories)

	return r.list(ctx, query, userID, documentID)
}

func (r *PostgresCategoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, document_id, category_name
		FROM %s
		WHERE user_id = $1
		ORDER BY document_id, category_name
	`, r.tables.Categories)

	return r.list(ctx, query, userID)
}

func (r *PostgresCategoryRepository) list(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.TranslateError(err, "list categories", "document", fmt.Sprint(args...))
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, userID, documentID, name string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND document_id = $2 AND category_name = $3
	`, r.tables.Categories)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, documentID, name)
	if err != nil {
		return postgres.TranslateError(err, "delete category", "category", name)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
	}

	return nil
}
