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

// PostgresStyleRepository implements the StyleRepository interface
type PostgresStyleRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewStyleRepository creates a new style repository
func NewStyleRepository(config *postgres.RepositoryConfig) outlineRepo.StyleRepository {
	return &PostgresStyleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanStyle(row interface{ Scan(...any) error }, style *models.Style) error {
	return row.Scan(
		&style.ItemID,
		&style.Property,
		&style.ValueNumber,
		&style.ValueString,
		&style.Unit,
	)
}

func (r *PostgresStyleRepository) ListByItem(ctx context.Context, itemID string) ([]models.Style, error) {
	query := fmt.Sprintf(`
		SELECT item_id, property, value_number, value_string, unit
		FROM %s
		WHERE item_id = $1
		ORDER BY property
	`, r.tables.Styles)

	return r.list(ctx, query, itemID)
}

func (r *PostgresStyleRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Style, error) {
	query := fmt.Sprintf(`
		SELECT s.item_id, s.property, s.value_number, s.value_string, s.unit
		FROM %s s
		JOIN %s i ON i.id = s.item_id
		WHERE i.document_id = $1
		ORDER BY s.item_id, s.property
	`, r.tables.Styles, r.tables.Items)

	return r.list(ctx, query, documentID)
}

func (r *PostgresStyleRepository) list(ctx context.Context, query, arg string) ([]models.Style, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, postgres.TranslateError(err, "list styles", "item", arg)
	}
	defer rows.Close()

	styles := make([]models.Style, 0)
	for rows.Next() {
		var style models.Style
		if err := scanStyle(rows, &style); err != nil {
			return nil, fmt.Errorf("scan style: %w", err)
		}
		styles = append(styles, style)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate styles: %w", err)
	}

	return styles, nil
}

func (r *PostgresStyleRepository) Insert(ctx context.Context, style *models.Style) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (item_id, property, value_number, value_string, unit)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Styles)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		style.ItemID,
		style.Property,
		style.ValueNumber,
		style.ValueString,
		style.Unit,
	)
	if err != nil {
		return postgres.TranslateError(err, "insert style", "style", fmt.Sprintf("%s/%s", style.ItemID, style.Property))
	}

	return nil
}

func (r *PostgresStyleRepository) Update(ctx context.Context, style *models.Style) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET value_number = $3, value_string = $4, unit = $5
		WHERE item_id = $1 AND property = $2
	`, r.tables.Styles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		style.ItemID,
		style.Property,
		style.ValueNumber,
		style.ValueString,
		style.Unit,
	)
	if err != nil {
		return postgres.TranslateError(err, "update style", "style", fmt.Sprintf("%s/%s", style.ItemID, style.Property))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("style %s/%s: %w", style.ItemID, style.Property, domain.ErrNotFound)
	}

	return nil
}
