package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// StyleRepository defines data access operations for per-item styles.
// There is no delete: style rows go away only with their item.
type StyleRepository interface {
	ListByItem(ctx context.Context, itemID string) ([]outline.Style, error)

	// ListByDocument returns the styles of every item in a document
	ListByDocument(ctx context.Context, documentID string) ([]outline.Style, error)

	// Insert adds a row; a duplicate (item_id, property) is a ConflictError
	Insert(ctx context.Context, style *outline.Style) error

	// Update overwrites value and unit of an existing (item_id, property) row
	Update(ctx context.Context, style *outline.Style) error
}
