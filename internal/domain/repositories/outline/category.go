package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// CategoryRepository defines data access operations for per-user document categories
type CategoryRepository interface {
	// Create inserts a category; a duplicate name for the same user and document is a ConflictError
	Create(ctx context.Context, category *outline.Category) error

	// Get finds a category by name for a user on a document
	Get(ctx context.Context, userID, documentID, name string) (*outline.Category, error)

	// ListByDocument returns the categories a user attached to a document
	ListByDocument(ctx context.Context, userID, documentID string) ([]outline.Category, error)

	// ListByUser returns every category the user attached, across documents
	ListByUser(ctx context.Context, userID string) ([]outline.Category, error)

	Delete(ctx context.Context, userID, documentID, name string) error
}
