package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// ItemRepository defines data access operations for outline items.
//
// Deleting an item must delete its whole subtree and the style rows of every
// removed item. The reconciler depends on this to discard a branch in one call.
type ItemRepository interface {
	// Create inserts an item and assigns item.ID
	Create(ctx context.Context, item *outline.Item) error

	GetByID(ctx context.Context, id string) (*outline.Item, error)

	// ListByDocument returns every item of a document ordered by parent, then child_order
	ListByDocument(ctx context.Context, documentID string) ([]outline.Item, error)

	// ListChildren returns the direct children of an item ordered by child_order
	ListChildren(ctx context.Context, parentID string) ([]outline.Item, error)

	// DeleteChildren removes every descendant of parentID, returning how many direct children were removed
	DeleteChildren(ctx context.Context, parentID string) (int64, error)

	// Delete removes an item and its subtree
	Delete(ctx context.Context, id string) error

	// UpdateText sets the text of one item belonging to documentID
	UpdateText(ctx context.Context, documentID, id, text string) error
}
