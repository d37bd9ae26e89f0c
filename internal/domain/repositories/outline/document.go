package outline

import (
	"context"
	"time"

	"seriatim/internal/domain/models/outline"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create inserts the document row. RootItemID is left NULL; callers
	// back-fill it with SetRootItem once the root item exists.
	Create(ctx context.Context, doc *outline.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*outline.Document, error)

	// ListByUser lists documents owned by a user, newest first
	ListByUser(ctx context.Context, userID string) ([]outline.Document, error)

	SetRootItem(ctx context.Context, id, rootItemID string) error

	// LockForUpdate takes a row lock on the document for the rest of the
	// current transaction. Writers that rebuild the tree call it first so
	// they run one after another.
	LockForUpdate(ctx context.Context, id string) error

	// SetTOCItem points the document at its table-of-contents item, or clears it when itemID is nil
	SetTOCItem(ctx context.Context, id string, itemID *string) error

	SetPubliclyViewable(ctx context.Context, id string, viewable bool) error

	// Touch sets modified_at
	Touch(ctx context.Context, id string, at time.Time) error

	// Delete removes the document and, by cascade, its items, styles and categories
	Delete(ctx context.Context, id string) error
}
