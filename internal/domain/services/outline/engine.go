package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// Reconciler rebuilds a document's tree below its root from a client snapshot.
// The caller has already authorized the edit.
type Reconciler interface {
	Reconcile(ctx context.Context, doc *outline.Document, snapshot *outline.Snapshot) (*outline.ReconcileResult, error)
}

// Replicator deep-copies a tree into a new document owned by targetUserID.
// items is the source document's full flat item list.
type Replicator interface {
	Replicate(ctx context.Context, source *outline.Document, items []outline.Item, targetUserID string) (*outline.Document, error)
}

// StyleUpserter reconciles an item's style rows with a list of edits.
// Properties not named in edits are left as they are.
type StyleUpserter interface {
	Upsert(ctx context.Context, itemID string, edits []outline.StyleEdit) ([]outline.Style, error)
}
