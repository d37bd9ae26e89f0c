package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// DocumentService handles document business logic
type DocumentService interface {
	// CreateDocument creates a document and its empty root item atomically
	CreateDocument(ctx context.Context, userID string) (*outline.Document, error)

	// GetDocument loads a document with its items, styles and the viewer's categories.
	// viewerID may be empty for anonymous access to a public document.
	GetDocument(ctx context.Context, viewerID, documentID string) (*outline.DocumentView, error)

	// ListDocuments lists the user's own documents with titles and categories
	ListDocuments(ctx context.Context, userID string) ([]outline.DocumentSummary, error)

	// RenameDocument sets the root item's text
	RenameDocument(ctx context.Context, userID, documentID string, req *RenameDocumentRequest) error

	// EditText rewrites the text of individual items without touching structure
	EditText(ctx context.Context, userID, documentID string, req *EditTextRequest) error

	SetPubliclyViewable(ctx context.Context, userID, documentID string, viewable bool) error

	// DeleteDocument moves a document to the user's trash, or hard-deletes it
	// if it is already there and the user owns it
	DeleteDocument(ctx context.Context, userID, documentID string) (*DeleteResult, error)

	// ReconcileOutline replaces everything below the root with the snapshot
	ReconcileOutline(ctx context.Context, userID, documentID string, snapshot *outline.Snapshot) (*outline.ReconcileResult, error)

	// CopyDocument replicates a viewable document into a new document owned by userID
	CopyDocument(ctx context.Context, userID, documentID string) (*outline.Document, error)
}

// RenameDocumentRequest represents a rename request
type RenameDocumentRequest struct {
	Name string `json:"name"`
}

// EditTextRequest maps item ids to their new text
type EditTextRequest struct {
	Items map[string]string `json:"items"`
}

// DeleteResult says which kind of delete happened
type DeleteResult struct {
	Trashed bool `json:"trashed"`
	Deleted bool `json:"deleted"`
}

// PublicViewabilityRequest toggles anonymous read access
type PublicViewabilityRequest struct {
	PubliclyViewable bool `json:"publicly_viewable"`
}
