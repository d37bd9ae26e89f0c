package services

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// DocumentAuthorizer decides what a user may do with a document.
// Services call it before reading or mutating; each method loads the
// document and returns it so the caller does not fetch it twice.
//
// An empty userID is an anonymous viewer.
type DocumentAuthorizer interface {
	// CanView allows the owner, or anyone when the document is publicly viewable
	CanView(ctx context.Context, userID, documentID string) (*outline.Document, error)

	// CanEdit allows only the owner
	CanEdit(ctx context.Context, userID, documentID string) (*outline.Document, error)

	// IsOwner reports ownership without failing for non-owners
	IsOwner(userID string, doc *outline.Document) bool
}
