package auth

import (
	"context"
	"fmt"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	"seriatim/internal/domain/services"
)

// OwnerBasedAuthorizer implements DocumentAuthorizer using ownership.
// The owner may view and edit; anyone may view a publicly viewable document.
type OwnerBasedAuthorizer struct {
	docRepo outlineRepo.DocumentRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(docRepo outlineRepo.DocumentRepository) services.DocumentAuthorizer {
	return &OwnerBasedAuthorizer{docRepo: docRepo}
}

// CanView checks the user owns the document or it is public
func (a *OwnerBasedAuthorizer) CanView(ctx context.Context, userID, documentID string) (*models.Document, error) {
	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document for auth: %w", err)
	}

	if doc.PubliclyViewable || a.IsOwner(userID, doc) {
		return doc, nil
	}
	if userID == "" {
		return nil, fmt.Errorf("view document %s: %w", documentID, domain.ErrUnauthorized)
	}
	return nil, fmt.Errorf("access denied to document %s: %w", documentID, domain.ErrForbidden)
}

// CanEdit checks the user owns the document
func (a *OwnerBasedAuthorizer) CanEdit(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if userID == "" {
		return nil, fmt.Errorf("edit document %s: %w", documentID, domain.ErrUnauthorized)
	}

	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document for auth: %w", err)
	}

	if !a.IsOwner(userID, doc) {
		return nil, fmt.Errorf("access denied to document %s: %w", documentID, domain.ErrForbidden)
	}
	return doc, nil
}

// IsOwner reports whether userID owns doc
func (a *OwnerBasedAuthorizer) IsOwner(userID string, doc *models.Document) bool {
	return userID != "" && doc != nil && doc.UserID == userID
}
