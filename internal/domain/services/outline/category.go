package outline

import (
	"context"

	"seriatim/internal/domain/models/outline"
)

// CategoryService manages a user's categories on documents they can view
type CategoryService interface {
	AddCategory(ctx context.Context, userID, documentID string, req *CategoryRequest) (*outline.Category, error)
	RemoveCategory(ctx context.Context, userID, documentID, name string) error
	ListCategories(ctx context.Context, userID, documentID string) ([]outline.Category, error)

	// IsTrashed reports whether the user has the document in their trash
	IsTrashed(ctx context.Context, userID, documentID string) (bool, error)
}

// CategoryRequest names a category to attach
type CategoryRequest struct {
	Name string `json:"name"`
}
