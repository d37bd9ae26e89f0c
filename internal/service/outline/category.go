package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	"seriatim/internal/domain/services"
	outlineSvc "seriatim/internal/domain/services/outline"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo outlineRepo.CategoryRepository
	authorizer   services.DocumentAuthorizer
	logger       *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo outlineRepo.CategoryRepository,
	authorizer services.DocumentAuthorizer,
	logger *slog.Logger,
) outlineSvc.CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		authorizer:   authorizer,
		logger:       logger,
	}
}

// AddCategory attaches a sanitized category name to a document for the user
func (s *categoryService) AddCategory(ctx context.Context, userID, documentID string, req *outlineSvc.CategoryRequest) (*models.Category, error) {
	if err := validateCategoryRequest(req); err != nil {
		return nil, err
	}
	name, err := sanitizedName(req.Name)
	if err != nil {
		return nil, err
	}

	doc, err := s.viewable(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:       userID,
		DocumentID:   doc.ID,
		CategoryName: name,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category added",
		"document_id", doc.ID,
		"user_id", userID,
		"category", name,
	)
	return category, nil
}

// RemoveCategory detaches a category. Removing Trash restores the document.
func (s *categoryService) RemoveCategory(ctx context.Context, userID, documentID, name string) error {
	clean, err := sanitizedName(name)
	if err != nil {
		return err
	}

	doc, err := s.viewable(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, userID, doc.ID, clean); err != nil {
		return err
	}

	s.logger.Info("category removed",
		"document_id", doc.ID,
		"user_id", userID,
		"category", clean,
	)
	return nil
}

func (s *categoryService) ListCategories(ctx context.Context, userID, documentID string) ([]models.Category, error) {
	doc, err := s.viewable(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByDocument(ctx, userID, doc.ID)
}

func (s *categoryService) IsTrashed(ctx context.Context, userID, documentID string) (bool, error) {
	doc, err := s.viewable(ctx, userID, documentID)
	if err != nil {
		return false, err
	}
	return isTrashed(ctx, s.categoryRepo, userID, doc.ID)
}

// viewable requires a logged-in user who can view the document
func (s *categoryService) viewable(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.authorizer.CanView(ctx, userID, documentID)
}

func sanitizedName(name string) (string, error) {
	clean := models.SanitizeCategoryName(name)
	if clean == "" {
		return "", fmt.Errorf("%w: category name is empty", domain.ErrValidation)
	}
	return clean, nil
}

func isTrashed(ctx context.Context, repo outlineRepo.CategoryRepository, userID, documentID string) (bool, error) {
	_, err := repo.Get(ctx, userID, documentID, models.TrashCategory)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}
