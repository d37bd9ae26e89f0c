package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	"seriatim/internal/domain/repositories"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	"seriatim/internal/domain/services"
	outlineSvc "seriatim/internal/domain/services/outline"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo      outlineRepo.DocumentRepository
	itemRepo     outlineRepo.ItemRepository
	styleRepo    outlineRepo.StyleRepository
	categoryRepo outlineRepo.CategoryRepository
	txManager    repositories.TransactionManager
	authorizer   services.DocumentAuthorizer
	reconciler   outlineSvc.Reconciler
	replicator   outlineSvc.Replicator
	logger       *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo outlineRepo.DocumentRepository,
	itemRepo outlineRepo.ItemRepository,
	styleRepo outlineRepo.StyleRepository,
	categoryRepo outlineRepo.CategoryRepository,
	txManager repositories.TransactionManager,
	authorizer services.DocumentAuthorizer,
	reconciler outlineSvc.Reconciler,
	replicator outlineSvc.Replicator,
	logger *slog.Logger,
) outlineSvc.DocumentService {
	return &documentService{
		docRepo:      docRepo,
		itemRepo:     itemRepo,
		styleRepo:    styleRepo,
		categoryRepo: categoryRepo,
		txManager:    txManager,
		authorizer:   authorizer,
		reconciler:   reconciler,
		replicator:   replicator,
		logger:       logger,
	}
}

// CreateDocument creates a document and its root item in one transaction
func (s *documentService) CreateDocument(ctx context.Context, userID string) (*models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, _, err = createDocumentWithRoot(txCtx, s.docRepo, s.itemRepo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"user_id", userID,
		"root_item_id", doc.RootID(),
	)

	return doc, nil
}

// GetDocument loads a document for a viewer
func (s *documentService) GetDocument(ctx context.Context, viewerID, documentID string) (*models.DocumentView, error) {
	doc, err := s.authorizer.CanView(ctx, viewerID, documentID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	styleRows, err := s.styleRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	stylesByItem := make(map[string][]models.Style)
	for _, st := range styleRows {
		stylesByItem[st.ItemID] = append(stylesByItem[st.ItemID], st)
	}

	categories := []string{}
	if viewerID != "" {
		rows, err := s.categoryRepo.ListByDocument(ctx, viewerID, doc.ID)
		if err != nil {
			return nil, err
		}
		categories = categoryNames(rows)
	}

	title := ""
	if root := findItem(items, doc.RootID()); root != nil {
		title = root.ItemText
	}

	return &models.DocumentView{
		Document:    *doc,
		Title:       EffectiveTitle(title),
		Items:       items,
		Styles:      stylesByItem,
		Categories:  categories,
		Tree:        BuildItemTree(items, doc.RootID()),
		Permissions: models.Permissions{Edit: s.authorizer.IsOwner(viewerID, doc)},
	}, nil
}

// ListDocuments lists a user's documents with titles and categories
func (s *documentService) ListDocuments(ctx context.Context, userID string) ([]models.DocumentSummary, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	docs, err := s.docRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byDoc := make(map[string][]models.Category)
	for _, c := range rows {
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		title := ""
		if doc.RootItemID != nil {
			root, err := s.itemRepo.GetByID(ctx, *doc.RootItemID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if root != nil {
				title = root.ItemText
			}
		}
		summaries = append(summaries, models.DocumentSummary{
			Document:   doc,
			Title:      EffectiveTitle(title),
			Categories: categoryNames(byDoc[doc.ID]),
		})
	}

	return summaries, nil
}

// RenameDocument sets the root item's text
func (s *documentService) RenameDocument(ctx context.Context, userID, documentID string, req *outlineSvc.RenameDocumentRequest) error {
	if err := validateRenameRequest(req); err != nil {
		return err
	}

	doc, err := s.authorizer.CanEdit(ctx, userID, documentID)
	if err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.UpdateText(txCtx, doc.ID, doc.RootID(), req.Name); err != nil {
			return err
		}
		return s.docRepo.Touch(txCtx, doc.ID, time.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("document renamed", "id", doc.ID)
	return nil
}

// EditText updates item text in place, leaving structure and ids alone.
// Ids that are not items of this document are skipped.
func (s *documentService) EditText(ctx context.Context, userID, documentID string, req *outlineSvc.EditTextRequest) error {
	if err := validateEditTextRequest(req); err != nil {
		return err
	}

	doc, err := s.authorizer.CanEdit(ctx, userID, documentID)
	if err != nil {
		return err
	}

	updated := 0
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		items, err := s.itemRepo.ListByDocument(txCtx, doc.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			text, ok := req.Items[item.ID]
			if !ok {
				continue
			}
			if err := s.itemRepo.UpdateText(txCtx, doc.ID, item.ID, text); err != nil {
				return err
			}
			updated++
		}
		return s.docRepo.Touch(txCtx, doc.ID, time.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("item text edited",
		"document_id", doc.ID,
		"updated", updated,
		"skipped", len(req.Items)-updated,
	)
	return nil
}

// SetPubliclyViewable toggles anonymous read access; owner only
func (s *documentService) SetPubliclyViewable(ctx context.Context, userID, documentID string, viewable bool) error {
	doc, err := s.authorizer.CanEdit(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := s.docRepo.SetPubliclyViewable(ctx, doc.ID, viewable); err != nil {
		return err
	}

	s.logger.Info("document visibility changed", "id", doc.ID, "publicly_viewable", viewable)
	return nil
}

// DeleteDocument trashes the document for this user, or hard-deletes it
// when it is already trashed and the user is the owner.
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) (*outlineSvc.DeleteResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	doc, err := s.authorizer.CanView(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	trashed, err := isTrashed(ctx, s.categoryRepo, userID, doc.ID)
	if err != nil {
		return nil, err
	}

	if !trashed {
		category := &models.Category{
			UserID:       userID,
			DocumentID:   doc.ID,
			CategoryName: models.TrashCategory,
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return nil, err
		}
		s.logger.Info("document trashed", "id", doc.ID, "user_id", userID)
		return &outlineSvc.DeleteResult{Trashed: true}, nil
	}

	if !s.authorizer.IsOwner(userID, doc) {
		return nil, fmt.Errorf("delete document %s: %w", doc.ID, domain.ErrForbidden)
	}

	if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
		return nil, err
	}

	s.logger.Info("document deleted", "id", doc.ID, "user_id", userID)
	return &outlineSvc.DeleteResult{Deleted: true}, nil
}

// ReconcileOutline applies a client snapshot to a document the user owns
func (s *documentService) ReconcileOutline(ctx context.Context, userID, documentID string, snapshot *models.Snapshot) (*models.ReconcileResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is required", domain.ErrValidation)
	}

	doc, err := s.authorizer.CanEdit(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	return s.reconciler.Reconcile(ctx, doc, snapshot)
}

// CopyDocument replicates a document the user can view into a new one they own
func (s *documentService) CopyDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	source, err := s.authorizer.CanView(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.ListByDocument(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	return s.replicator.Replicate(ctx, source, items, userID)
}

func categoryNames(rows []models.Category) []string {
	names := make([]string, 0, len(rows))
	for _, c := range rows {
		names = append(names, c.CategoryName)
	}
	return names
}
