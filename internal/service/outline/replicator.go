package outline

import (
	"context"
	"fmt"
	"log/slog"

	"seriatim/internal/config"
	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	"seriatim/internal/domain/repositories"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	outlineSvc "seriatim/internal/domain/services/outline"
)

// replicator implements the Replicator interface. It copies structure,
// text and child order; styles and categories stay with the source.
type replicator struct {
	docRepo   outlineRepo.DocumentRepository
	itemRepo  outlineRepo.ItemRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewReplicator creates a new tree replicator
func NewReplicator(
	docRepo outlineRepo.DocumentRepository,
	itemRepo outlineRepo.ItemRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) outlineSvc.Replicator {
	return &replicator{
		docRepo:   docRepo,
		itemRepo:  itemRepo,
		txManager: txManager,
		logger:    logger,
	}
}

type copyFrame struct {
	sourceID string
	destID   string
}

// Replicate creates a document for targetUserID mirroring source's tree.
// Any failure rolls back the whole copy.
func (r *replicator) Replicate(ctx context.Context, source *models.Document, items []models.Item, targetUserID string) (*models.Document, error) {
	sourceRoot := findItem(items, source.RootID())
	if sourceRoot == nil {
		return nil, fmt.Errorf("root item of document %s: %w", source.ID, domain.ErrNotFound)
	}
	children := childIndex(items)
	title := EffectiveTitle(sourceRoot.ItemText)

	var created *models.Document
	copied := 0

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, root, err := createDocumentWithRoot(txCtx, r.docRepo, r.itemRepo, targetUserID)
		if err != nil {
			return fmt.Errorf("create copy: %w", err)
		}
		if err := r.itemRepo.UpdateText(txCtx, doc.ID, root.ID, title); err != nil {
			return fmt.Errorf("title copy: %w", err)
		}

		visited := map[string]bool{sourceRoot.ID: true}
		stack := []copyFrame{{sourceID: sourceRoot.ID, destID: root.ID}}
		for len(stack) > 0 {
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			kids := children[frame.sourceID]
			next := make([]copyFrame, 0, len(kids))
			for _, src := range kids {
				if visited[src.ID] {
					continue
				}
				visited[src.ID] = true

				parentID := frame.destID
				dest := &models.Item{
					DocumentID: doc.ID,
					ParentID:   &parentID,
					ItemText:   src.ItemText,
					ChildOrder: src.ChildOrder,
				}
				if err := r.itemRepo.Create(txCtx, dest); err != nil {
					return fmt.Errorf("copy item %s: %w", src.ID, err)
				}
				copied++
				next = append(next, copyFrame{sourceID: src.ID, destID: dest.ID})
			}
			for i := len(next) - 1; i >= 0; i-- {
				stack = append(stack, next[i])
			}
		}

		created = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("document replicated",
		"source_id", source.ID,
		"id", created.ID,
		"user_id", targetUserID,
		"items", copied,
	)

	return created, nil
}

// EffectiveTitle is the root item's text, or the untitled placeholder when empty
func EffectiveTitle(rootText string) string {
	if rootText == "" {
		return config.UntitledDocumentTitle
	}
	return rootText
}
