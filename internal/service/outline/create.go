package outline

import (
	"context"
	"fmt"
	"time"

	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
)

// createDocumentWithRoot inserts a document, its empty root item, and
// back-fills root_item_id. Callers run it inside a transaction.
func createDocumentWithRoot(ctx context.Context, docRepo outlineRepo.DocumentRepository, itemRepo outlineRepo.ItemRepository, userID string) (*models.Document, *models.Item, error) {
	now := time.Now()
	doc := &models.Document{
		UserID:     userID,
		CreatedAt:  now,
		ModifiedAt: &now,
	}
	if err := docRepo.Create(ctx, doc); err != nil {
		return nil, nil, err
	}

	root := &models.Item{
		DocumentID: doc.ID,
		ItemText:   "",
		ChildOrder: 0,
	}
	if err := itemRepo.Create(ctx, root); err != nil {
		return nil, nil, fmt.Errorf("create root item: %w", err)
	}

	if err := docRepo.SetRootItem(ctx, doc.ID, root.ID); err != nil {
		return nil, nil, fmt.Errorf("set root item: %w", err)
	}
	doc.RootItemID = &root.ID

	return doc, root, nil
}
