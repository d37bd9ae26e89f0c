package outline

import (
	"context"
	"fmt"
	"log/slog"

	models "seriatim/internal/domain/models/outline"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	outlineSvc "seriatim/internal/domain/services/outline"
)

// styleUpserter implements the StyleUpserter interface
type styleUpserter struct {
	styleRepo outlineRepo.StyleRepository
	logger    *slog.Logger
}

// NewStyleUpserter creates a new style upserter
func NewStyleUpserter(styleRepo outlineRepo.StyleRepository, logger *slog.Logger) outlineSvc.StyleUpserter {
	return newStyleUpserter(styleRepo, logger)
}

func newStyleUpserter(styleRepo outlineRepo.StyleRepository, logger *slog.Logger) *styleUpserter {
	return &styleUpserter{styleRepo: styleRepo, logger: logger}
}

// Upsert updates the rows for properties the item already has and inserts
// the rest. Persisted properties missing from edits are kept.
func (u *styleUpserter) Upsert(ctx context.Context, itemID string, edits []models.StyleEdit) ([]models.Style, error) {
	if len(edits) == 0 {
		return []models.Style{}, nil
	}

	existing, err := u.styleRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load styles for item %s: %w", itemID, err)
	}

	present := make(map[models.StyleProperty]bool, len(existing))
	for _, s := range existing {
		present[s.Property] = true
	}

	return u.apply(ctx, itemID, edits, present)
}

// apply writes edits given the set of properties already stored for the
// item. A freshly created item passes an empty set and skips the load.
func (u *styleUpserter) apply(ctx context.Context, itemID string, edits []models.StyleEdit, present map[models.StyleProperty]bool) ([]models.Style, error) {
	result := make([]models.Style, 0, len(edits))
	for _, edit := range edits {
		style := edit.ToStyle(itemID)
		if present[edit.Property] {
			if err := u.styleRepo.Update(ctx, &style); err != nil {
				return nil, fmt.Errorf("update style %s: %w", edit.Property, err)
			}
		} else {
			if err := u.styleRepo.Insert(ctx, &style); err != nil {
				return nil, fmt.Errorf("insert style %s: %w", edit.Property, err)
			}
			present[edit.Property] = true
		}
		result = append(result, style)
	}
	return result, nil
}
