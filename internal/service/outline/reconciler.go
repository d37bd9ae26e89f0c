package outline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	models "seriatim/internal/domain/models/outline"
	"seriatim/internal/domain/repositories"
	outlineRepo "seriatim/internal/domain/repositories/outline"
	outlineSvc "seriatim/internal/domain/services/outline"
	"seriatim/internal/styles"
)

// reconciler implements the Reconciler interface.
//
// Reconciliation runs in two phases. planReconciliation reads the snapshot
// and fails without side effects on a bad root, oversize tree or invalid
// style. The write phase then, in one transaction, deletes every child of
// the root (the subtree goes by cascade), updates the root in place, and
// recreates the planned nodes in pre-order. Non-root items get fresh ids
// on every call.
//
// The transaction opens with a row lock on the document, so concurrent
// reconciliations of one document run in turn and the last to commit
// replaces the other's subtree whole.
type reconciler struct {
	docRepo   outlineRepo.DocumentRepository
	itemRepo  outlineRepo.ItemRepository
	styles    *styleUpserter
	txManager repositories.TransactionManager
	catalog   *styles.Catalog
	limits    Limits
	logger    *slog.Logger
}

// NewReconciler creates a new tree reconciler
func NewReconciler(
	docRepo outlineRepo.DocumentRepository,
	itemRepo outlineRepo.ItemRepository,
	styleRepo outlineRepo.StyleRepository,
	txManager repositories.TransactionManager,
	catalog *styles.Catalog,
	limits Limits,
	logger *slog.Logger,
) outlineSvc.Reconciler {
	return &reconciler{
		docRepo:   docRepo,
		itemRepo:  itemRepo,
		styles:    newStyleUpserter(styleRepo, logger),
		txManager: txManager,
		catalog:   catalog,
		limits:    limits,
		logger:    logger,
	}
}

// Reconcile replaces the document's tree below the root with the snapshot
func (r *reconciler) Reconcile(ctx context.Context, doc *models.Document, snapshot *models.Snapshot) (*models.ReconcileResult, error) {
	plan, err := planReconciliation(doc, snapshot, r.limits, r.catalog)
	if err != nil {
		return nil, err
	}

	persisted := make([]string, len(plan.nodes))
	var removed int64
	var tocItemID *string

	err = r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.docRepo.LockForUpdate(txCtx, doc.ID); err != nil {
			return fmt.Errorf("lock document: %w", err)
		}

		var err error
		removed, err = r.itemRepo.DeleteChildren(txCtx, plan.rootItemID)
		if err != nil {
			return fmt.Errorf("clear outline: %w", err)
		}

		if plan.rootText != nil {
			if err := r.itemRepo.UpdateText(txCtx, doc.ID, plan.rootItemID, *plan.rootText); err != nil {
				return fmt.Errorf("update root text: %w", err)
			}
		}
		if len(plan.rootStyles) > 0 {
			if _, err := r.styles.Upsert(txCtx, plan.rootItemID, plan.rootStyles); err != nil {
				return fmt.Errorf("root styles: %w", err)
			}
		}

		for i, node := range plan.nodes {
			parentID := plan.rootItemID
			if node.parent >= 0 {
				parentID = persisted[node.parent]
			}

			item := &models.Item{
				DocumentID: doc.ID,
				ParentID:   &parentID,
				ItemText:   node.text,
				ChildOrder: node.order,
			}
			if err := r.itemRepo.Create(txCtx, item); err != nil {
				return fmt.Errorf("create item for %s: %w", node.clientID, err)
			}
			persisted[i] = item.ID

			if len(node.styles) > 0 {
				fresh := make(map[models.StyleProperty]bool, len(node.styles))
				if _, err := r.styles.apply(txCtx, item.ID, node.styles, fresh); err != nil {
					return fmt.Errorf("styles for %s: %w", node.clientID, err)
				}
			}
		}

		tocItemID = resolveTOC(plan, persisted)
		if err := r.docRepo.SetTOCItem(txCtx, doc.ID, tocItemID); err != nil {
			return fmt.Errorf("set toc item: %w", err)
		}

		if err := r.docRepo.Touch(txCtx, doc.ID, time.Now()); err != nil {
			return fmt.Errorf("touch document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := buildResult(plan, persisted)

	if len(plan.unresolved) > 0 {
		r.logger.Warn("outline reconciled with unresolved items",
			"document_id", doc.ID,
			"unresolved", len(plan.unresolved),
		)
	}
	r.logger.Info("outline reconciled",
		"document_id", doc.ID,
		"removed_children", removed,
		"created", len(plan.nodes),
		"toc_item_id", tocItemID,
	)

	return result, nil
}

// resolveTOC returns the persisted id of the snapshot's toc item, or nil
// when there is none or it did not resolve.
func resolveTOC(plan *reconcilePlan, persisted []string) *string {
	if plan.tocClientID == nil {
		return nil
	}
	if *plan.tocClientID == plan.rootClientID {
		id := plan.rootItemID
		return &id
	}
	for i, node := range plan.nodes {
		if node.clientID == *plan.tocClientID {
			id := persisted[i]
			return &id
		}
	}
	return nil
}

// buildResult merges the root mapping, created nodes and unresolved ids.
func buildResult(plan *reconcilePlan, persisted []string) *models.ReconcileResult {
	result := &models.ReconcileResult{
		IDs:     make(map[string]*string, len(plan.nodes)+len(plan.unresolved)+1),
		Reasons: make(map[string]models.UnresolvedReason, len(plan.unresolved)),
	}

	for clientID, reason := range plan.unresolved {
		result.IDs[clientID] = nil
		result.Reasons[clientID] = reason
	}
	for i, node := range plan.nodes {
		id := persisted[i]
		result.IDs[node.clientID] = &id
	}
	rootID := plan.rootItemID
	result.IDs[plan.rootClientID] = &rootID

	return result
}
