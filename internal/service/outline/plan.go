package outline

import (
	"fmt"

	"seriatim/internal/config"
	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	"seriatim/internal/styles"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Limits bounds the size of a snapshot accepted for reconciliation
type Limits struct {
	MaxDepth int // levels below the root
	MaxNodes int // items created in one reconciliation
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{MaxDepth: config.DefaultMaxTreeDepth, MaxNodes: config.DefaultMaxTreeNodes}
}

// plannedNode is one item to create. parent indexes into reconcilePlan.nodes;
// -1 means the document root. Nodes are in pre-order, so a parent always
// precedes its children.
type plannedNode struct {
	clientID string
	parent   int
	order    int32
	text     string
	styles   []models.StyleEdit
}

// reconcilePlan is the write-free outcome of reading a snapshot.
type reconcilePlan struct {
	rootClientID string
	rootItemID   string
	rootText     *string
	rootStyles   []models.StyleEdit
	tocClientID  *string
	nodes        []plannedNode
	unresolved   map[string]models.UnresolvedReason
}

type planFrame struct {
	clientID string
	parent   int
	depth    int
}

// planReconciliation walks the snapshot from its root with an explicit
// stack and decides everything the write phase will do. It touches no
// storage, so any error it returns leaves the document unchanged.
func planReconciliation(doc *models.Document, snap *models.Snapshot, limits Limits, catalog *styles.Catalog) (*reconcilePlan, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	rootNode, err := resolveRoot(doc, snap)
	if err != nil {
		return nil, err
	}
	if err := validateNode(snap.RootItem, rootNode, catalog); err != nil {
		return nil, err
	}

	plan := &reconcilePlan{
		rootClientID: snap.RootItem,
		rootItemID:   doc.RootID(),
		rootText:     rootNode.ItemText,
		rootStyles:   rootNode.Styles,
		tocClientID:  snap.TOCItem,
		unresolved:   make(map[string]models.UnresolvedReason),
	}

	seen := map[string]bool{snap.RootItem: true}
	stack := make([]planFrame, 0, len(rootNode.Children))
	stack = pushChildren(stack, rootNode.Children, -1, 1)

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// A client id is placed once; later references, including cycles
		// back to an ancestor, are dropped.
		if seen[frame.clientID] {
			continue
		}
		seen[frame.clientID] = true

		node, ok := snap.Items[frame.clientID]
		if !ok {
			plan.unresolved[frame.clientID] = models.ReasonMissing
			continue
		}
		if _, err := uuid.Parse(frame.clientID); err != nil {
			plan.unresolved[frame.clientID] = models.ReasonMalformed
			continue
		}

		if limits.MaxDepth > 0 && frame.depth > limits.MaxDepth {
			return nil, fmt.Errorf("%w: %w: nesting deeper than %d levels", domain.ErrValidation, domain.ErrTreeTooDeep, limits.MaxDepth)
		}
		if limits.MaxNodes > 0 && len(plan.nodes) >= limits.MaxNodes {
			return nil, fmt.Errorf("%w: %w: more than %d items", domain.ErrValidation, domain.ErrTreeTooDeep, limits.MaxNodes)
		}
		if err := validateNode(frame.clientID, node, catalog); err != nil {
			return nil, err
		}

		text := ""
		if node.ItemText != nil {
			text = *node.ItemText
		}
		plan.nodes = append(plan.nodes, plannedNode{
			clientID: frame.clientID,
			parent:   frame.parent,
			order:    node.ChildOrder,
			text:     text,
			styles:   node.Styles,
		})
		stack = pushChildren(stack, node.Children, len(plan.nodes)-1, frame.depth+1)
	}

	for clientID := range snap.Items {
		if !seen[clientID] {
			plan.unresolved[clientID] = models.ReasonUnreachable
		}
	}

	return plan, nil
}

// pushChildren pushes in reverse so the first declared child pops first.
func pushChildren(stack []planFrame, children []string, parent, depth int) []planFrame {
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, planFrame{clientID: children[i], parent: parent, depth: depth})
	}
	return stack
}

// resolveRoot ties the snapshot's declared root to the document's root item.
func resolveRoot(doc *models.Document, snap *models.Snapshot) (models.SnapshotNode, error) {
	fail := func(reason string) (models.SnapshotNode, error) {
		return models.SnapshotNode{}, &domain.InvalidRootError{
			DocumentID: doc.ID,
			ClientID:   snap.RootItem,
			Reason:     reason,
		}
	}

	node, ok := snap.Items[snap.RootItem]
	if !ok {
		return fail("is not in the item map")
	}
	declared, err := uuid.Parse(snap.RootItem)
	if err != nil {
		return fail("is not a valid item id")
	}
	actual, err := uuid.Parse(doc.RootID())
	if err != nil {
		return fail("cannot be matched: the document has no root item")
	}
	if declared != actual {
		return fail("is not the document's root item")
	}
	return node, nil
}

func validateSnapshot(snap *models.Snapshot) error {
	return validation.ValidateStruct(snap,
		validation.Field(&snap.RootItem, validation.Required),
		validation.Field(&snap.Items, validation.Required),
	)
}

// validateNode checks text length and every style edit of one node.
func validateNode(clientID string, node models.SnapshotNode, catalog *styles.Catalog) error {
	err := validation.ValidateStruct(&node,
		validation.Field(&node.ItemText, validation.RuneLength(0, config.MaxItemTextLength)),
		validation.Field(&node.Styles, validation.Each(validation.By(func(value interface{}) error {
			edit, ok := value.(models.StyleEdit)
			if !ok {
				return fmt.Errorf("unexpected style type %T", value)
			}
			return catalog.Validate(edit)
		}))),
	)
	if err != nil {
		return fmt.Errorf("%w: item %s: %v", domain.ErrValidation, clientID, err)
	}
	if dup := duplicateProperty(node.Styles); dup != "" {
		return fmt.Errorf("%w: item %s: style %s listed twice", domain.ErrValidation, clientID, dup)
	}
	return nil
}

func duplicateProperty(edits []models.StyleEdit) models.StyleProperty {
	seen := make(map[models.StyleProperty]bool, len(edits))
	for _, e := range edits {
		if seen[e.Property] {
			return e.Property
		}
		seen[e.Property] = true
	}
	return ""
}
