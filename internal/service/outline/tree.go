package outline

import (
	"sort"

	models "seriatim/internal/domain/models/outline"
)

func findItem(items []models.Item, id string) *models.Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// childIndex groups items by parent id, each group sorted by child_order.
// Ties keep their order in items.
func childIndex(items []models.Item) map[string][]models.Item {
	index := make(map[string][]models.Item)
	for _, item := range items {
		if item.ParentID == nil {
			continue
		}
		index[*item.ParentID] = append(index[*item.ParentID], item)
	}
	for _, kids := range index {
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].ChildOrder < kids[j].ChildOrder
		})
	}
	return index
}

// BuildItemTree nests a flat item list under the item with rootID.
// Items not connected to the root are left out. Returns nil if the root
// is not in items.
func BuildItemTree(items []models.Item, rootID string) *models.ItemNode {
	root := findItem(items, rootID)
	if root == nil {
		return nil
	}

	// First pass: one node per item
	nodes := make(map[string]*models.ItemNode, len(items))
	for _, item := range items {
		nodes[item.ID] = &models.ItemNode{Item: item, Children: []*models.ItemNode{}}
	}

	// Second pass: attach children in order, walking down from the root
	index := childIndex(items)
	stack := []string{root.ID}
	attached := map[string]bool{root.ID: true}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		parent := nodes[id]
		for _, kid := range index[id] {
			if attached[kid.ID] {
				continue
			}
			attached[kid.ID] = true
			parent.Children = append(parent.Children, nodes[kid.ID])
			stack = append(stack, kid.ID)
		}
	}

	return nodes[root.ID]
}
