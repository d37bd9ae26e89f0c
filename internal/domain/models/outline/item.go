package outline

// Item is one node of an outline. ParentID is nil only for the root.
type Item struct {
	ID         string  `json:"id" db:"id"`
	DocumentID string  `json:"document_id" db:"document_id"`
	ParentID   *string `json:"parent_id" db:"parent_id"`
	ItemText   string  `json:"item_text" db:"item_text"`
	ChildOrder int32   `json:"child_order" db:"child_order"`
	Collapsed  bool    `json:"collapsed" db:"collapsed"`
}

// IsRoot reports whether the item has no parent.
func (i *Item) IsRoot() bool {
	return i.ParentID == nil
}

// ItemNode is an item with its children nested, built from a flat item list.
type ItemNode struct {
	Item
	Children []*ItemNode `json:"children"`
}
