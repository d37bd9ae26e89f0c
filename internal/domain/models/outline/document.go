package outline

import (
	"time"
)

// Document owns one outline tree. RootItemID is assigned once, at creation.
type Document struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	RootItemID       *string    `json:"root_item_id" db:"root_item_id"` // NULL only between insert and back-fill
	TOCItemID        *string    `json:"toc_item_id" db:"toc_item_id"`
	PubliclyViewable bool       `json:"publicly_viewable" db:"publicly_viewable"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt       *time.Time `json:"modified_at" db:"modified_at"`
}

// RootID returns the root item id, or "" if it has not been back-filled.
func (d *Document) RootID() string {
	if d.RootItemID == nil {
		return ""
	}
	return *d.RootItemID
}

// DocumentSummary is a list entry: the document plus its display title and
// the categories the requesting user has attached to it.
type DocumentSummary struct {
	Document
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
}

// DocumentView is a fully loaded document as returned to a viewer.
type DocumentView struct {
	Document
	Title       string             `json:"title"`
	Items       []Item             `json:"items"`
	Styles      map[string][]Style `json:"styles"` // keyed by item id
	Categories  []string           `json:"categories"`
	Tree        *ItemNode          `json:"tree"`
	Permissions Permissions        `json:"permissions"`
}

// Permissions describes what the viewer may do with a document.
type Permissions struct {
	Edit bool `json:"edit"`
}
