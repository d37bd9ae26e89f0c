package outline

// Snapshot is a client's full view of a document's outline, keyed by
// client-local ids. Only nodes reachable from RootItem are materialized.
type Snapshot struct {
	RootItem string                  `json:"root_item"`
	TOCItem  *string                 `json:"toc_item,omitempty"`
	Items    map[string]SnapshotNode `json:"items"`
}

// SnapshotNode describes one node. ItemID and ParentID are informational;
// structure comes from Children.
type SnapshotNode struct {
	ItemID     string      `json:"item_id"`
	ParentID   *string     `json:"parent_id,omitempty"`
	ChildOrder int32       `json:"child_order"`
	Children   []string    `json:"children"`
	ItemText   *string     `json:"item_text,omitempty"`
	Styles     []StyleEdit `json:"styles"`
}

// UnresolvedReason says why a client id was not given a persisted id.
type UnresolvedReason string

const (
	// ReasonMissing: referenced as a child but absent from the node map.
	ReasonMissing UnresolvedReason = "missing"
	// ReasonMalformed: not a syntactically valid identity.
	ReasonMalformed UnresolvedReason = "malformed"
	// ReasonUnreachable: defined in the node map but never referenced from the root.
	ReasonUnreachable UnresolvedReason = "unreachable"
)

// ReconcileResult maps every client id mentioned by a snapshot to its new
// persisted id, or nil when unresolved. Reasons holds an entry for each nil.
type ReconcileResult struct {
	IDs     map[string]*string          `json:"ids"`
	Reasons map[string]UnresolvedReason `json:"reasons,omitempty"`
}

// Resolved returns the persisted id for a client id, if any.
func (r *ReconcileResult) Resolved(clientID string) (string, bool) {
	id, ok := r.IDs[clientID]
	if !ok || id == nil {
		return "", false
	}
	return *id, true
}
