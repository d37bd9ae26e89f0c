package config

const (
	// MaxItemTextLength bounds a single item's text. Outline items are
	// short lines; anything near this size is a client bug.
	MaxItemTextLength = 10000

	// MaxDocumentNameLength bounds a rename. The name lives in the root
	// item, so it shares the item text limit in practice.
	MaxDocumentNameLength = 255

	// MaxEditTextItems bounds the number of items in one edit_text request.
	MaxEditTextItems = 5000

	// UntitledDocumentTitle is shown, and copied, when a root has no text.
	UntitledDocumentTitle = "Untitled Document"

	// DefaultMaxTreeDepth caps how deep a submitted outline may nest.
	DefaultMaxTreeDepth = 256

	// DefaultMaxTreeNodes caps how many items one reconciliation may create.
	DefaultMaxTreeNodes = 20000

	// DefaultSessionKeep is how many login sessions a user keeps.
	DefaultSessionKeep = 5
)
