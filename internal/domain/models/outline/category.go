package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TrashCategory is the reserved category that marks a document as soft-deleted.
const TrashCategory = "Trash"

// MaxCategoryNameLength is the longest category name kept after sanitizing, in runes.
const MaxCategoryNameLength = 32

// Category tags a document for one user.
type Category struct {
	ID           string `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	DocumentID   string `json:"document_id" db:"document_id"`
	CategoryName string `json:"category_name" db:"category_name"`
}

// SanitizeCategoryName trims the name, lower-cases it, upper-cases the first
// rune and truncates to MaxCategoryNameLength runes.
func SanitizeCategoryName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(name)
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(first))
	count := 1
	for _, r := range name[size:] {
		if count >= MaxCategoryNameLength {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
