package postgres

import (
	"strings"
	"testing"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations("test_")
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no migrations embedded")
	}

	for i, m := range migrations {
		if i > 0 && migrations[i-1].Version >= m.Version {
			t.Errorf("migrations out of order: %s before %s", migrations[i-1].Version, m.Version)
		}
		if m.Down == "" {
			t.Errorf("migration %s has no down script", m.Version)
		}
		if strings.Contains(m.Up, prefixPlaceholder) || strings.Contains(m.Down, prefixPlaceholder) {
			t.Errorf("migration %s still contains the prefix placeholder", m.Version)
		}
	}

	if !strings.Contains(migrations[0].Up, "test_items") {
		t.Errorf("first migration does not create test_items")
	}
}

func TestMigrationsCascadeItemDeletes(t *testing.T) {
	migrations, err := LoadMigrations("")
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}

	var all strings.Builder
	for _, m := range migrations {
		all.WriteString(m.Up)
	}
	schema := all.String()

	// Subtree removal and style cleanup rely on these cascades
	for _, want := range []string{
		"parent_id UUID REFERENCES items(id) ON DELETE CASCADE",
		"item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE",
		"document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
