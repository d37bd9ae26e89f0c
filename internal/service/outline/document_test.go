package outline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	outlineSvc "seriatim/internal/domain/services/outline"

	"github.com/google/uuid"
)

func TestCreateDocument(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()

	doc, err := env.service.CreateDocument(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if doc.RootItemID == nil {
		t.Fatal("root_item_id not set")
	}
	root, err := env.items.GetByID(ctx, *doc.RootItemID)
	if err != nil {
		t.Fatalf("root item: %v", err)
	}
	if root.ParentID != nil || root.DocumentID != doc.ID || root.ItemText != "" {
		t.Errorf("root = %+v", root)
	}
	if n := env.store.itemCount(doc.ID); n != 1 {
		t.Errorf("items = %d, want only the root", n)
	}

	if _, err := env.service.CreateDocument(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous create error = %v, want ErrUnauthorized", err)
	}
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, rootID := env.newDoc("alice")
	child := env.addItem(doc.ID, rootID, "child", 0)
	if err := env.styles.Insert(ctx, &models.Style{ItemID: child, Property: "color", ValueString: strPtr("red")}); err != nil {
		t.Fatalf("style: %v", err)
	}
	if _, err := env.category.AddCategory(ctx, "alice", doc.ID, &outlineSvc.CategoryRequest{Name: "work"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	view, err := env.service.GetDocument(ctx, "alice", doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if view.Title != "Untitled Document" {
		t.Errorf("title = %q", view.Title)
	}
	if len(view.Items) != 2 || len(view.Styles[child]) != 1 {
		t.Errorf("items = %d, styles = %+v", len(view.Items), view.Styles)
	}
	if len(view.Categories) != 1 || view.Categories[0] != "Work" {
		t.Errorf("categories = %v, want [Work]", view.Categories)
	}
	if view.Tree == nil || len(view.Tree.Children) != 1 {
		t.Errorf("tree = %+v", view.Tree)
	}
	if !view.Permissions.Edit {
		t.Error("owner cannot edit")
	}

	tests := []struct {
		name     string
		viewer   string
		public   bool
		wantErr  error
		wantEdit bool
	}{
		{"stranger on private", "bob", false, domain.ErrForbidden, false},
		{"anonymous on private", "", false, domain.ErrUnauthorized, false},
		{"stranger on public", "bob", true, nil, false},
		{"anonymous on public", "", true, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := env.service.SetPubliclyViewable(ctx, "alice", doc.ID, tt.public); err != nil {
				t.Fatalf("SetPubliclyViewable: %v", err)
			}
			view, err := env.service.GetDocument(ctx, tt.viewer, doc.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetDocument: %v", err)
			}
			if view.Permissions.Edit != tt.wantEdit {
				t.Errorf("edit = %v, want %v", view.Permissions.Edit, tt.wantEdit)
			}
			if len(view.Categories) != 0 {
				t.Errorf("viewer sees owner's categories %v", view.Categories)
			}
		})
	}

	if _, err := env.service.GetDocument(ctx, "alice", uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing document error = %v, want ErrNotFound", err)
	}
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	first, _ := env.newDoc("alice")
	second, _ := env.newDoc("alice")
	env.newDoc("bob")

	if err := env.service.RenameDocument(ctx, "alice", second.ID, &outlineSvc.RenameDocumentRequest{Name: "Groceries"}); err != nil {
		t.Fatalf("RenameDocument: %v", err)
	}
	if _, err := env.service.DeleteDocument(ctx, "alice", first.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	list, err := env.service.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d documents, want 2", len(list))
	}
	byID := make(map[string]models.DocumentSummary)
	for _, s := range list {
		byID[s.ID] = s
	}
	if byID[second.ID].Title != "Groceries" {
		t.Errorf("title = %q, want Groceries", byID[second.ID].Title)
	}
	if byID[first.ID].Title != "Untitled Document" {
		t.Errorf("title = %q, want Untitled Document", byID[first.ID].Title)
	}
	if cats := byID[first.ID].Categories; len(cats) != 1 || cats[0] != models.TrashCategory {
		t.Errorf("trashed categories = %v", cats)
	}

	if _, err := env.service.ListDocuments(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous list error = %v", err)
	}
}

func TestRenameDocument(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, rootID := env.newDoc("alice")

	tests := []struct {
		name    string
		user    string
		title   string
		wantErr error
	}{
		{"owner", "alice", "New name", nil},
		{"empty name", "alice", "", domain.ErrValidation},
		{"name too long", "alice", strings.Repeat("n", 256), domain.ErrValidation},
		{"not owner", "bob", "Mine now", domain.ErrForbidden},
		{"anonymous", "", "Mine now", domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.service.RenameDocument(ctx, tt.user, doc.ID, &outlineSvc.RenameDocumentRequest{Name: tt.title})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("RenameDocument: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	root, _ := env.items.GetByID(ctx, rootID)
	if root.ItemText != "New name" {
		t.Errorf("root text = %q, want New name", root.ItemText)
	}
}

func TestEditText(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, rootID := env.newDoc("alice")
	a := env.addItem(doc.ID, rootID, "a", 0)
	b := env.addItem(doc.ID, rootID, "b", 1)

	err := env.service.EditText(ctx, "alice", doc.ID, &outlineSvc.EditTextRequest{
		Items: map[string]string{a: "alpha", b: "beta"},
	})
	if err != nil {
		t.Fatalf("EditText: %v", err)
	}
	for id, want := range map[string]string{a: "alpha", b: "beta"} {
		it, _ := env.items.GetByID(ctx, id)
		if it.ItemText != want {
			t.Errorf("%s text = %q, want %q", id, it.ItemText, want)
		}
	}

	// Unknown ids and items of another document are skipped
	other, otherRoot := env.newDoc("alice")
	foreign := env.addItem(other.ID, otherRoot, "foreign", 0)
	err = env.service.EditText(ctx, "alice", doc.ID, &outlineSvc.EditTextRequest{
		Items: map[string]string{a: "changed", uuid.NewString(): "nope", foreign: "x"},
	})
	if err != nil {
		t.Fatalf("EditText with unknown ids: %v", err)
	}
	if it, _ := env.items.GetByID(ctx, a); it.ItemText != "changed" {
		t.Errorf("a text = %q, want changed", it.ItemText)
	}
	if it, _ := env.items.GetByID(ctx, foreign); it.ItemText != "foreign" {
		t.Errorf("foreign item edited through another document: %q", it.ItemText)
	}

	if err := env.service.EditText(ctx, "alice", doc.ID, &outlineSvc.EditTextRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty edit error = %v, want ErrValidation", err)
	}
	if err := env.service.EditText(ctx, "bob", doc.ID, &outlineSvc.EditTextRequest{Items: map[string]string{a: "x"}}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner edit error = %v, want ErrForbidden", err)
	}
}

func TestSetPubliclyViewableOwnerOnly(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, _ := env.newDoc("alice")

	if err := env.service.SetPubliclyViewable(ctx, "bob", doc.ID, true); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if err := env.service.SetPubliclyViewable(ctx, "alice", doc.ID, true); err != nil {
		t.Fatalf("SetPubliclyViewable: %v", err)
	}
	stored, _ := env.docs.GetByID(ctx, doc.ID)
	if !stored.PubliclyViewable {
		t.Error("document not public")
	}
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, rootID := env.newDoc("alice")
	env.addItem(doc.ID, rootID, "child", 0)

	res, err := env.service.DeleteDocument(ctx, "alice", doc.ID)
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if !res.Trashed || res.Deleted {
		t.Fatalf("first delete = %+v, want trashed", res)
	}
	trashed, err := env.category.IsTrashed(ctx, "alice", doc.ID)
	if err != nil || !trashed {
		t.Fatalf("IsTrashed = %v, %v", trashed, err)
	}

	res, err = env.service.DeleteDocument(ctx, "alice", doc.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if !res.Deleted {
		t.Fatalf("second delete = %+v, want deleted", res)
	}
	if _, err := env.docs.GetByID(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("document still exists: %v", err)
	}
	if n := env.store.itemCount(doc.ID); n != 0 {
		t.Errorf("%d items survived the delete", n)
	}
}

func TestDeleteDocumentNonOwner(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, _ := env.newDoc("alice")

	if _, err := env.service.DeleteDocument(ctx, "bob", doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("private delete error = %v, want ErrForbidden", err)
	}

	if err := env.service.SetPubliclyViewable(ctx, "alice", doc.ID, true); err != nil {
		t.Fatalf("SetPubliclyViewable: %v", err)
	}
	res, err := env.service.DeleteDocument(ctx, "bob", doc.ID)
	if err != nil || !res.Trashed {
		t.Fatalf("public delete = %+v, %v; want trashed for bob", res, err)
	}
	if _, err := env.service.DeleteDocument(ctx, "bob", doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("hard delete by non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := env.docs.GetByID(ctx, doc.ID); err != nil {
		t.Errorf("document removed by non-owner: %v", err)
	}

	aliceTrash, _ := env.category.IsTrashed(ctx, "alice", doc.ID)
	if aliceTrash {
		t.Error("bob's trash leaked into alice's categories")
	}
}

func TestReconcileOutlineAuthorization(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	doc, rootID := env.newDoc("alice")
	snap := &models.Snapshot{RootItem: rootID, Items: map[string]models.SnapshotNode{rootID: {}}}

	if _, err := env.service.ReconcileOutline(ctx, "bob", doc.ID, snap); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := env.service.ReconcileOutline(ctx, "", doc.ID, snap); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous error = %v, want ErrUnauthorized", err)
	}
	if _, err := env.service.ReconcileOutline(ctx, "alice", doc.ID, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("nil snapshot error = %v, want ErrValidation", err)
	}
	if _, err := env.service.ReconcileOutline(ctx, "alice", doc.ID, snap); err != nil {
		t.Errorf("owner reconcile: %v", err)
	}
}

func TestCopyDocument(t *testing.T) {
	env := newTestEnv(DefaultLimits())
	ctx := context.Background()
	source, sourceRoot := buildSource(t, env, "Plan")

	if _, err := env.service.CopyDocument(ctx, "bob", source.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("private copy error = %v, want ErrForbidden", err)
	}
	if _, err := env.service.CopyDocument(ctx, "", source.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous copy error = %v, want ErrUnauthorized", err)
	}

	if err := env.service.SetPubliclyViewable(ctx, "alice", source.ID, true); err != nil {
		t.Fatalf("SetPubliclyViewable: %v", err)
	}
	copyDoc, err := env.service.CopyDocument(ctx, "bob", source.ID)
	if err != nil {
		t.Fatalf("CopyDocument: %v", err)
	}
	if copyDoc.UserID != "bob" || copyDoc.PubliclyViewable {
		t.Errorf("copy = %+v, want a private document owned by bob", copyDoc)
	}
	if got, want := shape(env.store, copyDoc.RootID()), shape(env.store, sourceRoot); !equalStrings(got, want) {
		t.Errorf("copy shape = %v, want %v", got, want)
	}
}
