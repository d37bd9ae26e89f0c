package outline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"seriatim/internal/domain"
	models "seriatim/internal/domain/models/outline"
	"seriatim/internal/domain/repositories"
	"seriatim/internal/service/auth"
	"seriatim/internal/styles"

	"github.com/google/uuid"
)

// memStore is an in-memory entity store. Deleting an item removes its
// subtree and their styles, like the ON DELETE CASCADE schema does.
type memStore struct {
	mu         sync.Mutex
	docs       map[string]models.Document
	items      map[string]models.Item
	seq        map[string]int
	nextSeq    int
	styles     map[string]map[models.StyleProperty]models.Style
	categories map[string]models.Category

	writes int

	// trace records lock and clear calls in order
	trace []string

	// failItemCreateAt makes the nth item Create (1-based) fail; 0 disables
	failItemCreateAt int
	itemCreates      int
}

var errInjected = errors.New("injected storage failure")

func newMemStore() *memStore {
	return &memStore{
		docs:       make(map[string]models.Document),
		items:      make(map[string]models.Item),
		seq:        make(map[string]int),
		styles:     make(map[string]map[models.StyleProperty]models.Style),
		categories: make(map[string]models.Category),
	}
}

type memSnapshot struct {
	docs       map[string]models.Document
	items      map[string]models.Item
	seq        map[string]int
	styles     map[string]map[models.StyleProperty]models.Style
	categories map[string]models.Category
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		docs:       make(map[string]models.Document, len(s.docs)),
		items:      make(map[string]models.Item, len(s.items)),
		seq:        make(map[string]int, len(s.seq)),
		styles:     make(map[string]map[models.StyleProperty]models.Style, len(s.styles)),
		categories: make(map[string]models.Category, len(s.categories)),
	}
	for k, v := range s.docs {
		snap.docs[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.seq {
		snap.seq[k] = v
	}
	for k, v := range s.styles {
		inner := make(map[models.StyleProperty]models.Style, len(v))
		for p, st := range v {
			inner[p] = st
		}
		snap.styles[k] = inner
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.docs = snap.docs
	s.items = snap.items
	s.seq = snap.seq
	s.styles = snap.styles
	s.categories = snap.categories
}

// deleteItemLocked removes id and every descendant, their styles, and
// clears toc pointers at removed items.
func (s *memStore) deleteItemLocked(id string) {
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for childID, item := range s.items {
			if item.ParentID != nil && *item.ParentID == cur {
				stack = append(stack, childID)
			}
		}
		delete(s.items, cur)
		delete(s.seq, cur)
		delete(s.styles, cur)
		for docID, doc := range s.docs {
			if doc.TOCItemID != nil && *doc.TOCItemID == cur {
				doc.TOCItemID = nil
				s.docs[docID] = doc
			}
		}
	}
}

func (s *memStore) childrenOf(parentID string) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(func(it models.Item) bool {
		return it.ParentID != nil && *it.ParentID == parentID
	})
}

func (s *memStore) sortedLocked(keep func(models.Item) bool) []models.Item {
	out := make([]models.Item, 0)
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.ParentID == nil) != (b.ParentID == nil) {
			return a.ParentID == nil
		}
		if a.ParentID != nil && *a.ParentID != *b.ParentID {
			return *a.ParentID < *b.ParentID
		}
		if a.ChildOrder != b.ChildOrder {
			return a.ChildOrder < b.ChildOrder
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})
	return out
}

func (s *memStore) itemCount(documentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		if it.DocumentID == documentID {
			n++
		}
	}
	return n
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// memTxManager runs fn and restores the store if it fails
type memTxManager struct {
	store *memStore
}

type memTxKey struct{}

func (m *memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.store.mu.Lock()
	snap := m.store.snapshot()
	m.store.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.store.mu.Lock()
		m.store.restore(snap)
		m.store.mu.Unlock()
		return err
	}
	return nil
}

type memDocuments struct{ s *memStore }

func (r memDocuments) Create(ctx context.Context, doc *models.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.writes++
	doc.ID = uuid.NewString()
	r.s.docs[doc.ID] = *doc
	return nil
}

func (r memDocuments) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r memDocuments) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Document, 0)
	for _, doc := range r.s.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memDocuments) update(id string, fn func(*models.Document) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if err := fn(&doc); err != nil {
		return err
	}
	r.s.writes++
	r.s.docs[id] = doc
	return nil
}

func (r memDocuments) SetRootItem(ctx context.Context, id, rootItemID string) error {
	return r.update(id, func(d *models.Document) error {
		if d.RootItemID != nil {
			return domain.ErrConflict
		}
		d.RootItemID = &rootItemID
		return nil
	})
}

func (r memDocuments) LockForUpdate(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	r.s.trace = append(r.s.trace, "lock "+id)
	return nil
}

func (r memDocuments) SetTOCItem(ctx context.Context, id string, itemID *string) error {
	return r.update(id, func(d *models.Document) error {
		d.TOCItemID = itemID
		return nil
	})
}

func (r memDocuments) SetPubliclyViewable(ctx context.Context, id string, viewable bool) error {
	return r.update(id, func(d *models.Document) error {
		d.PubliclyViewable = viewable
		return nil
	})
}

func (r memDocuments) Touch(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(d *models.Document) error {
		d.ModifiedAt = &at
		return nil
	})
}

func (r memDocuments) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	r.s.writes++
	for itemID, item := range r.s.items {
		if item.DocumentID == id && item.ParentID == nil {
			r.s.deleteItemLocked(itemID)
		}
	}
	for catID, c := range r.s.categories {
		if c.DocumentID == id {
			delete(r.s.categories, catID)
		}
	}
	delete(r.s.docs, id)
	return nil
}

type memItems struct{ s *memStore }

func (r memItems) Create(ctx context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.itemCreates++
	if r.s.failItemCreateAt > 0 && r.s.itemCreates == r.s.failItemCreateAt {
		return errInjected
	}
	if _, ok := r.s.docs[item.DocumentID]; !ok {
		return fmt.Errorf("create item: %w", domain.ErrValidation)
	}
	if item.ParentID != nil {
		parent, ok := r.s.items[*item.ParentID]
		if !ok || parent.DocumentID != item.DocumentID {
			return fmt.Errorf("create item: parent %s: %w", *item.ParentID, domain.ErrValidation)
		}
	}
	r.s.writes++
	item.ID = uuid.NewString()
	r.s.nextSeq++
	r.s.seq[item.ID] = r.s.nextSeq
	r.s.items[item.ID] = *item
	return nil
}

func (r memItems) GetByID(ctx context.Context, id string) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

func (r memItems) ListByDocument(ctx context.Context, documentID string) ([]models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedLocked(func(it models.Item) bool { return it.DocumentID == documentID }), nil
}

func (r memItems) ListChildren(ctx context.Context, parentID string) ([]models.Item, error) {
	return r.s.childrenOf(parentID), nil
}

func (r memItems) DeleteChildren(ctx context.Context, parentID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.writes++
	r.s.trace = append(r.s.trace, "clear "+parentID)
	var direct []string
	for id, item := range r.s.items {
		if item.ParentID != nil && *item.ParentID == parentID {
			direct = append(direct, id)
		}
	}
	for _, id := range direct {
		r.s.deleteItemLocked(id)
	}
	return int64(len(direct)), nil
}

func (r memItems) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	r.s.writes++
	r.s.deleteItemLocked(id)
	return nil
}

func (r memItems) UpdateText(ctx context.Context, documentID, id, text string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok || item.DocumentID != documentID {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	r.s.writes++
	item.ItemText = text
	r.s.items[id] = item
	return nil
}

type memStyles struct{ s *memStore }

func (r memStyles) ListByItem(ctx context.Context, itemID string) ([]models.Style, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Style, 0)
	for _, st := range r.s.styles[itemID] {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Property < out[j].Property })
	return out, nil
}

func (r memStyles) ListByDocument(ctx context.Context, documentID string) ([]models.Style, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Style, 0)
	for itemID, props := range r.s.styles {
		if r.s.items[itemID].DocumentID != documentID {
			continue
		}
		for _, st := range props {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r memStyles) Insert(ctx context.Context, style *models.Style) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[style.ItemID]; !ok {
		return fmt.Errorf("insert style: %w", domain.ErrValidation)
	}
	props := r.s.styles[style.ItemID]
	if props == nil {
		props = make(map[models.StyleProperty]models.Style)
		r.s.styles[style.ItemID] = props
	}
	if _, exists := props[style.Property]; exists {
		return &domain.ConflictError{Message: "style exists", ResourceType: "style"}
	}
	r.s.writes++
	props[style.Property] = *style
	return nil
}

func (r memStyles) Update(ctx context.Context, style *models.Style) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	props := r.s.styles[style.ItemID]
	if _, exists := props[style.Property]; !exists {
		return fmt.Errorf("style %s: %w", style.Property, domain.ErrNotFound)
	}
	r.s.writes++
	props[style.Property] = *style
	return nil
}

type memCategories struct{ s *memStore }

func (r memCategories) Create(ctx context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.UserID == c.UserID && existing.DocumentID == c.DocumentID && existing.CategoryName == c.CategoryName {
			return &domain.ConflictError{Message: "category exists", ResourceType: "category", ResourceID: existing.ID}
		}
	}
	r.s.writes++
	c.ID = uuid.NewString()
	r.s.categories[c.ID] = *c
	return nil
}

func (r memCategories) Get(ctx context.Context, userID, documentID, name string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.UserID == userID && c.DocumentID == documentID && c.CategoryName == name {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
}

func (r memCategories) ListByDocument(ctx context.Context, userID, documentID string) ([]models.Category, error) {
	return r.list(func(c models.Category) bool { return c.UserID == userID && c.DocumentID == documentID }), nil
}

func (r memCategories) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	return r.list(func(c models.Category) bool { return c.UserID == userID }), nil
}

func (r memCategories) list(keep func(models.Category) bool) []models.Category {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Category, 0)
	for _, c := range r.s.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out
}

func (r memCategories) Delete(ctx context.Context, userID, documentID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.categories {
		if c.UserID == userID && c.DocumentID == documentID && c.CategoryName == name {
			r.s.writes++
			delete(r.s.categories, id)
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
}

// testEnv wires the services over one memStore
type testEnv struct {
	store      *memStore
	docs       memDocuments
	items      memItems
	styles     memStyles
	categories memCategories
	reconciler *reconciler
	replicator *replicator
	service    *documentService
	category   *categoryService
}

func newTestEnv(limits Limits) *testEnv {
	store := newMemStore()
	env := &testEnv{
		store:      store,
		docs:       memDocuments{store},
		items:      memItems{store},
		styles:     memStyles{store},
		categories: memCategories{store},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &memTxManager{store: store}

	catalog, err := styles.Default()
	if err != nil {
		panic(err)
	}

	authz := auth.NewOwnerBasedAuthorizer(env.docs)
	env.reconciler = NewReconciler(env.docs, env.items, env.styles, tx, catalog, limits, logger).(*reconciler)
	env.replicator = NewReplicator(env.docs, env.items, tx, logger).(*replicator)
	env.service = NewDocumentService(env.docs, env.items, env.styles, env.categories, tx, authz, env.reconciler, env.replicator, logger).(*documentService)
	env.category = NewCategoryService(env.categories, authz, logger).(*categoryService)
	return env
}

// newDoc creates a document for userID and returns it with its root id
func (e *testEnv) newDoc(userID string) (*models.Document, string) {
	doc, err := e.service.CreateDocument(context.Background(), userID)
	if err != nil {
		panic(err)
	}
	return doc, doc.RootID()
}

// addItem writes an item directly, bypassing the reconciler
func (e *testEnv) addItem(docID, parentID, text string, order int32) string {
	item := &models.Item{DocumentID: docID, ParentID: &parentID, ItemText: text, ChildOrder: order}
	if err := e.items.Create(context.Background(), item); err != nil {
		panic(err)
	}
	return item.ID
}

func strPtr(s string) *string { return &s }
func numPtr(n int32) *int32   { return &n }
func unitPtr(u string) *models.StyleUnit {
	v := models.StyleUnit(u)
	return &v
}
