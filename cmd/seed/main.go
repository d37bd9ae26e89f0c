package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"seriatim/internal/config"
	models "seriatim/internal/domain/models/outline"
	outlineSvc "seriatim/internal/domain/services/outline"
	"seriatim/internal/repository/postgres"
	postgresOutline "seriatim/internal/repository/postgres/outline"
	serviceAuth "seriatim/internal/service/auth"
	serviceOutline "seriatim/internal/service/outline"
	"seriatim/internal/styles"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// seedNode is one line of the sample outline
type seedNode struct {
	text     string
	styles   []models.StyleEdit
	children []seedNode
}

func main() {
	userID := flag.String("user", "", "Owner user id (UUID) for the seeded documents")
	dropTables := flag.Bool("drop-tables", false, "Roll back all migrations before seeding (fresh start)")
	clearData := flag.Bool("clear-data", false, "Delete the user's documents and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" {
		log.Fatalf("🚫 BLOCKED: seeding is disabled in the production environment")
	}
	if _, err := uuid.Parse(*userID); err != nil {
		log.Fatalf("--user must be a UUID, got %q", *userID)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *dropTables {
		log.Printf("🗑️  Rolling back migrations (prefix: %s)...", cfg.TablePrefix)
		if err := postgres.RollbackMigrations(ctx, pool, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
	}

	applied, err := postgres.ApplyMigrations(ctx, pool, cfg.TablePrefix)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Printf("✅ Schema ready (%d migrations applied)", len(applied))

	catalog, err := styles.Default()
	if err != nil {
		log.Fatalf("Failed to load style catalog: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	docRepo := postgresOutline.NewDocumentRepository(repoConfig)
	itemRepo := postgresOutline.NewItemRepository(repoConfig)
	styleRepo := postgresOutline.NewStyleRepository(repoConfig)
	categoryRepo := postgresOutline.NewCategoryRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(docRepo)

	limits := serviceOutline.Limits{MaxDepth: cfg.MaxTreeDepth, MaxNodes: cfg.MaxTreeNodes}
	reconciler := serviceOutline.NewReconciler(docRepo, itemRepo, styleRepo, txManager, catalog, limits, logger)
	replicator := serviceOutline.NewReplicator(docRepo, itemRepo, txManager, logger)
	docService := serviceOutline.NewDocumentService(docRepo, itemRepo, styleRepo, categoryRepo, txManager, authorizer, reconciler, replicator, logger)

	if *clearData {
		docs, err := docRepo.ListByUser(ctx, *userID)
		if err != nil {
			log.Fatalf("Failed to list documents: %v", err)
		}
		for _, doc := range docs {
			if err := docRepo.Delete(ctx, doc.ID); err != nil {
				log.Fatalf("Failed to delete document %s: %v", doc.ID, err)
			}
		}
		log.Printf("🧹 Deleted %d documents", len(docs))
		return
	}

	for _, sample := range sampleOutlines() {
		doc, err := seedOutline(ctx, docService, *userID, sample)
		if err != nil {
			log.Printf("❌ Failed to seed %q: %v", sample.text, err)
			continue
		}
		log.Printf("✅ Created %q (ID: %s)", sample.text, doc.ID)
	}

	log.Println("🎉 Seeding complete!")
}

// seedOutline creates a document and fills it with one reconciliation
func seedOutline(ctx context.Context, docService outlineSvc.DocumentService, userID string, root seedNode) (*models.Document, error) {
	doc, err := docService.CreateDocument(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		RootItem: doc.RootID(),
		Items:    make(map[string]models.SnapshotNode),
	}
	addSeedNode(snapshot, doc.RootID(), 0, root)

	if _, err := docService.ReconcileOutline(ctx, userID, doc.ID, snapshot); err != nil {
		return nil, err
	}
	return doc, nil
}

func addSeedNode(snapshot *models.Snapshot, clientID string, order int, node seedNode) {
	text := node.text
	children := make([]string, 0, len(node.children))
	for i, child := range node.children {
		childID := uuid.NewString()
		children = append(children, childID)
		addSeedNode(snapshot, childID, i, child)
	}
	snapshot.Items[clientID] = models.SnapshotNode{
		ItemID:     clientID,
		ChildOrder: int32(order),
		Children:   children,
		ItemText:   &text,
		Styles:     node.styles,
	}
}

func sampleOutlines() []seedNode {
	heading := []models.StyleEdit{{Property: "font-weight", ValueNumber: int32Ptr(700)}}
	accent := []models.StyleEdit{{Property: "color", ValueString: strPtr("#b5452a")}}

	return []seedNode{
		{
			text: "Getting Started",
			children: []seedNode{
				{text: "Every line is an item", styles: heading, children: []seedNode{
					{text: "Press Tab to indent"},
					{text: "Press Shift+Tab to outdent"},
				}},
				{text: "Collapse a branch to hide its children"},
				{text: "Share a document by making it public", styles: accent},
			},
		},
		{
			text: "Reading List",
			children: []seedNode{
				{text: "Fiction", styles: heading, children: []seedNode{
					{text: "The Left Hand of Darkness"},
					{text: "Piranesi"},
				}},
				{text: "Non-fiction", styles: heading, children: []seedNode{
					{text: "The Design of Everyday Things"},
				}},
			},
		},
	}
}

func int32Ptr(v int32) *int32 { return &v }

func strPtr(s string) *string { return &s }
