package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seriatim/internal/auth"
	"seriatim/internal/config"
	"seriatim/internal/handler"
	"seriatim/internal/middleware"
	"seriatim/internal/repository/postgres"
	postgresOutline "seriatim/internal/repository/postgres/outline"
	serviceAuth "seriatim/internal/service/auth"
	serviceOutline "seriatim/internal/service/outline"
	"seriatim/internal/session"
	"seriatim/internal/styles"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", postgres.MaxConns,
		"min_conns", postgres.MinConns,
	)

	if cfg.AutoMigrate {
		applied, err := postgres.ApplyMigrations(ctx, pool, cfg.TablePrefix)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("migrations applied", "count", len(applied), "versions", applied)
	}

	healthChecks := map[string]handler.HealthCheckFunc{
		"postgres": pool.Ping,
	}

	// Sessions are optional; without Redis tokens are still verified but
	// logins are not tracked and cannot be revoked.
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionKeep)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		healthChecks["redis"] = redisStore.Ping
		logger.Info("session store connected", "keep", cfg.SessionKeep)
	} else {
		logger.Warn("REDIS_URL not set, session tracking disabled")
	}

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

	docService := serviceOutline.NewDocumentService(
		docRepo,
		itemRepo,
		styleRepo,
		categoryRepo,
		txManager,
		authorizer,
		reconciler,
		replicator,
		logger,
	)
	categoryService := serviceOutline.NewCategoryService(categoryRepo, authorizer, logger)

	docHandler := handler.NewDocumentHandler(docService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	healthHandler := handler.NewHealthHandler(healthChecks, logger)

	logger.Info("services initialized",
		"max_tree_depth", limits.MaxDepth,
		"max_tree_nodes", limits.MaxNodes,
	)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/rename", docHandler.RenameDocument)
	mux.HandleFunc("POST /api/documents/{id}/edit", docHandler.EditOutline)
	mux.HandleFunc("POST /api/documents/{id}/edit_text", docHandler.EditText)
	mux.HandleFunc("POST /api/documents/{id}/copy", docHandler.CopyDocument)
	mux.HandleFunc("POST /api/documents/{id}/public_viewability", docHandler.SetPublicViewability)

	// Category routes
	mux.HandleFunc("GET /api/documents/{id}/categories", categoryHandler.ListCategories)
	mux.HandleFunc("POST /api/documents/{id}/categories", categoryHandler.AddCategory)
	mux.HandleFunc("DELETE /api/documents/{id}/categories/{name}", categoryHandler.RemoveCategory)

	// Session routes
	if sessions != nil {
		sessionHandler := handler.NewSessionHandler(sessions, logger)
		mux.HandleFunc("GET /api/users/me/sessions", sessionHandler.ListSessions)
		mux.HandleFunc("DELETE /api/users/me/sessions/{id}", sessionHandler.RevokeSession)
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, sessions, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
