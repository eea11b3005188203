package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetvault/internal/auth"
	"assetvault/internal/config"
	"assetvault/internal/handler"
	"assetvault/internal/middleware"
	"assetvault/internal/repository/postgres"
	postgresVault "assetvault/internal/repository/postgres/vault"
	serviceAuth "assetvault/internal/service/auth"
	serviceVault "assetvault/internal/service/vault"
	"assetvault/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, cfg.MaxConns, cfg.MinConns)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.Environment == "dev" {
		if err := postgres.RunSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	blobs, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create object store client: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repoRepo := postgresVault.NewRepositoryRepository(repoConfig)
	folderRepo := postgresVault.NewFolderRepository(repoConfig)
	assetRepo := postgresVault.NewAssetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	repoService := serviceVault.NewRepositoryService(repoRepo, folderRepo, assetRepo, blobs, txManager, logger)
	folderService := serviceVault.NewFolderService(repoRepo, folderRepo, assetRepo, blobs, txManager, logger)
	assetService := serviceVault.NewAssetService(repoRepo, folderRepo, assetRepo, blobs, logger)
	treeService := serviceVault.NewTreeService(repoRepo, folderRepo, assetRepo, logger)
	copyService := serviceVault.NewCopyService(repoRepo, folderRepo, assetRepo, blobs, logger)
	moveService := serviceVault.NewMoveService(repoRepo, folderRepo, assetRepo, txManager, logger)
	authorizer := serviceAuth.NewOwnerBasedAuthorizer(repoRepo, folderRepo, assetRepo)

	// Create handlers
	repoHandler := handler.NewRepositoryHandler(repoService, treeService, folderService, assetService, copyService, authorizer, logger)
	folderHandler := handler.NewFolderHandler(folderService, copyService, authorizer, logger)
	assetHandler := handler.NewAssetHandler(assetService, copyService, authorizer, logger)
	moveHandler := handler.NewMoveHandler(moveService, authorizer, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Workspace-wide flat lists
	mux.HandleFunc("GET /api/workspaces/{id}/repositories", repoHandler.ListWorkspaceRepositories)
	mux.HandleFunc("GET /api/workspaces/{id}/folders", repoHandler.ListWorkspaceFolders)
	mux.HandleFunc("GET /api/workspaces/{id}/assets", repoHandler.ListWorkspaceAssets)

	// Repository routes
	mux.HandleFunc("POST /api/repositories", repoHandler.CreateRepository)
	mux.HandleFunc("GET /api/repositories/{id}", repoHandler.GetRepository)
	mux.HandleFunc("PATCH /api/repositories/{id}", repoHandler.UpdateRepository)
	mux.HandleFunc("DELETE /api/repositories/{id}", repoHandler.DeleteRepository)
	mux.HandleFunc("GET /api/repositories/{id}/tree", repoHandler.GetTree)
	mux.HandleFunc("GET /api/repositories/{id}/folders", repoHandler.ListFolders)
	mux.HandleFunc("GET /api/repositories/{id}/assets", repoHandler.ListAssets)
	mux.HandleFunc("POST /api/repositories/{id}/fork", repoHandler.ForkRepository)
	mux.HandleFunc("POST /api/repositories/{id}/copy-as-folder", repoHandler.CopyAsFolder)
	mux.HandleFunc("POST /api/repositories/{id}/move-into", repoHandler.MoveInto)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/folders/copy", folderHandler.CopyFolders) // Must come before {id} routes
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/fork", folderHandler.ForkFolder)

	// Asset routes
	mux.HandleFunc("POST /api/assets", assetHandler.CreateAsset)
	mux.HandleFunc("POST /api/assets/copy", assetHandler.CopyAssets)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.GetAsset)
	mux.HandleFunc("GET /api/assets/{id}/image", assetHandler.GetImage)
	mux.HandleFunc("PATCH /api/assets/{id}", assetHandler.UpdateAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.DeleteAsset)

	// Drag-and-drop moves
	mux.HandleFunc("POST /api/moves", moveHandler.Drop)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLog → Recovery → Auth → Routes
	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: every request acts as the dev user (NEVER use in production!)", "user_id", cfg.DevUserID)
		h = middleware.DevAuth(cfg.DevUserID)(h)
	} else {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.Auth(jwtVerifier, logger)(h)
	}
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLog(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // recursive copies can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
