package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"assetvault/internal/config"
	"assetvault/internal/repository/postgres"
	postgresVault "assetvault/internal/repository/postgres/vault"
	"assetvault/internal/seed"
	serviceVault "assetvault/internal/service/vault"
	"assetvault/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture to load (default: built-in demo)")
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: --drop-tables is not allowed in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	fixture, baseDir, err := loadFixture(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, 4, 1)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if *dropTables {
		logger.Warn("dropping tables", "prefix", cfg.TablePrefix)
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}
	if err := postgres.RunSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready", "prefix", cfg.TablePrefix)
	if *schemaOnly {
		return
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

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repoRepo := postgresVault.NewRepositoryRepository(repoConfig)
	folderRepo := postgresVault.NewFolderRepository(repoConfig)
	assetRepo := postgresVault.NewAssetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	seeder := seed.NewSeeder(
		serviceVault.NewRepositoryService(repoRepo, folderRepo, assetRepo, blobs, txManager, logger),
		serviceVault.NewFolderService(repoRepo, folderRepo, assetRepo, blobs, txManager, logger),
		serviceVault.NewAssetService(repoRepo, folderRepo, assetRepo, blobs, logger),
		blobs,
		baseDir,
		logger,
	)

	stats, err := seeder.Apply(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("seeding complete",
		"repositories", stats.Repositories,
		"folders", stats.Folders,
		"assets", stats.Assets,
		"skipped", stats.Skipped,
	)
}

// loadFixture returns the fixture and the directory its asset files are relative to
func loadFixture(path string) (*seed.Fixture, string, error) {
	if path == "" {
		f, err := seed.DemoFixture()
		return f, ".", err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	f, err := seed.LoadFixture(file)
	return f, filepath.Dir(path), err
}
