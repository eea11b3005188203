package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunSchema creates tables if they don't exist.
// Folder and asset foreign keys do not cascade: deletes walk the tree
// explicitly so blobs can be cleaned up alongside their records.
func RunSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				workspace_id UUID NOT NULL,
				owner_id UUID NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				is_public BOOLEAN NOT NULL DEFAULT FALSE,
				view_count INTEGER NOT NULL DEFAULT 0,
				fork_count INTEGER NOT NULL DEFAULT 0,
				like_count INTEGER NOT NULL DEFAULT 0,
				forked_from_id UUID,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE(workspace_id, name)
			)`, tables.Repositories),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				repository_id UUID NOT NULL REFERENCES %s(id),
				parent_id UUID REFERENCES %s(id),
				name TEXT NOT NULL,
				description TEXT,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK (parent_id IS NULL OR parent_id <> id)
			)`, tables.Folders, tables.Repositories, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				repository_id UUID NOT NULL REFERENCES %s(id),
				folder_id UUID REFERENCES %s(id),
				position INTEGER NOT NULL DEFAULT 0,
				storage_path TEXT NOT NULL,
				width INTEGER NOT NULL DEFAULT 0,
				height INTEGER NOT NULL DEFAULT 0,
				tags TEXT[] NOT NULL DEFAULT '{}',
				metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Assets, tables.Repositories, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_repository_idx ON %s(repository_id)`, tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s(parent_id)`, tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_repository_idx ON %s(repository_id)`, tables.Assets, tables.Assets),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_idx ON %s(folder_id)`, tables.Assets, tables.Assets),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	return nil
}

// DropTables removes all tables (assets first, then folders, then repositories)
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Assets, tables.Folders, tables.Repositories} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
