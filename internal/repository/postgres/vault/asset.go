package vault

import (
	"context"
	"fmt"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	"assetvault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

const assetColumns = `id, repository_id, folder_id, position, storage_path, width, height, tags, metadata, created_at, updated_at`

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) vaultRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (repository_id, folder_id, position, storage_path, width, height, tags, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.RepositoryID,
		asset.FolderID,
		asset.Position,
		asset.StoragePath,
		asset.Width,
		asset.Height,
		tagsOrEmpty(asset.Tags),
		metadataOrEmpty(asset.Metadata),
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("repository or folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return asset, nil
}

// Update updates an asset
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET repository_id = $1, folder_id = $2, position = $3, tags = $4, metadata = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.RepositoryID,
		asset.FolderID,
		asset.Position,
		tagsOrEmpty(asset.Tags),
		metadataOrEmpty(asset.Metadata),
		asset.ID,
	).Scan(&asset.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrNotFound)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("repository or folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update asset: %w", err)
	}

	return nil
}

// Delete deletes an asset record
func (r *PostgresAssetRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByFolder lists assets directly inside a folder
func (r *PostgresAssetRepository) ListByFolder(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE repository_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY position, created_at
	`, assetColumns, r.tables.Assets)

	return r.list(ctx, query, repositoryID, folderID)
}

// ListByRepository retrieves all assets in a repository
func (r *PostgresAssetRepository) ListByRepository(ctx context.Context, repositoryID string) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE repository_id = $1
		ORDER BY created_at
	`, assetColumns, r.tables.Assets)

	return r.list(ctx, query, repositoryID)
}

// ListByWorkspace retrieves all assets of a workspace's repositories
func (r *PostgresAssetRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT a.id, a.repository_id, a.folder_id, a.position, a.storage_path, a.width, a.height,
			a.tags, a.metadata, a.created_at, a.updated_at
		FROM %s a
		JOIN %s r ON r.id = a.repository_id
		WHERE r.workspace_id = $1
		ORDER BY a.created_at
	`, r.tables.Assets, r.tables.Repositories)

	return r.list(ctx, query, workspaceID)
}

// ReassignRepository moves every asset of one repository to another
func (r *PostgresAssetRepository) ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET repository_id = $1, updated_at = NOW()
		WHERE repository_id = $2
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, toRepositoryID, fromRepositoryID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("repository %s: %w", toRepositoryID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("reassign assets: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// SetFolder moves the given assets into a folder
func (r *PostgresAssetRepository) SetFolder(ctx context.Context, ids []string, folderID *string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET folder_id = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID, ids)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("set asset folder: %w", err)
	}
	if int(result.RowsAffected()) != len(ids) {
		return fmt.Errorf("set asset folder: %d of %d assets: %w", result.RowsAffected(), len(ids), domain.ErrNotFound)
	}
	return nil
}

// NextPosition returns one past the highest position inside a folder
func (r *PostgresAssetRepository) NextPosition(ctx context.Context, repositoryID string, folderID *string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM %s
		WHERE repository_id = $1 AND folder_id IS NOT DISTINCT FROM $2
	`, r.tables.Assets)

	var next int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, repositoryID, folderID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next asset position: %w", err)
	}
	return next, nil
}

func (r *PostgresAssetRepository) list(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// scanAsset reads a row; pgx decodes JSONB into map[string]any and TEXT[] into []string
func scanAsset(row rowScanner) (*models.Asset, error) {
	var asset models.Asset
	err := row.Scan(
		&asset.ID,
		&asset.RepositoryID,
		&asset.FolderID,
		&asset.Position,
		&asset.StoragePath,
		&asset.Width,
		&asset.Height,
		&asset.Tags,
		&asset.Metadata,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func metadataOrEmpty(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}
