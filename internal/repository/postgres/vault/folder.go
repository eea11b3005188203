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

const folderColumns = `id, repository_id, parent_id, name, description, position, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) vaultRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (repository_id, parent_id, name, description, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.RepositoryID,
		folder.ParentID,
		folder.Name,
		folder.Description,
		folder.Position,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("repository or parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET repository_id = $1, parent_id = $2, name = $3, description = $4, position = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.RepositoryID,
		folder.ParentID,
		folder.Name,
		folder.Description,
		folder.Position,
		folder.ID,
	).Scan(&folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("repository or parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}

// Delete deletes a single folder
// Returns error if folder still has children or assets (FK constraint)
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with children or assets: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, repositoryID string, folderID *string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE repository_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY position, created_at
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, repositoryID, folderID)
}

// ListByRepository retrieves all folders in a repository
func (r *PostgresFolderRepository) ListByRepository(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE repository_id = $1
		ORDER BY created_at
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, repositoryID)
}

// ListByWorkspace retrieves all folders of a workspace's repositories
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.repository_id, f.parent_id, f.name, f.description, f.position, f.created_at, f.updated_at
		FROM %s f
		JOIN %s r ON r.id = f.repository_id
		WHERE r.workspace_id = $1
		ORDER BY f.created_at
	`, r.tables.Folders, r.tables.Repositories)

	return r.list(ctx, query, workspaceID)
}

// ReassignRepository moves every folder of one repository to another
func (r *PostgresFolderRepository) ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET repository_id = $1, updated_at = NOW()
		WHERE repository_id = $2
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, toRepositoryID, fromRepositoryID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("repository %s: %w", toRepositoryID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("reassign folders: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// SetParent re-parents the given folders
func (r *PostgresFolderRepository) SetParent(ctx context.Context, ids []string, parentID *string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET parent_id = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentID, ids)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("set folder parent: %w", err)
	}
	if int(result.RowsAffected()) != len(ids) {
		return fmt.Errorf("set folder parent: %d of %d folders: %w", result.RowsAffected(), len(ids), domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.RepositoryID,
		&folder.ParentID,
		&folder.Name,
		&folder.Description,
		&folder.Position,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
