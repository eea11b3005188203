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

const repositoryColumns = `id, workspace_id, owner_id, name, description, is_public,
	view_count, fork_count, like_count, forked_from_id, created_at, updated_at`

// PostgresRepositoryRepository implements the RepositoryRepository interface
type PostgresRepositoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewRepositoryRepository creates a new repository repository
func NewRepositoryRepository(config *postgres.RepositoryConfig) vaultRepo.RepositoryRepository {
	return &PostgresRepositoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new repository
func (r *PostgresRepositoryRepository) Create(ctx context.Context, repo *models.Repository) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, owner_id, name, description, is_public, forked_from_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Repositories)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		repo.WorkspaceID,
		repo.OwnerID,
		repo.Name,
		repo.Description,
		repo.IsPublic,
		repo.ForkedFromID,
	).Scan(&repo.ID, &repo.CreatedAt, &repo.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			existingID, queryErr := r.getExistingRepositoryID(ctx, repo.WorkspaceID, repo.Name)
			if queryErr != nil {
				return fmt.Errorf("repository '%s' already exists: %w", repo.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("repository '%s' already exists", repo.Name),
				ResourceType: "repository",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create repository: %w", err)
	}

	return nil
}

// GetByID retrieves a repository by ID
func (r *PostgresRepositoryRepository) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, repositoryColumns, r.tables.Repositories)

	executor := postgres.GetExecutor(ctx, r.pool)
	repo, err := scanRepository(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get repository: %w", err)
	}

	return repo, nil
}

// List retrieves all repositories in a workspace, ordered by updated_at DESC
func (r *PostgresRepositoryRepository) List(ctx context.Context, workspaceID string) ([]models.Repository, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE workspace_id = $1
		ORDER BY updated_at DESC
	`, repositoryColumns, r.tables.Repositories)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	repos := []models.Repository{}
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// Update updates a repository's name, description and visibility
func (r *PostgresRepositoryRepository) Update(ctx context.Context, repo *models.Repository) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, is_public = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING %s
	`, r.tables.Repositories, repositoryColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	updated, err := scanRepository(executor.QueryRow(ctx, query,
		repo.Name,
		repo.Description,
		repo.IsPublic,
		repo.ID,
	))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("repository %s: %w", repo.ID, domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("repository name '%s' already exists", repo.Name),
				ResourceType: "repository",
			}
		}
		return fmt.Errorf("update repository: %w", err)
	}

	*repo = *updated
	return nil
}

// Delete deletes a repository
// Returns error if the repository still owns folders or assets (FK constraint)
func (r *PostgresRepositoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Repositories)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete repository with folders or assets: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete repository: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// RecordFork increments the fork counter
func (r *PostgresRepositoryRepository) RecordFork(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET fork_count = fork_count + 1 WHERE id = $1`, r.tables.Repositories)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("record fork: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepositoryRepository) getExistingRepositoryID(ctx context.Context, workspaceID, name string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE workspace_id = $1 AND name = $2`, r.tables.Repositories)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, workspaceID, name).Scan(&id); err != nil {
		return "", fmt.Errorf("get existing repository ID: %w", err)
	}
	return id, nil
}

func scanRepository(row rowScanner) (*models.Repository, error) {
	var repo models.Repository
	err := row.Scan(
		&repo.ID,
		&repo.WorkspaceID,
		&repo.OwnerID,
		&repo.Name,
		&repo.Description,
		&repo.IsPublic,
		&repo.ViewCount,
		&repo.ForkCount,
		&repo.LikeCount,
		&repo.ForkedFromID,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
