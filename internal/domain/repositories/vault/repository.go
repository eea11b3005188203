package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// RepositoryRepository defines data access operations for asset repositories
type RepositoryRepository interface {
	// Create creates a new repository and returns it with generated ID and timestamps
	Create(ctx context.Context, repo *vault.Repository) error

	// GetByID retrieves a repository by ID
	GetByID(ctx context.Context, id string) (*vault.Repository, error)

	// List retrieves all repositories in a workspace, ordered by updated_at DESC
	List(ctx context.Context, workspaceID string) ([]vault.Repository, error)

	// Update updates name, description and visibility
	Update(ctx context.Context, repo *vault.Repository) error

	// Delete removes a repository record
	Delete(ctx context.Context, id string) error

	// RecordFork increments the fork counter of a repository
	RecordFork(ctx context.Context, id string) error
}
