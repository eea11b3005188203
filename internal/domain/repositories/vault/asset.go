package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// AssetRepository defines data access operations for assets
type AssetRepository interface {
	// Create creates a new asset and fills in its ID and timestamps
	Create(ctx context.Context, asset *vault.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id string) (*vault.Asset, error)

	// Update persists folder, repository, position, tags and metadata
	Update(ctx context.Context, asset *vault.Asset) error

	// Delete deletes an asset record
	Delete(ctx context.Context, id string) error

	// ListByFolder lists assets directly inside a folder (folderID nil = repository root)
	ListByFolder(ctx context.Context, repositoryID string, folderID *string) ([]vault.Asset, error)

	// ListByRepository retrieves all assets in a repository (flat list)
	ListByRepository(ctx context.Context, repositoryID string) ([]vault.Asset, error)

	// ListByWorkspace retrieves all assets of every repository in a workspace (flat list)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]vault.Asset, error)

	// ReassignRepository moves every asset of one repository to another, keeping folders
	ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error)

	// SetFolder moves the given assets into a folder
	SetFolder(ctx context.Context, ids []string, folderID *string) error

	// NextPosition returns the next free position inside a folder
	NextPosition(ctx context.Context, repositoryID string, folderID *string) (int, error)
}
