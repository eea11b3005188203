package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder and fills in its ID and timestamps
	Create(ctx context.Context, folder *vault.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*vault.Folder, error)

	// Update persists name, description, parent, position and repository
	Update(ctx context.Context, folder *vault.Folder) error

	// Delete deletes a single folder record (no cascade)
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders (folderID nil = repository root)
	ListChildren(ctx context.Context, repositoryID string, folderID *string) ([]vault.Folder, error)

	// ListByRepository retrieves all folders in a repository (flat list)
	ListByRepository(ctx context.Context, repositoryID string) ([]vault.Folder, error)

	// ListByWorkspace retrieves all folders of every repository in a workspace (flat list)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]vault.Folder, error)

	// ReassignRepository moves every folder of one repository to another, keeping parents
	ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error)

	// SetParent re-parents the given folders
	SetParent(ctx context.Context, ids []string, parentID *string) error
}
