package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder under a parent (nil = repository root)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*vault.Folder, error)

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, id string) (*vault.Folder, error)

	// UpdateFolder renames a folder or changes its description.
	// Moves go through MoveService.
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*vault.Folder, error)

	// DeleteFolder deletes a folder and everything nested in it
	DeleteFolder(ctx context.Context, id string) error

	// ListByRepository lists every folder of a repository (flat)
	ListByRepository(ctx context.Context, repositoryID string) ([]vault.Folder, error)

	// ListByWorkspace lists every folder of a workspace (flat)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]vault.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	RepositoryID string  `json:"repository_id"`
	ParentID     *string `json:"parent_id,omitempty"` // null for root
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
