package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// AssetService handles asset business logic
type AssetService interface {
	// CreateAsset records an already uploaded blob as an asset
	CreateAsset(ctx context.Context, req *CreateAssetRequest) (*vault.Asset, error)
	GetAsset(ctx context.Context, id string) (*vault.Asset, error)

	// UpdateAsset renames an asset or replaces its tags
	UpdateAsset(ctx context.Context, id string, req *UpdateAssetRequest) (*vault.Asset, error)

	// DeleteAsset deletes the record, then its blob (best-effort)
	DeleteAsset(ctx context.Context, id string) error

	ListByFolder(ctx context.Context, repositoryID string, folderID *string) ([]vault.Asset, error)
	ListByRepository(ctx context.Context, repositoryID string) ([]vault.Asset, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]vault.Asset, error)

	// Image returns the stored bytes of an asset
	Image(ctx context.Context, id string) ([]byte, error)
}

// CreateAssetRequest represents an asset creation request
type CreateAssetRequest struct {
	RepositoryID string         `json:"repository_id"`
	FolderID     *string        `json:"folder_id,omitempty"`
	Name         string         `json:"name"`
	StoragePath  string         `json:"storage_path"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Tags         []string       `json:"tags,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// UpdateAssetRequest represents an asset update request
type UpdateAssetRequest struct {
	Name *string   `json:"name,omitempty"`
	Tags *[]string `json:"tags,omitempty"`
}
