package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// RepositoryService handles repository business logic
type RepositoryService interface {
	CreateRepository(ctx context.Context, req *CreateRepositoryRequest) (*vault.Repository, error)
	GetRepository(ctx context.Context, id string) (*vault.Repository, error)
	ListRepositories(ctx context.Context, workspaceID string) ([]vault.Repository, error)
	UpdateRepository(ctx context.Context, id string, req *UpdateRepositoryRequest) (*vault.Repository, error)

	// DeleteRepository deletes a repository with every folder and asset it owns
	DeleteRepository(ctx context.Context, id string) error
}

// CreateRepositoryRequest represents a repository creation request
type CreateRepositoryRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	OwnerID     string  `json:"-"` // set from auth context
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// UpdateRepositoryRequest represents a repository update request
type UpdateRepositoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}
