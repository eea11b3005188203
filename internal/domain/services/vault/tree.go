package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// TreeService builds folder/asset trees from flat records
type TreeService interface {
	// GetRepositoryTree builds the nested tree of a repository, sorted by position
	GetRepositoryTree(ctx context.Context, repositoryID string) (*vault.Tree, error)
}
