package auth

import (
	"context"
	"errors"
	"fmt"

	"assetvault/internal/domain"
	vaultRepo "assetvault/internal/domain/repositories/vault"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// The repository owner may read and write everything in it; anyone may read
// a public repository.
type OwnerBasedAuthorizer struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
	}
}

func (a *OwnerBasedAuthorizer) check(ctx context.Context, userID, repositoryID string, write bool) error {
	repo, err := a.repoRepo.GetByID(ctx, repositoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("check repository access: %w", err)
	}
	if repo.OwnerID == userID || (!write && repo.IsPublic) {
		return nil
	}
	return fmt.Errorf("access denied to repository %s: %w", repositoryID, domain.ErrForbidden)
}

// CanReadRepository checks the user owns the repository or it is public
func (a *OwnerBasedAuthorizer) CanReadRepository(ctx context.Context, userID, repositoryID string) error {
	return a.check(ctx, userID, repositoryID, false)
}

// CanWriteRepository checks the user owns the repository
func (a *OwnerBasedAuthorizer) CanWriteRepository(ctx context.Context, userID, repositoryID string) error {
	return a.check(ctx, userID, repositoryID, true)
}

// CanReadFolder checks read access via the folder's repository
func (a *OwnerBasedAuthorizer) CanReadFolder(ctx context.Context, userID, folderID string) error {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("get folder for auth: %w", err)
	}
	return a.check(ctx, userID, folder.RepositoryID, false)
}

// CanWriteFolder checks write access via the folder's repository
func (a *OwnerBasedAuthorizer) CanWriteFolder(ctx context.Context, userID, folderID string) error {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("get folder for auth: %w", err)
	}
	return a.check(ctx, userID, folder.RepositoryID, true)
}

// CanReadAsset checks read access via the asset's repository
func (a *OwnerBasedAuthorizer) CanReadAsset(ctx context.Context, userID, assetID string) error {
	asset, err := a.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("get asset for auth: %w", err)
	}
	return a.check(ctx, userID, asset.RepositoryID, false)
}

// CanWriteAsset checks write access via the asset's repository
func (a *OwnerBasedAuthorizer) CanWriteAsset(ctx context.Context, userID, assetID string) error {
	asset, err := a.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("get asset for auth: %w", err)
	}
	return a.check(ctx, userID, asset.RepositoryID, true)
}
