package vault

import (
	"context"
	"fmt"
	"log/slog"

	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	"assetvault/internal/storage"
	"assetvault/internal/tree"
)

// cascade deletes folder subtrees explicitly: the record store refuses to
// delete a folder that still has children or assets.
type cascade struct {
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
	blobs      storage.BlobStore
	logger     *slog.Logger
}

// deleteRecords removes the given assets, then the folders in reverse order.
// folders must list parents before children. Returns the storage paths of
// the deleted assets.
func (c *cascade) deleteRecords(ctx context.Context, folders []*models.Folder, assets []models.Asset) ([]string, error) {
	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		if err := c.assetRepo.Delete(ctx, a.ID); err != nil {
			return paths, fmt.Errorf("delete asset %s: %w", a.ID, err)
		}
		paths = append(paths, a.StoragePath)
	}
	for i := len(folders) - 1; i >= 0; i-- {
		if err := c.folderRepo.Delete(ctx, folders[i].ID); err != nil {
			return paths, fmt.Errorf("delete folder %q: %w", folders[i].Name, err)
		}
		c.logger.Debug("deleted folder", "id", folders[i].ID, "name", folders[i].Name)
	}
	return paths, nil
}

// deleteBlobs removes objects best-effort once their records are gone
func (c *cascade) deleteBlobs(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := c.blobs.Delete(ctx, p); err != nil {
			c.logger.Warn("failed to delete blob", "storage_path", p, "error", err)
		}
	}
}

// subtree returns root followed by its descendants (parents first) and every
// asset inside them, from one flat fetch of the repository.
func (c *cascade) subtree(ctx context.Context, root *models.Folder) ([]*models.Folder, []models.Asset, error) {
	folders, err := c.folderRepo.ListByRepository(ctx, root.RepositoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list folders: %w", err)
	}
	assets, err := c.assetRepo.ListByRepository(ctx, root.RepositoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list assets: %w", err)
	}

	idx := tree.NewIndex(folders)
	ids := idx.SubtreeIDs(root.ID)
	ordered := append([]*models.Folder{root}, idx.Descendants(root.ID)...)

	var inside []models.Asset
	for _, a := range assets {
		if a.FolderID != nil && ids[*a.FolderID] {
			inside = append(inside, a)
		}
	}
	return ordered, inside, nil
}

// everything returns all folders of a repository (parents first) and all its assets
func (c *cascade) everything(ctx context.Context, repositoryID string) ([]*models.Folder, []models.Asset, error) {
	folders, err := c.folderRepo.ListByRepository(ctx, repositoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list folders: %w", err)
	}
	assets, err := c.assetRepo.ListByRepository(ctx, repositoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("list assets: %w", err)
	}

	idx := tree.NewIndex(folders)
	seen := make(map[string]bool, len(folders))
	ordered := make([]*models.Folder, 0, len(folders))
	for _, root := range idx.Children(nil) {
		ordered = append(ordered, root)
		seen[root.ID] = true
		for _, f := range idx.Descendants(root.ID) {
			ordered = append(ordered, f)
			seen[f.ID] = true
		}
	}
	// Folders caught in a parent loop are unreachable from any root
	for i := range folders {
		if !seen[folders[i].ID] {
			ordered = append(ordered, &folders[i])
		}
	}
	return ordered, assets, nil
}
