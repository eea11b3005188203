package memory

import (
	"context"
	"fmt"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
)

type assetRecord = models.Asset

// AssetRepository implements vaultRepo.AssetRepository in memory
type AssetRepository struct {
	store *Store
}

// NewAssetRepository creates an asset store view
func NewAssetRepository(store *Store) vaultRepo.AssetRepository {
	return &AssetRepository{store: store}
}

func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetCreate); err != nil {
		return err
	}

	if _, ok := s.repos[asset.RepositoryID]; !ok {
		return fmt.Errorf("repository %s: %w", asset.RepositoryID, domain.ErrNotFound)
	}
	if asset.FolderID != nil {
		if _, ok := s.folders[*asset.FolderID]; !ok {
			return fmt.Errorf("folder %s: %w", *asset.FolderID, domain.ErrNotFound)
		}
	}

	if asset.ID == "" {
		asset.ID = newID()
	}
	now := s.now()
	asset.CreatedAt, asset.UpdatedAt = now, now
	s.assets[asset.ID] = &row[assetRecord]{seq: s.nextSeq(), data: detachAsset(*asset)}
	return nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	asset := detachAsset(existing.data)
	return &asset, nil
}

func (r *AssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetUpdate); err != nil {
		return err
	}

	existing, ok := s.assets[asset.ID]
	if !ok {
		return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrNotFound)
	}
	if _, ok := s.repos[asset.RepositoryID]; !ok {
		return fmt.Errorf("repository %s: %w", asset.RepositoryID, domain.ErrNotFound)
	}
	if asset.FolderID != nil {
		if _, ok := s.folders[*asset.FolderID]; !ok {
			return fmt.Errorf("folder %s: %w", *asset.FolderID, domain.ErrNotFound)
		}
	}

	updated := detachAsset(*asset)
	updated.CreatedAt = existing.data.CreatedAt
	updated.UpdatedAt = s.now()
	existing.data = updated
	asset.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetDelete); err != nil {
		return err
	}

	if _, ok := s.assets[id]; !ok {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	delete(s.assets, id)
	return nil
}

func (r *AssetRepository) ListByFolder(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetList); err != nil {
		return nil, err
	}

	return r.copies(func(a assetRecord) bool {
		return a.RepositoryID == repositoryID && models.SameParent(a.FolderID, folderID)
	}), nil
}

func (r *AssetRepository) ListByRepository(ctx context.Context, repositoryID string) ([]models.Asset, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetList); err != nil {
		return nil, err
	}

	return r.copies(func(a assetRecord) bool {
		return a.RepositoryID == repositoryID
	}), nil
}

func (r *AssetRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Asset, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetList); err != nil {
		return nil, err
	}

	return r.copies(func(a assetRecord) bool {
		repo, ok := s.repos[a.RepositoryID]
		return ok && repo.data.WorkspaceID == workspaceID
	}), nil
}

func (r *AssetRepository) ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetReassign); err != nil {
		return 0, err
	}
	if _, ok := s.repos[toRepositoryID]; !ok {
		return 0, fmt.Errorf("repository %s: %w", toRepositoryID, domain.ErrNotFound)
	}

	count := 0
	now := s.now()
	for _, a := range s.assets {
		if a.data.RepositoryID == fromRepositoryID {
			a.data.RepositoryID = toRepositoryID
			a.data.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (r *AssetRepository) SetFolder(ctx context.Context, ids []string, folderID *string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAssetSetFolder); err != nil {
		return err
	}

	if folderID != nil {
		if _, ok := s.folders[*folderID]; !ok {
			return fmt.Errorf("folder %s: %w", *folderID, domain.ErrNotFound)
		}
	}
	for _, id := range ids {
		if _, ok := s.assets[id]; !ok {
			return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
	}
	now := s.now()
	for _, id := range ids {
		a := s.assets[id]
		a.data.FolderID = cloneStr(folderID)
		a.data.UpdatedAt = now
	}
	return nil
}

func (r *AssetRepository) NextPosition(ctx context.Context, repositoryID string, folderID *string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 0
	for _, a := range s.assets {
		if a.data.RepositoryID == repositoryID && models.SameParent(a.data.FolderID, folderID) && a.data.Position >= next {
			next = a.data.Position + 1
		}
	}
	return next, nil
}

func (r *AssetRepository) copies(keep func(assetRecord) bool) []models.Asset {
	out := sortedRows(r.store.assets, keep)
	for i := range out {
		out[i] = detachAsset(out[i])
	}
	return out
}

// detachAsset deep-copies the mutable parts of an asset
func detachAsset(a models.Asset) models.Asset {
	a.FolderID = cloneStr(a.FolderID)
	if a.Tags != nil {
		a.Tags = append([]string(nil), a.Tags...)
	}
	a.Metadata = a.CloneMetadata()
	return a
}
