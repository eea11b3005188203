package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/storage"
)

type assetService struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
	blobs      storage.BlobStore
	logger     *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) svc.AssetService {
	return &assetService{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		blobs:      blobs,
		logger:     logger,
	}
}

// CreateAsset records an uploaded blob at the end of its folder
func (s *assetService) CreateAsset(ctx context.Context, req *svc.CreateAssetRequest) (*models.Asset, error) {
	req.FolderID = normalizeID(req.FolderID)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCreateAsset(req); err != nil {
		return nil, err
	}

	if _, err := s.repoRepo.GetByID(ctx, req.RepositoryID); err != nil {
		return nil, fmt.Errorf("invalid repository: %w", err)
	}
	if err := s.checkFolder(ctx, req.RepositoryID, req.FolderID); err != nil {
		return nil, err
	}

	position, err := s.assetRepo.NextPosition(ctx, req.RepositoryID, req.FolderID)
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]any, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata[models.MetadataName] = req.Name

	asset := &models.Asset{
		RepositoryID: req.RepositoryID,
		FolderID:     req.FolderID,
		Position:     position,
		StoragePath:  req.StoragePath,
		Width:        req.Width,
		Height:       req.Height,
		Tags:         req.Tags,
		Metadata:     metadata,
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("asset created",
		"id", asset.ID,
		"name", req.Name,
		"repository_id", asset.RepositoryID,
		"folder_id", asset.FolderID,
	)
	return asset, nil
}

// GetAsset retrieves an asset
func (s *assetService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.assetRepo.GetByID(ctx, id)
}

// UpdateAsset renames an asset or replaces its tags
func (s *assetService) UpdateAsset(ctx context.Context, id string, req *svc.UpdateAssetRequest) (*models.Asset, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateUpdateAsset(req); err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		asset.Metadata = asset.CloneMetadata()
		if asset.Metadata == nil {
			asset.Metadata = map[string]any{}
		}
		asset.Metadata[models.MetadataName] = *req.Name
	}
	if req.Tags != nil {
		asset.Tags = *req.Tags
	}

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("asset updated", "id", asset.ID, "name", asset.Name())
	return asset, nil
}

// DeleteAsset deletes the record, then its blob. A blob failure is logged only.
func (s *assetService) DeleteAsset(ctx context.Context, id string) error {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assetRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, asset.StoragePath); err != nil {
		s.logger.Warn("failed to delete blob", "asset_id", id, "storage_path", asset.StoragePath, "error", err)
	}

	s.logger.Info("asset deleted", "id", id, "repository_id", asset.RepositoryID)
	return nil
}

func (s *assetService) ListByFolder(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error) {
	return s.assetRepo.ListByFolder(ctx, repositoryID, normalizeID(folderID))
}

func (s *assetService) ListByRepository(ctx context.Context, repositoryID string) ([]models.Asset, error) {
	return s.assetRepo.ListByRepository(ctx, repositoryID)
}

func (s *assetService) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Asset, error) {
	return s.assetRepo.ListByWorkspace(ctx, workspaceID)
}

// Image returns the stored bytes of an asset
func (s *assetService) Image(ctx context.Context, id string) ([]byte, error) {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, asset.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("image for asset %s not found", id)}
		}
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// checkFolder verifies a folder exists inside the given repository (nil = root)
func (s *assetService) checkFolder(ctx context.Context, repositoryID string, folderID *string) error {
	if folderID == nil {
		return nil
	}
	folder, err := s.folderRepo.GetByID(ctx, *folderID)
	if err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	if folder.RepositoryID != repositoryID {
		return domain.NewValidationError("folder belongs to another repository")
	}
	return nil
}
