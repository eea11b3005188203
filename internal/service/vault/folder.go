package vault

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/repositories"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/storage"
)

type folderService struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	txManager  repositories.TransactionManager
	cascade    *cascade
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) svc.FolderService {
	return &folderService{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		cascade: &cascade{
			folderRepo: folderRepo,
			assetRepo:  assetRepo,
			blobs:      blobs,
			logger:     logger,
		},
		logger: logger,
	}
}

// CreateFolder creates a new folder at the end of its siblings
func (s *folderService) CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*models.Folder, error) {
	req.ParentID = normalizeID(req.ParentID)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}

	if _, err := s.repoRepo.GetByID(ctx, req.RepositoryID); err != nil {
		return nil, fmt.Errorf("invalid repository: %w", err)
	}
	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent folder: %w", err)
		}
		if parent.RepositoryID != req.RepositoryID {
			return nil, domain.NewValidationError("parent folder belongs to another repository")
		}
	}

	siblings, err := s.folderRepo.ListChildren(ctx, req.RepositoryID, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	position := 0
	for _, sibling := range siblings {
		if sibling.Name == req.Name {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", req.Name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
		if sibling.Position >= position {
			position = sibling.Position + 1
		}
	}

	folder := &models.Folder{
		RepositoryID: req.RepositoryID,
		ParentID:     req.ParentID,
		Name:         req.Name,
		Description:  req.Description,
		Position:     position,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"repository_id", folder.RepositoryID,
		"parent_id", folder.ParentID,
	)
	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// UpdateFolder renames a folder or changes its description
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *svc.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateUpdateFolder(req); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != folder.Name {
		siblings, err := s.folderRepo.ListChildren(ctx, folder.RepositoryID, folder.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate names: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.ID != folder.ID && sibling.Name == *req.Name {
				return nil, &domain.ConflictError{
					Message:      fmt.Sprintf("a folder named %q already exists in this location", *req.Name),
					ResourceType: "folder",
					ResourceID:   sibling.ID,
				}
			}
		}
		folder.Name = *req.Name
	}
	if req.Description != nil {
		folder.Description = clearable(*req.Description)
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// DeleteFolder deletes a folder with all nested folders and assets.
// The repository's folder list is fetched once; records are removed
// bottom-up inside a transaction, blobs after commit.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var paths []string
	var folderCount int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, assets, err := s.cascade.subtree(txCtx, folder)
		if err != nil {
			return err
		}
		folderCount = len(folders)
		paths, err = s.cascade.deleteRecords(txCtx, folders, assets)
		return err
	})
	if err != nil {
		return err
	}

	s.cascade.deleteBlobs(ctx, paths)

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"repository_id", folder.RepositoryID,
		"folders", folderCount,
		"assets", len(paths),
	)
	return nil
}

// ListByRepository lists every folder of a repository
func (s *folderService) ListByRepository(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	return s.folderRepo.ListByRepository(ctx, repositoryID)
}

// ListByWorkspace lists every folder of a workspace
func (s *folderService) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	return s.folderRepo.ListByWorkspace(ctx, workspaceID)
}
