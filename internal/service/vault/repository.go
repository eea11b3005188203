package vault

import (
	"context"
	"log/slog"
	"strings"

	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/repositories"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/storage"
)

type repositoryService struct {
	repoRepo  vaultRepo.RepositoryRepository
	txManager repositories.TransactionManager
	cascade   *cascade
	logger    *slog.Logger
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	blobs storage.BlobStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) svc.RepositoryService {
	return &repositoryService{
		repoRepo:  repoRepo,
		txManager: txManager,
		cascade: &cascade{
			folderRepo: folderRepo,
			assetRepo:  assetRepo,
			blobs:      blobs,
			logger:     logger,
		},
		logger: logger,
	}
}

// CreateRepository creates a new repository
func (s *repositoryService) CreateRepository(ctx context.Context, req *svc.CreateRepositoryRequest) (*models.Repository, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateCreateRepository(req); err != nil {
		return nil, err
	}

	repo := &models.Repository{
		WorkspaceID: req.WorkspaceID,
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.repoRepo.Create(ctx, repo); err != nil {
		return nil, err
	}

	s.logger.Info("repository created",
		"id", repo.ID,
		"name", repo.Name,
		"workspace_id", repo.WorkspaceID,
	)
	return repo, nil
}

// GetRepository retrieves a repository
func (s *repositoryService) GetRepository(ctx context.Context, id string) (*models.Repository, error) {
	return s.repoRepo.GetByID(ctx, id)
}

// ListRepositories lists a workspace's repositories
func (s *repositoryService) ListRepositories(ctx context.Context, workspaceID string) ([]models.Repository, error) {
	return s.repoRepo.List(ctx, workspaceID)
}

// UpdateRepository updates name, description or visibility
func (s *repositoryService) UpdateRepository(ctx context.Context, id string, req *svc.UpdateRepositoryRequest) (*models.Repository, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateUpdateRepository(req); err != nil {
		return nil, err
	}

	repo, err := s.repoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		repo.Name = *req.Name
	}
	if req.Description != nil {
		repo.Description = clearable(*req.Description)
	}
	if req.IsPublic != nil {
		repo.IsPublic = *req.IsPublic
	}

	if err := s.repoRepo.Update(ctx, repo); err != nil {
		return nil, err
	}

	s.logger.Info("repository updated", "id", repo.ID, "name", repo.Name, "is_public", repo.IsPublic)
	return repo, nil
}

// DeleteRepository deletes every asset, then every folder bottom-up, then the
// repository, in one transaction. Blobs are removed after commit.
func (s *repositoryService) DeleteRepository(ctx context.Context, id string) error {
	repo, err := s.repoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var paths []string
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folders, assets, err := s.cascade.everything(txCtx, id)
		if err != nil {
			return err
		}
		paths, err = s.cascade.deleteRecords(txCtx, folders, assets)
		if err != nil {
			return err
		}
		return s.repoRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.cascade.deleteBlobs(ctx, paths)

	s.logger.Info("repository deleted",
		"id", id,
		"name", repo.Name,
		"assets", len(paths),
	)
	return nil
}
