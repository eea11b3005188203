package vault

import (
	"context"
	"fmt"
	"log/slog"

	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/tree"
)

type treeService struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	logger *slog.Logger,
) svc.TreeService {
	return &treeService{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		logger:     logger,
	}
}

// GetRepositoryTree fetches flat folders and assets and builds the nested tree
func (s *treeService) GetRepositoryTree(ctx context.Context, repositoryID string) (*models.Tree, error) {
	if _, err := s.repoRepo.GetByID(ctx, repositoryID); err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListByRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("get folders: %w", err)
	}
	assets, err := s.assetRepo.ListByRepository(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("get assets: %w", err)
	}

	t := tree.Build(folders, assets)
	tree.Sort(t, tree.OrderByPosition)

	s.logger.Debug("tree built",
		"repository_id", repositoryID,
		"folders", len(folders),
		"assets", len(assets),
	)
	return t, nil
}
