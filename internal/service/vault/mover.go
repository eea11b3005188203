package vault

import (
	"context"
	"fmt"
	"log/slog"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/repositories"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/service/vault/dnd"
	"assetvault/internal/tree"
)

type mover struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
	txManager  repositories.TransactionManager
	reconciler *dnd.Reconciler
	logger     *slog.Logger
}

// NewMoveService creates a new move service
func NewMoveService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) svc.MoveService {
	return &mover{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		txManager:  txManager,
		reconciler: dnd.NewReconciler(&recordLocator{folderRepo: folderRepo, assetRepo: assetRepo}),
		logger:     logger,
	}
}

// MoveFolder re-parents a folder. Inside one repository only the parent
// changes; across repositories the whole subtree is rewritten first
// (folders, then assets) and the moved root is re-parented last.
func (m *mover) MoveFolder(ctx context.Context, req *svc.MoveFolderRequest) (*models.Folder, error) {
	req.TargetParentID = normalizeID(req.TargetParentID)
	if err := validateMoveFolder(req); err != nil {
		return nil, err
	}

	folder, err := m.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if _, err := m.repoRepo.GetByID(ctx, req.TargetRepositoryID); err != nil {
		return nil, fmt.Errorf("invalid target repository: %w", err)
	}
	if req.TargetParentID != nil {
		if *req.TargetParentID == folder.ID {
			return nil, dnd.ErrSelfDrop
		}
		parent, err := m.folderRepo.GetByID(ctx, *req.TargetParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid target folder: %w", err)
		}
		if parent.RepositoryID != req.TargetRepositoryID {
			return nil, domain.NewValidationError("target folder belongs to another repository")
		}
	}

	if folder.RepositoryID == req.TargetRepositoryID && models.SameParent(folder.ParentID, req.TargetParentID) {
		return folder, nil
	}

	sources, err := m.folderRepo.ListByRepository(ctx, folder.RepositoryID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	idx := tree.NewIndex(sources)
	if req.TargetParentID != nil && idx.IsDescendant(*req.TargetParentID, folder.ID) {
		return nil, dnd.ErrCycle
	}

	position, err := nextFolderPosition(ctx, m.folderRepo, req.TargetRepositoryID, req.TargetParentID)
	if err != nil {
		return nil, err
	}

	fromRepo := folder.RepositoryID
	err = m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if fromRepo != req.TargetRepositoryID {
			if err := m.reassignSubtree(txCtx, idx, folder, req.TargetRepositoryID); err != nil {
				return err
			}
		}
		folder.RepositoryID = req.TargetRepositoryID
		folder.ParentID = req.TargetParentID
		folder.Position = position
		return m.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("folder moved",
		"id", folder.ID,
		"from_repository_id", fromRepo,
		"to_repository_id", folder.RepositoryID,
		"parent_id", folder.ParentID,
	)
	return folder, nil
}

// reassignSubtree rewrites RepositoryID on every descendant folder, then on
// every asset inside the subtree, sequentially
func (m *mover) reassignSubtree(ctx context.Context, idx *tree.Index, root *models.Folder, targetRepoID string) error {
	for _, f := range idx.Descendants(root.ID) {
		moved := *f
		moved.RepositoryID = targetRepoID
		if err := m.folderRepo.Update(ctx, &moved); err != nil {
			return fmt.Errorf("reassign folder %s: %w", f.ID, err)
		}
	}

	assets, err := m.assetRepo.ListByRepository(ctx, root.RepositoryID)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	ids := idx.SubtreeIDs(root.ID)
	for i := range assets {
		a := &assets[i]
		if a.FolderID == nil || !ids[*a.FolderID] {
			continue
		}
		a.RepositoryID = targetRepoID
		if err := m.assetRepo.Update(ctx, a); err != nil {
			return fmt.Errorf("reassign asset %s: %w", a.ID, err)
		}
	}
	return nil
}

// MoveAsset moves an asset to the end of another folder
func (m *mover) MoveAsset(ctx context.Context, req *svc.MoveAssetRequest) (*models.Asset, error) {
	req.TargetFolderID = normalizeID(req.TargetFolderID)
	if err := validateMoveAsset(req); err != nil {
		return nil, err
	}

	asset, err := m.assetRepo.GetByID(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if _, err := m.repoRepo.GetByID(ctx, req.TargetRepositoryID); err != nil {
		return nil, fmt.Errorf("invalid target repository: %w", err)
	}
	if req.TargetFolderID != nil {
		folder, err := m.folderRepo.GetByID(ctx, *req.TargetFolderID)
		if err != nil {
			return nil, fmt.Errorf("invalid target folder: %w", err)
		}
		if folder.RepositoryID != req.TargetRepositoryID {
			return nil, domain.NewValidationError("target folder belongs to another repository")
		}
	}

	if asset.RepositoryID == req.TargetRepositoryID && models.SameParent(asset.FolderID, req.TargetFolderID) {
		return asset, nil
	}

	position, err := m.assetRepo.NextPosition(ctx, req.TargetRepositoryID, req.TargetFolderID)
	if err != nil {
		return nil, err
	}
	fromRepo := asset.RepositoryID
	asset.RepositoryID = req.TargetRepositoryID
	asset.FolderID = req.TargetFolderID
	asset.Position = position
	if err := m.assetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}

	m.logger.Info("asset moved",
		"id", asset.ID,
		"from_repository_id", fromRepo,
		"to_repository_id", asset.RepositoryID,
		"folder_id", asset.FolderID,
	)
	return asset, nil
}

// Drop resolves a drag-and-drop gesture and applies the resulting move
func (m *mover) Drop(ctx context.Context, item models.DragItem, target models.DropTarget) (*models.MoveIntent, error) {
	intent, err := m.reconciler.Resolve(ctx, item, target)
	if err != nil {
		return nil, err
	}
	if intent.NoOp {
		m.logger.Debug("drop is a no-op", "kind", item.Kind, "id", item.ID)
		return intent, nil
	}

	switch intent.Kind {
	case models.KindFolder:
		_, err = m.MoveFolder(ctx, &svc.MoveFolderRequest{
			FolderID:           intent.ID,
			TargetRepositoryID: intent.ToRepositoryID,
			TargetParentID:     intent.ToFolderID,
		})
	case models.KindAsset:
		_, err = m.MoveAsset(ctx, &svc.MoveAssetRequest{
			AssetID:            intent.ID,
			TargetRepositoryID: intent.ToRepositoryID,
			TargetFolderID:     intent.ToFolderID,
		})
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// recordLocator reads locations straight from the record store
type recordLocator struct {
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
}

func (l *recordLocator) Folder(ctx context.Context, id string) (*models.Folder, error) {
	return l.folderRepo.GetByID(ctx, id)
}

func (l *recordLocator) Asset(ctx context.Context, id string) (*models.Asset, error) {
	return l.assetRepo.GetByID(ctx, id)
}
