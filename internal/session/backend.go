package session

import (
	"context"

	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
)

// Backend is the server surface a session talks to
type Backend interface {
	ListWorkspaceFolders(ctx context.Context, workspaceID string) ([]models.Folder, error)
	ListFolders(ctx context.Context, repositoryID string) ([]models.Folder, error)
	ListWorkspaceAssets(ctx context.Context, workspaceID string) ([]models.Asset, error)
	ListAssets(ctx context.Context, repositoryID string) ([]models.Asset, error)
	ListFolderAssets(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error)

	CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*models.Folder, error)
	UpdateFolder(ctx context.Context, id string, req *svc.UpdateFolderRequest) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	MoveFolder(ctx context.Context, req *svc.MoveFolderRequest) (*models.Folder, error)

	UpdateAsset(ctx context.Context, id string, req *svc.UpdateAssetRequest) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	MoveAsset(ctx context.Context, req *svc.MoveAssetRequest) (*models.Asset, error)
	Image(ctx context.Context, assetID string) ([]byte, error)

	CopyFolders(ctx context.Context, req *svc.CopyFoldersRequest) (*svc.CopyResult, error)
	CopyAssets(ctx context.Context, req *svc.CopyAssetsRequest) (*svc.CopyResult, error)
	CopyRepositoryAsFolder(ctx context.Context, req *svc.RepositoryAsFolderRequest) (*svc.CopyResult, error)
}

// ServiceBackend runs a session against in-process services
type ServiceBackend struct {
	folders svc.FolderService
	assets  svc.AssetService
	copies  svc.CopyService
	moves   svc.MoveService
}

// NewServiceBackend wires the vault services into a Backend
func NewServiceBackend(folders svc.FolderService, assets svc.AssetService, copies svc.CopyService, moves svc.MoveService) *ServiceBackend {
	return &ServiceBackend{folders: folders, assets: assets, copies: copies, moves: moves}
}

func (b *ServiceBackend) ListWorkspaceFolders(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	return b.folders.ListByWorkspace(ctx, workspaceID)
}

func (b *ServiceBackend) ListFolders(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	return b.folders.ListByRepository(ctx, repositoryID)
}

func (b *ServiceBackend) ListWorkspaceAssets(ctx context.Context, workspaceID string) ([]models.Asset, error) {
	return b.assets.ListByWorkspace(ctx, workspaceID)
}

func (b *ServiceBackend) ListAssets(ctx context.Context, repositoryID string) ([]models.Asset, error) {
	return b.assets.ListByRepository(ctx, repositoryID)
}

func (b *ServiceBackend) ListFolderAssets(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error) {
	return b.assets.ListByFolder(ctx, repositoryID, folderID)
}

func (b *ServiceBackend) CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*models.Folder, error) {
	return b.folders.CreateFolder(ctx, req)
}

func (b *ServiceBackend) UpdateFolder(ctx context.Context, id string, req *svc.UpdateFolderRequest) (*models.Folder, error) {
	return b.folders.UpdateFolder(ctx, id, req)
}

func (b *ServiceBackend) DeleteFolder(ctx context.Context, id string) error {
	return b.folders.DeleteFolder(ctx, id)
}

func (b *ServiceBackend) MoveFolder(ctx context.Context, req *svc.MoveFolderRequest) (*models.Folder, error) {
	return b.moves.MoveFolder(ctx, req)
}

func (b *ServiceBackend) UpdateAsset(ctx context.Context, id string, req *svc.UpdateAssetRequest) (*models.Asset, error) {
	return b.assets.UpdateAsset(ctx, id, req)
}

func (b *ServiceBackend) DeleteAsset(ctx context.Context, id string) error {
	return b.assets.DeleteAsset(ctx, id)
}

func (b *ServiceBackend) MoveAsset(ctx context.Context, req *svc.MoveAssetRequest) (*models.Asset, error) {
	return b.moves.MoveAsset(ctx, req)
}

func (b *ServiceBackend) Image(ctx context.Context, assetID string) ([]byte, error) {
	return b.assets.Image(ctx, assetID)
}

func (b *ServiceBackend) CopyFolders(ctx context.Context, req *svc.CopyFoldersRequest) (*svc.CopyResult, error) {
	return b.copies.CopyFolders(ctx, req)
}

func (b *ServiceBackend) CopyAssets(ctx context.Context, req *svc.CopyAssetsRequest) (*svc.CopyResult, error) {
	return b.copies.CopyAssets(ctx, req)
}

func (b *ServiceBackend) CopyRepositoryAsFolder(ctx context.Context, req *svc.RepositoryAsFolderRequest) (*svc.CopyResult, error) {
	return b.copies.CopyRepositoryAsFolder(ctx, req)
}
