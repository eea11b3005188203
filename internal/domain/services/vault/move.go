package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// MoveService moves single folders and assets
type MoveService interface {
	// MoveFolder re-parents a folder, carrying its subtree across repositories if needed
	MoveFolder(ctx context.Context, req *MoveFolderRequest) (*vault.Folder, error)

	// MoveAsset moves an asset to another folder or repository
	MoveAsset(ctx context.Context, req *MoveAssetRequest) (*vault.Asset, error)

	// Drop resolves a drag-and-drop gesture and applies it
	Drop(ctx context.Context, item vault.DragItem, target vault.DropTarget) (*vault.MoveIntent, error)
}

// MoveFolderRequest describes a folder move
type MoveFolderRequest struct {
	FolderID           string  `json:"folder_id"`
	TargetRepositoryID string  `json:"target_repository_id"`
	TargetParentID     *string `json:"target_parent_id,omitempty"`
}

// MoveAssetRequest describes an asset move
type MoveAssetRequest struct {
	AssetID            string  `json:"asset_id"`
	TargetRepositoryID string  `json:"target_repository_id"`
	TargetFolderID     *string `json:"target_folder_id,omitempty"`
}
