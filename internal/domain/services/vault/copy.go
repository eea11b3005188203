package vault

import (
	"context"

	"assetvault/internal/domain/models/vault"
)

// CopyService replicates folder subtrees and assets, within or across repositories
type CopyService interface {
	// CopyFolders copies each folder subtree under the target parent
	CopyFolders(ctx context.Context, req *CopyFoldersRequest) (*CopyResult, error)

	// CopyAssets copies individual assets into a target folder
	CopyAssets(ctx context.Context, req *CopyAssetsRequest) (*CopyResult, error)

	// ForkFolder creates a new repository whose root holds the folder's contents
	ForkFolder(ctx context.Context, req *ForkFolderRequest) (*ForkResult, error)

	// ForkRepository copies a whole repository into a new one,
	// dissolving the boundaries of the folders named in Dissolve
	ForkRepository(ctx context.Context, req *ForkRepositoryRequest) (*ForkResult, error)

	// CopyRepositoryAsFolder copies a repository into a new folder of another repository
	CopyRepositoryAsFolder(ctx context.Context, req *RepositoryAsFolderRequest) (*CopyResult, error)

	// MoveRepositoryInto moves every record of a repository under a new folder
	// of another repository, then deletes the emptied source
	MoveRepositoryInto(ctx context.Context, req *RepositoryAsFolderRequest) (*MoveRepositoryResult, error)
}

// CopyFoldersRequest names source folders and where their copies go
type CopyFoldersRequest struct {
	FolderIDs          []string `json:"folder_ids"`
	TargetRepositoryID string   `json:"target_repository_id"`
	TargetParentID     *string  `json:"target_parent_id,omitempty"`
}

// CopyAssetsRequest names source assets and the folder their copies go to
type CopyAssetsRequest struct {
	AssetIDs           []string `json:"asset_ids"`
	TargetRepositoryID string   `json:"target_repository_id"`
	TargetFolderID     *string  `json:"target_folder_id,omitempty"`
}

// ForkFolderRequest describes the repository a folder is forked into
type ForkFolderRequest struct {
	FolderID    string  `json:"-"`
	WorkspaceID string  `json:"workspace_id"`
	OwnerID     string  `json:"-"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// ForkRepositoryRequest describes the repository a repository is forked into
type ForkRepositoryRequest struct {
	SourceRepositoryID string   `json:"-"`
	WorkspaceID        string   `json:"workspace_id"`
	OwnerID            string   `json:"-"`
	Name               string   `json:"name"`
	Description        *string  `json:"description,omitempty"`
	IsPublic           bool     `json:"is_public"`
	Dissolve           []string `json:"dissolve,omitempty"` // folder IDs whose contents are promoted
}

// RepositoryAsFolderRequest turns a source repository into a folder of a target repository
type RepositoryAsFolderRequest struct {
	SourceRepositoryID string  `json:"-"`
	TargetRepositoryID string  `json:"target_repository_id"`
	TargetParentID     *string `json:"target_parent_id,omitempty"`
}

// SkippedAsset is an asset left out of a copy, with the reason
type SkippedAsset struct {
	AssetID string `json:"asset_id"`
	Reason  string `json:"reason"`
}

// CopyResult reports what a copy created.
// FolderMap maps source folder IDs to the IDs of their copies;
// dissolved folders have no entry.
type CopyResult struct {
	Folders   []vault.Folder    `json:"folders"`
	Assets    []vault.Asset     `json:"assets"`
	Skipped   []SkippedAsset    `json:"skipped"`
	FolderMap map[string]string `json:"folder_map"`
}

// ForkResult is the new repository and what was copied into it
type ForkResult struct {
	Repository *vault.Repository `json:"repository"`
	Copy       *CopyResult       `json:"copy"`
}

// MoveRepositoryResult reports a completed cross-repository move
type MoveRepositoryResult struct {
	Wrapper      *vault.Folder `json:"wrapper"`
	FoldersMoved int           `json:"folders_moved"`
	AssetsMoved  int           `json:"assets_moved"`
}
