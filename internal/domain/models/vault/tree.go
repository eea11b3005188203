package vault

// Tree is the root of a repository's folder/asset forest.
// It is rebuilt from flat records on every read and never persisted.
type Tree struct {
	Folders []*FolderTreeNode `json:"folders"`
	Assets  []AssetTreeNode   `json:"assets"` // root-level assets
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID           string            `json:"id"`
	RepositoryID string            `json:"repository_id"`
	Name         string            `json:"name"`
	ParentID     *string           `json:"parent_id"`
	Description  *string           `json:"description,omitempty"`
	Position     int               `json:"position"`
	Folders      []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Assets       []AssetTreeNode   `json:"assets"`
}

// AssetTreeNode represents an asset in the tree
type AssetTreeNode struct {
	ID          string         `json:"id"`
	FolderID    *string        `json:"folder_id"`
	Name        string         `json:"name"`
	Position    int            `json:"position"`
	StoragePath string         `json:"storage_path"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Tags        []string       `json:"tags"`
	Metadata    map[string]any `json:"metadata"`
}
