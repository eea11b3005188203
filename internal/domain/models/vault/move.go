package vault

// DragItem is the thing being dragged (a folder or an asset)
type DragItem struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// DropTarget is where it was dropped (a repository or a folder)
type DropTarget struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// MoveIntent is a resolved drop: where the item is now and where it goes.
// NoOp is set when the item already sits at the destination.
type MoveIntent struct {
	Kind             ItemKind `json:"kind"`
	ID               string   `json:"id"`
	FromRepositoryID string   `json:"from_repository_id"`
	FromFolderID     *string  `json:"from_folder_id"`
	ToRepositoryID   string   `json:"to_repository_id"`
	ToFolderID       *string  `json:"to_folder_id"`
	NoOp             bool     `json:"no_op"`
}

// CrossesRepository reports whether the move changes the owning repository
func (m *MoveIntent) CrossesRepository() bool {
	return m.FromRepositoryID != m.ToRepositoryID
}

// SameParent compares two nullable parent identifiers
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
