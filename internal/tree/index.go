package tree

import (
	models "assetvault/internal/domain/models/vault"
)

// Index is a parent -> children lookup over a flat folder list.
// Root folders are stored under the empty key.
type Index struct {
	byID     map[string]*models.Folder
	children map[string][]*models.Folder
}

// NewIndex builds an index from one flat folder fetch
func NewIndex(folders []models.Folder) *Index {
	idx := &Index{
		byID:     make(map[string]*models.Folder, len(folders)),
		children: make(map[string][]*models.Folder),
	}
	for i := range folders {
		f := &folders[i]
		idx.byID[f.ID] = f
	}
	for i := range folders {
		f := &folders[i]
		key := ""
		if f.ParentID != nil {
			if _, ok := idx.byID[*f.ParentID]; ok && *f.ParentID != f.ID {
				key = *f.ParentID
			}
		}
		idx.children[key] = append(idx.children[key], f)
	}
	return idx
}

// Get returns the folder with the given ID, or nil
func (idx *Index) Get(id string) *models.Folder {
	return idx.byID[id]
}

// Children returns the direct child folders (parentID nil = roots)
func (idx *Index) Children(parentID *string) []*models.Folder {
	if parentID == nil {
		return idx.children[""]
	}
	return idx.children[*parentID]
}

// Descendants returns every folder below rootID, parents before children.
// The root itself is not included.
func (idx *Index) Descendants(rootID string) []*models.Folder {
	var out []*models.Folder
	visited := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range idx.children[id] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out
}

// SubtreeIDs returns rootID plus the IDs of all its descendants
func (idx *Index) SubtreeIDs(rootID string) map[string]bool {
	ids := map[string]bool{rootID: true}
	for _, f := range idx.Descendants(rootID) {
		ids[f.ID] = true
	}
	return ids
}

// IsDescendant reports whether candidateID sits below ancestorID by walking the
// candidate's parent chain. A folder is not its own descendant.
func (idx *Index) IsDescendant(candidateID, ancestorID string) bool {
	return IsDescendant(candidateID, ancestorID, func(id string) (*string, bool) {
		f := idx.byID[id]
		if f == nil {
			return nil, false
		}
		return f.ParentID, true
	})
}

// ParentLookup returns a folder's parent ID and whether the folder is known
type ParentLookup func(id string) (*string, bool)

// IsDescendant walks candidateID's ancestor chain looking for ancestorID.
// The walk stops at a root, at an unknown folder, or on a repeated ID.
func IsDescendant(candidateID, ancestorID string, parentOf ParentLookup) bool {
	seen := map[string]bool{candidateID: true}
	current := candidateID
	for {
		parentID, ok := parentOf(current)
		if !ok || parentID == nil {
			return false
		}
		if *parentID == ancestorID {
			return true
		}
		if seen[*parentID] {
			return false
		}
		seen[*parentID] = true
		current = *parentID
	}
}
