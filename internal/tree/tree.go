// Package tree rebuilds repository forests from flat folder and asset records.
//
// Nothing here touches storage. Every consumer rebuilds from the flat lists it
// just read and must not assume the shape survives between reads.
package tree

import (
	models "assetvault/internal/domain/models/vault"
)

// Build reconstructs the folder/asset forest for one repository.
//
// Each distinct folder ID becomes exactly one node; when the input repeats an
// ID the first record wins. A folder whose parent is not in the record set is
// treated as a root, and an asset whose folder is not in the record set lands
// in the root asset bucket. No distinct folder or asset is dropped.
// Input order is preserved among siblings; apply Sort afterwards for display.
func Build(folders []models.Folder, assets []models.Asset) *models.Tree {
	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(folders))
	for _, folder := range folders {
		if _, dup := folderMap[folder.ID]; dup {
			continue
		}
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:           folder.ID,
			RepositoryID: folder.RepositoryID,
			Name:         folder.Name,
			ParentID:     folder.ParentID,
			Description:  folder.Description,
			Position:     folder.Position,
			Folders:      []*models.FolderTreeNode{},
			Assets:       []models.AssetTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	rootFolders := make([]*models.FolderTreeNode, 0)
	linked := make(map[string]bool, len(folders))
	for _, folder := range folders {
		if linked[folder.ID] {
			continue
		}
		linked[folder.ID] = true
		node := folderMap[folder.ID]

		if folder.ParentID != nil && *folder.ParentID != folder.ID {
			if parent, exists := folderMap[*folder.ParentID]; exists {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		rootFolders = append(rootFolders, node)
	}

	// Third pass: add assets to their folders
	rootAssets := make([]models.AssetTreeNode, 0)
	for i := range assets {
		assetNode := NewAssetNode(&assets[i])
		if assets[i].FolderID != nil {
			if parent, exists := folderMap[*assets[i].FolderID]; exists {
				parent.Assets = append(parent.Assets, assetNode)
				continue
			}
		}
		rootAssets = append(rootAssets, assetNode)
	}

	rootFolders = append(rootFolders, detachCycles(folders, folderMap, rootFolders)...)

	return &models.Tree{
		Folders: rootFolders,
		Assets:  rootAssets,
	}
}

// NewAssetNode converts an asset record into its tree representation
func NewAssetNode(asset *models.Asset) models.AssetTreeNode {
	return models.AssetTreeNode{
		ID:          asset.ID,
		FolderID:    asset.FolderID,
		Name:        asset.Name(),
		Position:    asset.Position,
		StoragePath: asset.StoragePath,
		Width:       asset.Width,
		Height:      asset.Height,
		Tags:        asset.Tags,
		Metadata:    asset.Metadata,
	}
}

// detachCycles finds folders unreachable from any root (their parent chain
// loops back on itself) and breaks each loop by promoting one member to root,
// so corrupted parent pointers never hide records.
func detachCycles(folders []models.Folder, folderMap map[string]*models.FolderTreeNode, roots []*models.FolderTreeNode) []*models.FolderTreeNode {
	reached := make(map[string]bool, len(folderMap))
	var mark func(n *models.FolderTreeNode)
	mark = func(n *models.FolderTreeNode) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, child := range n.Folders {
			mark(child)
		}
	}
	for _, root := range roots {
		mark(root)
	}
	if len(reached) == len(folderMap) {
		return nil
	}

	var promoted []*models.FolderTreeNode
	for _, folder := range folders {
		node := folderMap[folder.ID]
		if reached[node.ID] {
			continue
		}
		// Walk up until the loop closes, then cut the loop above that node
		seen := map[string]bool{}
		cur := node
		for cur.ParentID != nil && !seen[cur.ID] {
			seen[cur.ID] = true
			parent, ok := folderMap[*cur.ParentID]
			if !ok {
				break
			}
			cur = parent
		}
		if reached[cur.ID] {
			continue
		}
		if cur.ParentID != nil {
			if parent, ok := folderMap[*cur.ParentID]; ok {
				parent.Folders = removeNode(parent.Folders, cur.ID)
			}
		}
		promoted = append(promoted, cur)
		mark(cur)
	}
	return promoted
}

func removeNode(nodes []*models.FolderTreeNode, id string) []*models.FolderTreeNode {
	out := nodes[:0]
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of folder nodes and asset nodes in a tree
func Count(t *models.Tree) (folders, assets int) {
	assets = len(t.Assets)
	var walk func(nodes []*models.FolderTreeNode)
	walk = func(nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			folders++
			assets += len(n.Assets)
			walk(n.Folders)
		}
	}
	walk(t.Folders)
	return folders, assets
}
