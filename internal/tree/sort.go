package tree

import (
	"sort"
	"strings"

	models "assetvault/internal/domain/models/vault"
)

// Order selects how siblings are arranged for display
type Order string

const (
	OrderByName     Order = "name"
	OrderByPosition Order = "position"
)

// Sort orders siblings in place at every level of the tree.
// It is a presentation pass and never changes the structure.
func Sort(t *models.Tree, order Order) {
	sortFolders(t.Folders, order)
	sortAssets(t.Assets, order)
}

func sortFolders(nodes []*models.FolderTreeNode, order Order) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if order == OrderByPosition && a.Position != b.Position {
			return a.Position < b.Position
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, n := range nodes {
		sortFolders(n.Folders, order)
		sortAssets(n.Assets, order)
	}
}

func sortAssets(nodes []models.AssetTreeNode, order Order) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if order == OrderByName {
			if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
				return an < bn
			}
		}
		return a.Position < b.Position
	})
}
