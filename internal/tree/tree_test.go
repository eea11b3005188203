package tree

import (
	"reflect"
	"testing"

	models "assetvault/internal/domain/models/vault"
)

func strPtr(s string) *string { return &s }

func folder(id string, parent *string) models.Folder {
	return models.Folder{ID: id, RepositoryID: "repo-1", ParentID: parent, Name: id}
}

func asset(id string, folderID *string, pos int) models.Asset {
	return models.Asset{
		ID:           id,
		RepositoryID: "repo-1",
		FolderID:     folderID,
		Position:     pos,
		StoragePath:  "repo-1/" + id + ".png",
		Metadata:     map[string]any{models.MetadataName: id},
	}
}

// collect flattens a tree into folder and asset ID counts
func collect(t *models.Tree) (map[string]int, map[string]int) {
	folders := map[string]int{}
	assets := map[string]int{}
	for _, a := range t.Assets {
		assets[a.ID]++
	}
	var walk func(nodes []*models.FolderTreeNode)
	walk = func(nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			folders[n.ID]++
			for _, a := range n.Assets {
				assets[a.ID]++
			}
			walk(n.Folders)
		}
	}
	walk(t.Folders)
	return folders, assets
}

func TestBuild_Nesting(t *testing.T) {
	folders := []models.Folder{
		folder("buttons", strPtr("components")),
		folder("icons", nil),
		folder("components", nil),
	}
	assets := []models.Asset{
		asset("a1", nil, 0),
		asset("a2", strPtr("buttons"), 0),
		asset("a3", strPtr("icons"), 1),
	}

	tree := Build(folders, assets)

	if len(tree.Folders) != 2 {
		t.Fatalf("expected 2 root folders, got %d", len(tree.Folders))
	}
	if len(tree.Assets) != 1 || tree.Assets[0].ID != "a1" {
		t.Errorf("expected root asset a1, got %+v", tree.Assets)
	}

	var components *models.FolderTreeNode
	for _, n := range tree.Folders {
		if n.ID == "components" {
			components = n
		}
	}
	if components == nil {
		t.Fatal("components folder missing at root")
	}
	if len(components.Folders) != 1 || components.Folders[0].ID != "buttons" {
		t.Fatalf("expected buttons under components, got %+v", components.Folders)
	}
	if got := components.Folders[0].Assets; len(got) != 1 || got[0].ID != "a2" {
		t.Errorf("expected a2 inside buttons, got %+v", got)
	}
	if components.Folders[0].Assets[0].Name != "a2" {
		t.Errorf("expected display name from metadata, got %q", components.Folders[0].Assets[0].Name)
	}
}

func TestBuild_Completeness(t *testing.T) {
	tests := []struct {
		name    string
		folders []models.Folder
		assets  []models.Asset
	}{
		{
			name: "empty",
		},
		{
			name:    "orphan folder becomes root",
			folders: []models.Folder{folder("f1", strPtr("missing")), folder("f2", strPtr("f1"))},
		},
		{
			name:    "orphan asset goes to root bucket",
			folders: []models.Folder{folder("f1", nil)},
			assets:  []models.Asset{asset("a1", strPtr("gone"), 0), asset("a2", strPtr("f1"), 0)},
		},
		{
			name:    "self parent",
			folders: []models.Folder{folder("f1", strPtr("f1"))},
		},
		{
			name: "parent cycle",
			folders: []models.Folder{
				folder("f1", strPtr("f3")),
				folder("f2", strPtr("f1")),
				folder("f3", strPtr("f2")),
				folder("f4", nil),
			},
			assets: []models.Asset{asset("a1", strPtr("f2"), 0)},
		},
		{
			name: "deep chain",
			folders: []models.Folder{
				folder("d4", strPtr("d3")),
				folder("d3", strPtr("d2")),
				folder("d2", strPtr("d1")),
				folder("d1", nil),
			},
			assets: []models.Asset{asset("a1", strPtr("d4"), 0), asset("a2", nil, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Build(tt.folders, tt.assets)
			folders, assets := collect(tree)

			if len(folders) != len(tt.folders) {
				t.Errorf("expected %d folders, got %d", len(tt.folders), len(folders))
			}
			for _, f := range tt.folders {
				if folders[f.ID] != 1 {
					t.Errorf("folder %s appears %d times", f.ID, folders[f.ID])
				}
			}
			if len(assets) != len(tt.assets) {
				t.Errorf("expected %d assets, got %d", len(tt.assets), len(assets))
			}
			for _, a := range tt.assets {
				if assets[a.ID] != 1 {
					t.Errorf("asset %s appears %d times", a.ID, assets[a.ID])
				}
			}

			nf, na := Count(tree)
			if nf != len(tt.folders) || na != len(tt.assets) {
				t.Errorf("Count = (%d, %d), want (%d, %d)", nf, na, len(tt.folders), len(tt.assets))
			}
		})
	}
}

func TestBuild_DuplicateFolderIDs(t *testing.T) {
	first := folder("f1", nil)
	again := folder("f1", strPtr("f2"))
	again.Name = "shadow"
	folders := []models.Folder{first, folder("f2", nil), again}

	tree := Build(folders, []models.Asset{asset("a1", strPtr("f1"), 0)})
	if nf, na := Count(tree); nf != 2 || na != 1 {
		t.Fatalf("Count = (%d, %d), want (2, 1)", nf, na)
	}
	if len(tree.Folders) != 2 || tree.Folders[0].Name != "f1" {
		t.Errorf("roots = %+v, want the first f1 record at root", tree.Folders)
	}
	if len(tree.Folders[0].Assets) != 1 {
		t.Errorf("asset should sit under the surviving f1 node")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	folders := []models.Folder{
		folder("a", nil),
		folder("b", strPtr("a")),
		folder("c", strPtr("zzz")),
		folder("x", strPtr("y")),
		folder("y", strPtr("x")),
	}
	assets := []models.Asset{asset("1", strPtr("b"), 0), asset("2", nil, 0), asset("3", strPtr("nope"), 2)}

	first := Build(folders, assets)
	second := Build(folders, assets)

	if !reflect.DeepEqual(first, second) {
		t.Error("building twice from the same input produced different forests")
	}
}

func TestSort(t *testing.T) {
	folders := []models.Folder{
		{ID: "1", Name: "beta", Position: 0},
		{ID: "2", Name: "Alpha", Position: 2},
		{ID: "3", Name: "gamma", Position: 1},
	}

	t.Run("by name", func(t *testing.T) {
		tree := Build(folders, nil)
		Sort(tree, OrderByName)
		got := []string{tree.Folders[0].Name, tree.Folders[1].Name, tree.Folders[2].Name}
		want := []string{"Alpha", "beta", "gamma"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("by position", func(t *testing.T) {
		tree := Build(folders, nil)
		Sort(tree, OrderByPosition)
		got := []string{tree.Folders[0].ID, tree.Folders[1].ID, tree.Folders[2].ID}
		want := []string{"1", "3", "2"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("assets by position", func(t *testing.T) {
		tree := Build(nil, []models.Asset{asset("c", nil, 3), asset("a", nil, 1), asset("b", nil, 2)})
		Sort(tree, OrderByPosition)
		got := []string{tree.Assets[0].ID, tree.Assets[1].ID, tree.Assets[2].ID}
		want := []string{"a", "b", "c"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestIndex(t *testing.T) {
	folders := []models.Folder{
		folder("root", nil),
		folder("child", strPtr("root")),
		folder("grandchild", strPtr("child")),
		folder("other", nil),
	}
	idx := NewIndex(folders)

	if got := idx.Children(nil); len(got) != 2 {
		t.Errorf("expected 2 roots, got %d", len(got))
	}
	if got := idx.Descendants("root"); len(got) != 2 || got[0].ID != "child" || got[1].ID != "grandchild" {
		t.Errorf("unexpected descendants: %+v", got)
	}
	if !idx.IsDescendant("grandchild", "root") {
		t.Error("grandchild should descend from root")
	}
	if idx.IsDescendant("root", "grandchild") {
		t.Error("root does not descend from grandchild")
	}
	if idx.IsDescendant("root", "root") {
		t.Error("a folder is not its own descendant")
	}
	if idx.IsDescendant("other", "root") {
		t.Error("other is a separate root")
	}
	if ids := idx.SubtreeIDs("child"); len(ids) != 2 || !ids["grandchild"] {
		t.Errorf("unexpected subtree: %v", ids)
	}
}

func TestIsDescendant_CycleTerminates(t *testing.T) {
	parents := map[string]string{"a": "b", "b": "a"}
	lookup := func(id string) (*string, bool) {
		p, ok := parents[id]
		if !ok {
			return nil, false
		}
		return &p, true
	}
	if IsDescendant("a", "z", lookup) {
		t.Error("expected false for unrelated folder in a cycle")
	}
}
