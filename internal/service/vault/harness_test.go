package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/repository/memory"
	"assetvault/internal/storage"
	"assetvault/internal/tree"
)

const testWorkspace = "ws-1"

type harness struct {
	store   *memory.Store
	blobs   *storage.MemoryStore
	repos   vaultRepo.RepositoryRepository
	folders vaultRepo.FolderRepository
	assets  vaultRepo.AssetRepository

	repoSvc   svc.RepositoryService
	folderSvc svc.FolderService
	assetSvc  svc.AssetService
	treeSvc   svc.TreeService
	copySvc   svc.CopyService
	moveSvc   svc.MoveService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	blobs := storage.NewMemoryStore()
	repos := memory.NewRepositoryRepository(store)
	folders := memory.NewFolderRepository(store)
	assets := memory.NewAssetRepository(store)

	return &harness{
		store:     store,
		blobs:     blobs,
		repos:     repos,
		folders:   folders,
		assets:    assets,
		repoSvc:   NewRepositoryService(repos, folders, assets, blobs, store, logger),
		folderSvc: NewFolderService(repos, folders, assets, blobs, store, logger),
		assetSvc:  NewAssetService(repos, folders, assets, blobs, logger),
		treeSvc:   NewTreeService(repos, folders, assets, logger),
		copySvc:   NewCopyService(repos, folders, assets, blobs, logger),
		moveSvc:   NewMoveService(repos, folders, assets, store, logger),
	}
}

func (h *harness) repo(t *testing.T, name string) *models.Repository {
	t.Helper()
	r := &models.Repository{WorkspaceID: testWorkspace, OwnerID: "user-1", Name: name}
	if err := h.repos.Create(context.Background(), r); err != nil {
		t.Fatalf("create repository %s: %v", name, err)
	}
	return r
}

func (h *harness) folder(t *testing.T, repoID string, parent *string, name string, position int) *models.Folder {
	t.Helper()
	f := &models.Folder{RepositoryID: repoID, ParentID: parent, Name: name, Position: position}
	if err := h.folders.Create(context.Background(), f); err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}
	return f
}

func (h *harness) asset(t *testing.T, repoID string, folderID *string, name string, position int) *models.Asset {
	t.Helper()
	ctx := context.Background()
	path := fmt.Sprintf("%s/%s.png", repoID, strings.ReplaceAll(name, " ", "-"))
	if err := h.blobs.Put(ctx, path, []byte("png:"+name), "image/png"); err != nil {
		t.Fatalf("put blob: %v", err)
	}
	a := &models.Asset{
		RepositoryID: repoID,
		FolderID:     folderID,
		Position:     position,
		StoragePath:  path,
		Width:        640,
		Height:       480,
		Tags:         []string{"ui", name},
		Metadata:     map[string]any{models.MetadataName: name, "source": "capture"},
	}
	if err := h.assets.Create(ctx, a); err != nil {
		t.Fatalf("create asset %s: %v", name, err)
	}
	return a
}

func (h *harness) tree(t *testing.T, repoID string) *models.Tree {
	t.Helper()
	tr, err := h.treeSvc.GetRepositoryTree(context.Background(), repoID)
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	return tr
}

// shape renders a tree's structure and asset payload (minus storage paths)
// so two trees can be compared regardless of IDs
func shape(t *models.Tree) string {
	var b strings.Builder
	writeAssets(&b, t.Assets)
	for _, f := range t.Folders {
		writeFolder(&b, f)
	}
	return b.String()
}

func writeFolder(b *strings.Builder, n *models.FolderTreeNode) {
	fmt.Fprintf(b, "%s{", n.Name)
	writeAssets(b, n.Assets)
	for _, child := range n.Folders {
		writeFolder(b, child)
	}
	b.WriteString("}")
}

func writeAssets(b *strings.Builder, assets []models.AssetTreeNode) {
	for _, a := range assets {
		keys := make([]string, 0, len(a.Metadata))
		for k := range a.Metadata {
			keys = append(keys, fmt.Sprintf("%s=%v", k, a.Metadata[k]))
		}
		sort.Strings(keys)
		fmt.Fprintf(b, "[%s %dx%d %v %v]", a.Name, a.Width, a.Height, a.Tags, keys)
	}
}

func strPtr(s string) *string { return &s }

func countTree(t *models.Tree) (int, int) {
	return tree.Count(t)
}
