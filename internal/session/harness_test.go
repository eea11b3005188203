package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/repository/memory"
	vaultService "assetvault/internal/service/vault"
	"assetvault/internal/storage"
)

const testWorkspace = "ws-1"

// fakeBackend wraps a real in-process backend and can fail, count or hold
// individual calls
type fakeBackend struct {
	Backend

	mu      sync.Mutex
	fail    map[string]error
	calls   map[string]int
	hold    map[string]chan struct{}
	entered chan string
}

func (b *fakeBackend) enter(method string) error {
	b.mu.Lock()
	b.calls[method]++
	err := b.fail[method]
	release := b.hold[method]
	delete(b.hold, method)
	b.mu.Unlock()
	if release != nil {
		b.entered <- method
		<-release
	}
	return err
}

// failOn makes every later call to method fail with err (nil clears it)
func (b *fakeBackend) failOn(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, method)
		return
	}
	b.fail[method] = err
}

// holdNext blocks the next call to method until the returned channel closes
func (b *fakeBackend) holdNext(method string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	release := make(chan struct{})
	b.hold[method] = release
	return release
}

func (b *fakeBackend) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *fakeBackend) ListWorkspaceFolders(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	if err := b.enter("ListWorkspaceFolders"); err != nil {
		return nil, err
	}
	return b.Backend.ListWorkspaceFolders(ctx, workspaceID)
}

func (b *fakeBackend) ListWorkspaceAssets(ctx context.Context, workspaceID string) ([]models.Asset, error) {
	if err := b.enter("ListWorkspaceAssets"); err != nil {
		return nil, err
	}
	return b.Backend.ListWorkspaceAssets(ctx, workspaceID)
}

func (b *fakeBackend) CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*models.Folder, error) {
	if err := b.enter("CreateFolder"); err != nil {
		return nil, err
	}
	return b.Backend.CreateFolder(ctx, req)
}

func (b *fakeBackend) UpdateFolder(ctx context.Context, id string, req *svc.UpdateFolderRequest) (*models.Folder, error) {
	if err := b.enter("UpdateFolder"); err != nil {
		return nil, err
	}
	return b.Backend.UpdateFolder(ctx, id, req)
}

func (b *fakeBackend) DeleteFolder(ctx context.Context, id string) error {
	if err := b.enter("DeleteFolder"); err != nil {
		return err
	}
	return b.Backend.DeleteFolder(ctx, id)
}

func (b *fakeBackend) MoveFolder(ctx context.Context, req *svc.MoveFolderRequest) (*models.Folder, error) {
	if err := b.enter("MoveFolder"); err != nil {
		return nil, err
	}
	return b.Backend.MoveFolder(ctx, req)
}

func (b *fakeBackend) DeleteAsset(ctx context.Context, id string) error {
	if err := b.enter("DeleteAsset"); err != nil {
		return err
	}
	return b.Backend.DeleteAsset(ctx, id)
}

func (b *fakeBackend) MoveAsset(ctx context.Context, req *svc.MoveAssetRequest) (*models.Asset, error) {
	if err := b.enter("MoveAsset"); err != nil {
		return nil, err
	}
	return b.Backend.MoveAsset(ctx, req)
}

func (b *fakeBackend) Image(ctx context.Context, assetID string) ([]byte, error) {
	if err := b.enter("Image"); err != nil {
		return nil, err
	}
	return b.Backend.Image(ctx, assetID)
}

func (b *fakeBackend) CopyFolders(ctx context.Context, req *svc.CopyFoldersRequest) (*svc.CopyResult, error) {
	if err := b.enter("CopyFolders"); err != nil {
		return nil, err
	}
	return b.Backend.CopyFolders(ctx, req)
}

type harness struct {
	backend *fakeBackend
	blobs   *storage.MemoryStore
	repos   vaultRepo.RepositoryRepository
	folders vaultRepo.FolderRepository
	assets  vaultRepo.AssetRepository
	session *Session
}

func newHarness(t *testing.T, imageCacheSize int) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	blobs := storage.NewMemoryStore()
	repos := memory.NewRepositoryRepository(store)
	folders := memory.NewFolderRepository(store)
	assets := memory.NewAssetRepository(store)

	backend := &fakeBackend{
		Backend: NewServiceBackend(
			vaultService.NewFolderService(repos, folders, assets, blobs, store, logger),
			vaultService.NewAssetService(repos, folders, assets, blobs, logger),
			vaultService.NewCopyService(repos, folders, assets, blobs, logger),
			vaultService.NewMoveService(repos, folders, assets, store, logger),
		),
		fail:    map[string]error{},
		calls:   map[string]int{},
		hold:    map[string]chan struct{}{},
		entered: make(chan string, 1),
	}
	s, err := New(backend, Config{WorkspaceID: testWorkspace, ImageCacheSize: imageCacheSize}, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &harness{backend: backend, blobs: blobs, repos: repos, folders: folders, assets: assets, session: s}
}

func (h *harness) repo(t *testing.T, name string) *models.Repository {
	t.Helper()
	r := &models.Repository{WorkspaceID: testWorkspace, OwnerID: "user-1", Name: name}
	if err := h.repos.Create(context.Background(), r); err != nil {
		t.Fatalf("create repository: %v", err)
	}
	return r
}

func (h *harness) folder(t *testing.T, repoID string, parent *string, name string) *models.Folder {
	t.Helper()
	f := &models.Folder{RepositoryID: repoID, ParentID: parent, Name: name}
	if err := h.folders.Create(context.Background(), f); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	return f
}

func (h *harness) asset(t *testing.T, repoID string, folderID *string, name string) *models.Asset {
	t.Helper()
	ctx := context.Background()
	path := fmt.Sprintf("%s/%s.png", repoID, name)
	if err := h.blobs.Put(ctx, path, []byte("png:"+name), "image/png"); err != nil {
		t.Fatalf("put blob: %v", err)
	}
	a := &models.Asset{
		RepositoryID: repoID,
		FolderID:     folderID,
		StoragePath:  path,
		Metadata:     map[string]any{models.MetadataName: name},
	}
	if err := h.assets.Create(ctx, a); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return a
}

// warm loads every list a mutation on repoIDs could touch
func (h *harness) warm(t *testing.T, repoIDs ...string) {
	t.Helper()
	ctx := context.Background()
	s := h.session
	if _, err := s.WorkspaceFolders(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if _, err := s.WorkspaceAssets(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	for _, id := range repoIDs {
		if _, err := s.Folders(ctx, id); err != nil {
			t.Fatalf("warm: %v", err)
		}
		if _, err := s.Assets(ctx, id); err != nil {
			t.Fatalf("warm: %v", err)
		}
	}
}
