package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/httputil"
	"assetvault/internal/repository/memory"
	authSvc "assetvault/internal/service/auth"
	vaultSvc "assetvault/internal/service/vault"
	"assetvault/internal/storage"
)

const (
	owner    = "user-owner"
	stranger = "user-stranger"
	ws       = "ws-1"
)

type harness struct {
	store *memory.Store
	blobs *storage.MemoryStore

	repos   *RepositoryHandler
	folders *FolderHandler
	assets  *AssetHandler
	moves   *MoveHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	blobs := storage.NewMemoryStore()
	repoRepo := memory.NewRepositoryRepository(store)
	folderRepo := memory.NewFolderRepository(store)
	assetRepo := memory.NewAssetRepository(store)

	repoService := vaultSvc.NewRepositoryService(repoRepo, folderRepo, assetRepo, blobs, store, logger)
	folderService := vaultSvc.NewFolderService(repoRepo, folderRepo, assetRepo, blobs, store, logger)
	assetService := vaultSvc.NewAssetService(repoRepo, folderRepo, assetRepo, blobs, logger)
	treeService := vaultSvc.NewTreeService(repoRepo, folderRepo, assetRepo, logger)
	copyService := vaultSvc.NewCopyService(repoRepo, folderRepo, assetRepo, blobs, logger)
	moveService := vaultSvc.NewMoveService(repoRepo, folderRepo, assetRepo, store, logger)
	authorizer := authSvc.NewOwnerBasedAuthorizer(repoRepo, folderRepo, assetRepo)

	return &harness{
		store:   store,
		blobs:   blobs,
		repos:   NewRepositoryHandler(repoService, treeService, folderService, assetService, copyService, authorizer, logger),
		folders: NewFolderHandler(folderService, copyService, authorizer, logger),
		assets:  NewAssetHandler(assetService, copyService, authorizer, logger),
		moves:   NewMoveHandler(moveService, authorizer, logger),
	}
}

// call runs one handler as userID; id fills the {id} path value
func call(t *testing.T, h http.HandlerFunc, method, userID, id string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, "/", reader)
	if id != "" {
		req.SetPathValue("id", id)
	}
	req = httputil.WithUserID(req, userID)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func (h *harness) repo(t *testing.T, name string, public bool) *models.Repository {
	t.Helper()
	r := &models.Repository{WorkspaceID: ws, OwnerID: owner, Name: name, IsPublic: public}
	if err := memory.NewRepositoryRepository(h.store).Create(context.Background(), r); err != nil {
		t.Fatalf("create repository: %v", err)
	}
	return r
}

func (h *harness) folder(t *testing.T, repoID string, parent *string, name string) *models.Folder {
	t.Helper()
	f := &models.Folder{RepositoryID: repoID, ParentID: parent, Name: name}
	if err := memory.NewFolderRepository(h.store).Create(context.Background(), f); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	return f
}

func (h *harness) asset(t *testing.T, repoID string, folderID *string, name string) *models.Asset {
	t.Helper()
	ctx := context.Background()
	path := repoID + "/" + name + ".png"
	if err := h.blobs.Put(ctx, path, []byte("\x89PNG\r\n\x1a\n"+name), "image/png"); err != nil {
		t.Fatalf("put blob: %v", err)
	}
	a := &models.Asset{
		RepositoryID: repoID,
		FolderID:     folderID,
		StoragePath:  path,
		Metadata:     map[string]any{models.MetadataName: name},
	}
	if err := memory.NewAssetRepository(h.store).Create(ctx, a); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return a
}
