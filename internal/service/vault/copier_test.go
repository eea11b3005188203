package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/repository/memory"
)

// seedLibrary builds: Brand{logo, Colors{swatch1, swatch2, Dark{swatch3}}}, Icons{}
func seedLibrary(t *testing.T, h *harness, repoID string) {
	t.Helper()
	brand := h.folder(t, repoID, nil, "Brand", 0)
	h.folder(t, repoID, nil, "Icons", 1)
	h.asset(t, repoID, &brand.ID, "logo", 0)
	colors := h.folder(t, repoID, &brand.ID, "Colors", 0)
	h.asset(t, repoID, &colors.ID, "swatch2", 1)
	h.asset(t, repoID, &colors.ID, "swatch1", 0)
	dark := h.folder(t, repoID, &colors.ID, "Dark", 0)
	h.asset(t, repoID, &dark.ID, "swatch3", 0)
}

func TestCopyFolders_StructuralFidelity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	source := h.repo(t, "Source")
	target := h.repo(t, "Target")
	seedLibrary(t, h, source.ID)

	roots, err := h.folders.ListChildren(ctx, source.ID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	ids := []string{roots[0].ID, roots[1].ID}

	result, err := h.copySvc.CopyFolders(ctx, &svc.CopyFoldersRequest{
		FolderIDs:          ids,
		TargetRepositoryID: target.ID,
	})
	if err != nil {
		t.Fatalf("CopyFolders() error = %v", err)
	}

	if len(result.Folders) != 4 || len(result.Assets) != 4 || len(result.Skipped) != 0 {
		t.Fatalf("copied %d folders, %d assets, %d skipped; want 4, 4, 0",
			len(result.Folders), len(result.Assets), len(result.Skipped))
	}

	srcTree, dstTree := h.tree(t, source.ID), h.tree(t, target.ID)
	if got, want := shape(dstTree), shape(srcTree); got != want {
		t.Errorf("copied tree differs from source\n got: %s\nwant: %s", got, want)
	}

	sourceAssets, _ := h.assets.ListByRepository(ctx, source.ID)
	sourcePaths := map[string]bool{}
	for _, a := range sourceAssets {
		sourcePaths[a.StoragePath] = true
	}
	for _, a := range result.Assets {
		if sourcePaths[a.StoragePath] {
			t.Errorf("asset copy %s shares blob %s with its source", a.ID, a.StoragePath)
		}
		if !h.blobs.Has(a.StoragePath) {
			t.Errorf("asset copy %s points at missing blob %s", a.ID, a.StoragePath)
		}
		if a.RepositoryID != target.ID {
			t.Errorf("asset copy %s in repository %s, want %s", a.ID, a.RepositoryID, target.ID)
		}
	}
	for _, id := range ids {
		if _, ok := result.FolderMap[id]; !ok {
			t.Errorf("folder map missing source %s", id)
		}
	}
}

func TestCopyFolders_FetchesSourceOnce(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Source")
	target := h.repo(t, "Target")

	parent := h.folder(t, source.ID, nil, "level-0", 0)
	root := parent
	for i := 1; i < 8; i++ {
		parent = h.folder(t, source.ID, &parent.ID, "level", 0)
	}

	before := h.store.Calls(memory.OpFolderList)
	if _, err := h.copySvc.CopyFolders(context.Background(), &svc.CopyFoldersRequest{
		FolderIDs:          []string{root.ID},
		TargetRepositoryID: target.ID,
	}); err != nil {
		t.Fatalf("CopyFolders() error = %v", err)
	}

	// one flat fetch of the source plus one sibling lookup at the target root
	if got := h.store.Calls(memory.OpFolderList) - before; got != 2 {
		t.Errorf("folder list queries = %d, want 2 regardless of depth", got)
	}
}

func TestCopyFolders_CopySuffix(t *testing.T) {
	tests := []struct {
		name       string
		sameRepo   bool
		intoParent bool
		wantSuffix bool
	}{
		{name: "same repository, same level", sameRepo: true, wantSuffix: true},
		{name: "same repository, other folder", sameRepo: true, intoParent: true, wantSuffix: false},
		{name: "other repository, root", sameRepo: false, wantSuffix: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			source := h.repo(t, "Source")
			target := source
			if !tt.sameRepo {
				target = h.repo(t, "Target")
			}
			src := h.folder(t, source.ID, nil, "Screens", 0)

			req := &svc.CopyFoldersRequest{FolderIDs: []string{src.ID}, TargetRepositoryID: target.ID}
			if tt.intoParent {
				other := h.folder(t, target.ID, nil, "Archive", 1)
				req.TargetParentID = &other.ID
			}

			result, err := h.copySvc.CopyFolders(context.Background(), req)
			if err != nil {
				t.Fatalf("CopyFolders() error = %v", err)
			}
			got := result.Folders[0].Name
			if hasSuffix := strings.HasSuffix(got, CopySuffix); hasSuffix != tt.wantSuffix {
				t.Errorf("copied name = %q, want suffix %v", got, tt.wantSuffix)
			}
		})
	}
}

func TestCopyFolders_BlobFailureSkipsAsset(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Source")
	target := h.repo(t, "Target")
	f := h.folder(t, source.ID, nil, "Shots", 0)
	good := h.asset(t, source.ID, &f.ID, "good", 0)
	bad := h.asset(t, source.ID, &f.ID, "bad", 1)
	h.asset(t, source.ID, &f.ID, "also-good", 2)
	h.blobs.FailCopy[bad.StoragePath] = errors.New("object store unavailable")

	result, err := h.copySvc.CopyFolders(context.Background(), &svc.CopyFoldersRequest{
		FolderIDs:          []string{f.ID},
		TargetRepositoryID: target.ID,
	})
	if err != nil {
		t.Fatalf("CopyFolders() error = %v, want best-effort success", err)
	}
	if len(result.Assets) != 2 {
		t.Errorf("copied %d assets, want 2", len(result.Assets))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].AssetID != bad.ID {
		t.Errorf("skipped = %+v, want only %s", result.Skipped, bad.ID)
	}
	if result.Assets[0].Metadata[models.MetadataName] != good.Name() {
		t.Errorf("first copy = %v, want %s", result.Assets[0].Metadata, good.Name())
	}
}

func TestCopyFolders_NestedRequestCopiedOnce(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Source")
	target := h.repo(t, "Target")
	parent := h.folder(t, source.ID, nil, "Parent", 0)
	child := h.folder(t, source.ID, &parent.ID, "Child", 0)

	result, err := h.copySvc.CopyFolders(context.Background(), &svc.CopyFoldersRequest{
		FolderIDs:          []string{child.ID, parent.ID},
		TargetRepositoryID: target.ID,
	})
	if err != nil {
		t.Fatalf("CopyFolders() error = %v", err)
	}
	if len(result.Folders) != 2 {
		t.Errorf("copied %d folders, want 2", len(result.Folders))
	}
}

func TestCopyFolders_Validation(t *testing.T) {
	h := newHarness(t)
	a := h.repo(t, "A")
	b := h.repo(t, "B")
	fa := h.folder(t, a.ID, nil, "fa", 0)
	fb := h.folder(t, b.ID, nil, "fb", 0)

	tests := []struct {
		name string
		req  *svc.CopyFoldersRequest
		want error
	}{
		{name: "no folders", req: &svc.CopyFoldersRequest{TargetRepositoryID: b.ID}, want: domain.ErrValidation},
		{name: "no target", req: &svc.CopyFoldersRequest{FolderIDs: []string{fa.ID}}, want: domain.ErrValidation},
		{name: "mixed repositories", req: &svc.CopyFoldersRequest{FolderIDs: []string{fa.ID, fb.ID}, TargetRepositoryID: b.ID}, want: domain.ErrValidation},
		{name: "target folder elsewhere", req: &svc.CopyFoldersRequest{FolderIDs: []string{fa.ID}, TargetRepositoryID: a.ID, TargetParentID: &fb.ID}, want: domain.ErrValidation},
		{name: "unknown folder", req: &svc.CopyFoldersRequest{FolderIDs: []string{"missing"}, TargetRepositoryID: b.ID}, want: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.copySvc.CopyFolders(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCopyAssets_AppendsToTarget(t *testing.T) {
	h := newHarness(t)
	repo := h.repo(t, "Repo")
	f := h.folder(t, repo.ID, nil, "Dest", 0)
	h.asset(t, repo.ID, &f.ID, "existing", 4)
	src := h.asset(t, repo.ID, nil, "loose", 0)

	result, err := h.copySvc.CopyAssets(context.Background(), &svc.CopyAssetsRequest{
		AssetIDs:           []string{src.ID},
		TargetRepositoryID: repo.ID,
		TargetFolderID:     &f.ID,
	})
	if err != nil {
		t.Fatalf("CopyAssets() error = %v", err)
	}
	if len(result.Assets) != 1 {
		t.Fatalf("copied %d assets, want 1", len(result.Assets))
	}
	got := result.Assets[0]
	if got.Position != 5 {
		t.Errorf("position = %d, want 5", got.Position)
	}
	if got.StoragePath == src.StoragePath {
		t.Error("copy shares its source blob")
	}
}

// Design System{Icons, Components{Buttons}} + 2 root assets, forked with
// Components dissolved, gives a flat root of Icons, Buttons and 2 assets.
func TestForkRepository_DesignSystem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	source := h.repo(t, "Design System")
	h.folder(t, source.ID, nil, "Icons", 0)
	components := h.folder(t, source.ID, nil, "Components", 1)
	h.folder(t, source.ID, &components.ID, "Buttons", 0)
	h.asset(t, source.ID, nil, "cover", 0)
	h.asset(t, source.ID, nil, "palette", 1)

	fork, err := h.copySvc.ForkRepository(ctx, &svc.ForkRepositoryRequest{
		SourceRepositoryID: source.ID,
		WorkspaceID:        testWorkspace,
		OwnerID:            "user-2",
		Name:               "My Design System",
		Dissolve:           []string{components.ID},
	})
	if err != nil {
		t.Fatalf("ForkRepository() error = %v", err)
	}

	tr := h.tree(t, fork.Repository.ID)
	var names []string
	for _, f := range tr.Folders {
		names = append(names, f.Name)
		if len(f.Folders) != 0 || len(f.Assets) != 0 {
			t.Errorf("folder %s is not empty: %+v", f.Name, f)
		}
	}
	if strings.Join(names, ",") != "Icons,Buttons" {
		t.Errorf("root folders = %v, want [Icons Buttons]", names)
	}
	if len(tr.Assets) != 2 {
		t.Errorf("root assets = %d, want 2", len(tr.Assets))
	}
	if folders, assets := countTree(tr); folders != 2 || assets != 2 {
		t.Errorf("fork holds %d folders and %d assets, want 2 and 2", folders, assets)
	}

	if fork.Repository.ForkedFromID == nil || *fork.Repository.ForkedFromID != source.ID {
		t.Errorf("forked_from_id = %v, want %s", fork.Repository.ForkedFromID, source.ID)
	}
	updated, _ := h.repos.GetByID(ctx, source.ID)
	if updated.ForkCount != 1 {
		t.Errorf("fork count = %d, want 1", updated.ForkCount)
	}
	if _, ok := fork.Copy.FolderMap[components.ID]; ok {
		t.Error("dissolved folder should have no copy")
	}
}

func TestForkFolder_PromotesContents(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Source")
	seedLibrary(t, h, source.ID)
	roots, _ := h.folders.ListChildren(context.Background(), source.ID, nil)
	brand := roots[0]

	fork, err := h.copySvc.ForkFolder(context.Background(), &svc.ForkFolderRequest{
		FolderID:    brand.ID,
		WorkspaceID: testWorkspace,
		OwnerID:     "user-1",
		Name:        "Brand Kit",
	})
	if err != nil {
		t.Fatalf("ForkFolder() error = %v", err)
	}

	got := shape(h.tree(t, fork.Repository.ID))
	if strings.Contains(got, "Brand{") {
		t.Errorf("forked folder boundary kept: %s", got)
	}
	if !strings.HasPrefix(got, "[logo ") || !strings.Contains(got, "Colors{") {
		t.Errorf("unexpected fork shape: %s", got)
	}
	if folders, assets := countTree(h.tree(t, fork.Repository.ID)); folders != 2 || assets != 4 {
		t.Errorf("fork holds %d folders and %d assets, want 2 and 4", folders, assets)
	}
}

func TestForkRepository_UnknownDissolveFolder(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Source")

	_, err := h.copySvc.ForkRepository(context.Background(), &svc.ForkRepositoryRequest{
		SourceRepositoryID: source.ID,
		WorkspaceID:        testWorkspace,
		OwnerID:            "user-1",
		Name:               "Fork",
		Dissolve:           []string{"not-here"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
	repos, _ := h.repos.List(context.Background(), testWorkspace)
	if len(repos) != 1 {
		t.Errorf("a rejected fork left %d repositories, want 1", len(repos))
	}
}

func TestCopyRepositoryAsFolder(t *testing.T) {
	h := newHarness(t)
	source := h.repo(t, "Library")
	target := h.repo(t, "Workspace Board")
	seedLibrary(t, h, source.ID)
	h.asset(t, source.ID, nil, "readme", 0)

	result, err := h.copySvc.CopyRepositoryAsFolder(context.Background(), &svc.RepositoryAsFolderRequest{
		SourceRepositoryID: source.ID,
		TargetRepositoryID: target.ID,
	})
	if err != nil {
		t.Fatalf("CopyRepositoryAsFolder() error = %v", err)
	}

	tr := h.tree(t, target.ID)
	if len(tr.Folders) != 1 || tr.Folders[0].Name != "Library" {
		t.Fatalf("target root = %s, want one Library folder", shape(tr))
	}
	wrapped := &models.Tree{Folders: tr.Folders[0].Folders, Assets: tr.Folders[0].Assets}
	if got, want := shape(wrapped), shape(h.tree(t, source.ID)); got != want {
		t.Errorf("wrapped contents differ\n got: %s\nwant: %s", got, want)
	}
	if len(result.Assets) != 5 {
		t.Errorf("copied %d assets, want 5", len(result.Assets))
	}
	if _, err := h.repos.GetByID(context.Background(), source.ID); err != nil {
		t.Errorf("source repository should survive a copy: %v", err)
	}
}

func TestMoveRepositoryInto_Completeness(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	source := h.repo(t, "Old")
	target := h.repo(t, "New")
	seedLibrary(t, h, source.ID)
	h.asset(t, source.ID, nil, "loose", 0)
	before := shape(h.tree(t, source.ID))
	sourceFolders, _ := h.folders.ListByRepository(ctx, source.ID)
	sourceAssets, _ := h.assets.ListByRepository(ctx, source.ID)

	result, err := h.copySvc.MoveRepositoryInto(ctx, &svc.RepositoryAsFolderRequest{
		SourceRepositoryID: source.ID,
		TargetRepositoryID: target.ID,
	})
	if err != nil {
		t.Fatalf("MoveRepositoryInto() error = %v", err)
	}

	if result.FoldersMoved != len(sourceFolders) || result.AssetsMoved != len(sourceAssets) {
		t.Errorf("moved %d folders and %d assets, want %d and %d",
			result.FoldersMoved, result.AssetsMoved, len(sourceFolders), len(sourceAssets))
	}
	for _, f := range sourceFolders {
		got, err := h.folders.GetByID(ctx, f.ID)
		if err != nil || got.RepositoryID != target.ID {
			t.Errorf("folder %s: repository = %v (err %v), want %s", f.Name, got, err, target.ID)
		}
	}
	for _, a := range sourceAssets {
		got, err := h.assets.GetByID(ctx, a.ID)
		if err != nil || got.RepositoryID != target.ID {
			t.Errorf("asset %s not in target (err %v)", a.ID, err)
		}
		if got != nil && got.StoragePath != a.StoragePath {
			t.Errorf("asset %s blob changed on move", a.ID)
		}
	}
	if _, err := h.repos.GetByID(ctx, source.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("source repository still exists (err %v)", err)
	}

	tr := h.tree(t, target.ID)
	if len(tr.Folders) != 1 || tr.Folders[0].ID != result.Wrapper.ID {
		t.Fatalf("target root = %s, want only the wrapper", shape(tr))
	}
	inner := &models.Tree{Folders: tr.Folders[0].Folders, Assets: tr.Folders[0].Assets}
	if got := shape(inner); got != before {
		t.Errorf("nesting changed by move\n got: %s\nwant: %s", got, before)
	}
	if h.blobs.Copies() != 0 {
		t.Errorf("move copied %d blobs, want none", h.blobs.Copies())
	}
}

func TestMoveRepositoryInto_StepFailureKeepsSource(t *testing.T) {
	tests := []struct {
		name      string
		failOp    string
		wantStep  string
		completed int
	}{
		{name: "folders", failOp: memory.OpFolderReassign, wantStep: StepReassignFolders, completed: 1},
		{name: "assets", failOp: memory.OpAssetReassign, wantStep: StepReassignAssets, completed: 2},
		{name: "reparent", failOp: memory.OpFolderSetParent, wantStep: StepReparentRoots, completed: 3},
		{name: "delete", failOp: memory.OpRepositoryDelete, wantStep: StepDeleteRepository, completed: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			source := h.repo(t, "Old")
			target := h.repo(t, "New")
			seedLibrary(t, h, source.ID)
			boom := errors.New("permission denied")
			h.store.FailOn(tt.failOp, boom)

			_, err := h.copySvc.MoveRepositoryInto(context.Background(), &svc.RepositoryAsFolderRequest{
				SourceRepositoryID: source.ID,
				TargetRepositoryID: target.ID,
			})

			var stepErr *domain.StepError
			if !errors.As(err, &stepErr) {
				t.Fatalf("error = %v, want StepError", err)
			}
			if stepErr.Step != tt.wantStep || len(stepErr.Completed) != tt.completed {
				t.Errorf("step = %q after %v, want %q after %d steps", stepErr.Step, stepErr.Completed, tt.wantStep, tt.completed)
			}
			if !errors.Is(err, boom) {
				t.Errorf("cause lost: %v", err)
			}
			if _, err := h.repos.GetByID(context.Background(), source.ID); err != nil {
				t.Errorf("source repository deleted after failed step: %v", err)
			}
			if calls := h.store.Calls(memory.OpRepositoryDelete); tt.failOp != memory.OpRepositoryDelete && calls != 0 {
				t.Errorf("delete attempted %d times after an earlier failure", calls)
			}
		})
	}
}
