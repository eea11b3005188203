package dnd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
)

type fakeLocator struct {
	folders map[string]*models.Folder
	assets  map[string]*models.Asset
	lookups int
	failOn  string
}

func newFakeLocator() *fakeLocator {
	return &fakeLocator{folders: map[string]*models.Folder{}, assets: map[string]*models.Asset{}}
}

func (l *fakeLocator) folder(repoID, id string, parent *string) {
	l.folders[id] = &models.Folder{ID: id, RepositoryID: repoID, ParentID: parent, Name: id}
}

func (l *fakeLocator) Folder(ctx context.Context, id string) (*models.Folder, error) {
	l.lookups++
	if id == l.failOn {
		return nil, errors.New("connection reset")
	}
	f, ok := l.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	return f, nil
}

func (l *fakeLocator) Asset(ctx context.Context, id string) (*models.Asset, error) {
	l.lookups++
	a, ok := l.assets[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("asset %s not found", id)}
	}
	return a, nil
}

func ptr(s string) *string { return &s }

// chain builds r1: a > b > c > d
func chain() *fakeLocator {
	l := newFakeLocator()
	l.folder("r1", "a", nil)
	l.folder("r1", "b", ptr("a"))
	l.folder("r1", "c", ptr("b"))
	l.folder("r1", "d", ptr("c"))
	l.folder("r1", "e", nil)
	l.assets["x"] = &models.Asset{ID: "x", RepositoryID: "r1", FolderID: ptr("b")}
	return l
}

func TestResolve(t *testing.T) {
	folder := func(id string) models.DragItem { return models.DragItem{Kind: models.KindFolder, ID: id} }
	asset := func(id string) models.DragItem { return models.DragItem{Kind: models.KindAsset, ID: id} }
	intoFolder := func(id string) models.DropTarget { return models.DropTarget{Kind: models.KindFolder, ID: id} }
	intoRepo := func(id string) models.DropTarget { return models.DropTarget{Kind: models.KindRepository, ID: id} }

	tests := []struct {
		name     string
		item     models.DragItem
		target   models.DropTarget
		wantErr  error
		wantNoOp bool
		wantRepo string
		wantTo   *string
	}{
		{name: "folder into sibling", item: folder("e"), target: intoFolder("a"), wantRepo: "r1", wantTo: ptr("a")},
		{name: "folder to other repository root", item: folder("b"), target: intoRepo("r2"), wantRepo: "r2"},
		{name: "root folder onto own repository", item: folder("a"), target: intoRepo("r1"), wantNoOp: true, wantRepo: "r1"},
		{name: "folder onto own parent", item: folder("c"), target: intoFolder("b"), wantNoOp: true, wantRepo: "r1", wantTo: ptr("b")},
		{name: "asset onto own folder", item: asset("x"), target: intoFolder("b"), wantNoOp: true, wantRepo: "r1", wantTo: ptr("b")},
		{name: "asset to repository root", item: asset("x"), target: intoRepo("r1"), wantRepo: "r1"},
		{name: "folder onto itself", item: folder("a"), target: intoFolder("a"), wantErr: ErrSelfDrop},
		{name: "folder into child", item: folder("a"), target: intoFolder("b"), wantErr: ErrCycle},
		{name: "folder into deep descendant", item: folder("a"), target: intoFolder("d"), wantErr: ErrCycle},
		{name: "missing target", item: folder("a"), target: intoFolder("zz"), wantErr: domain.ErrNotFound},
		{name: "missing item", item: asset("zz"), target: intoRepo("r1"), wantErr: domain.ErrNotFound},
		{name: "drag a repository", item: models.DragItem{Kind: models.KindRepository, ID: "r1"}, target: intoRepo("r2"), wantErr: domain.ErrValidation},
		{name: "drop onto an asset", item: folder("a"), target: models.DropTarget{Kind: models.KindAsset, ID: "x"}, wantErr: domain.ErrValidation},
		{name: "empty id", item: folder(""), target: intoRepo("r1"), wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconciler(chain())
			got, err := r.Resolve(context.Background(), tt.item, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got.NoOp != tt.wantNoOp {
				t.Errorf("NoOp = %v, want %v", got.NoOp, tt.wantNoOp)
			}
			if got.ToRepositoryID != tt.wantRepo {
				t.Errorf("ToRepositoryID = %s, want %s", got.ToRepositoryID, tt.wantRepo)
			}
			if !models.SameParent(got.ToFolderID, tt.wantTo) {
				t.Errorf("ToFolderID = %v, want %v", got.ToFolderID, tt.wantTo)
			}
		})
	}
}

func TestResolve_SelfDropSkipsLookups(t *testing.T) {
	l := chain()
	r := NewReconciler(l)
	_, err := r.Resolve(context.Background(),
		models.DragItem{Kind: models.KindFolder, ID: "missing"},
		models.DropTarget{Kind: models.KindFolder, ID: "missing"})
	if !errors.Is(err, ErrSelfDrop) {
		t.Fatalf("error = %v, want ErrSelfDrop", err)
	}
	if l.lookups != 0 {
		t.Errorf("lookups = %d, want 0", l.lookups)
	}
}

func TestResolve_DanglingParentEndsWalk(t *testing.T) {
	l := chain()
	l.folder("r1", "orphan", ptr("deleted"))
	r := NewReconciler(l)

	got, err := r.Resolve(context.Background(),
		models.DragItem{Kind: models.KindFolder, ID: "a"},
		models.DropTarget{Kind: models.KindFolder, ID: "orphan"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.NoOp || got.ToFolderID == nil || *got.ToFolderID != "orphan" {
		t.Errorf("intent = %+v", got)
	}
}

func TestResolve_LookupFailurePropagates(t *testing.T) {
	l := chain()
	l.failOn = "b"
	r := NewReconciler(l)

	_, err := r.Resolve(context.Background(),
		models.DragItem{Kind: models.KindFolder, ID: "e"},
		models.DropTarget{Kind: models.KindFolder, ID: "c"})
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want the lookup failure", err)
	}
}

func TestResolve_CyclicDataTerminates(t *testing.T) {
	l := newFakeLocator()
	l.folder("r1", "p", ptr("q"))
	l.folder("r1", "q", ptr("p"))
	l.folder("r1", "m", nil)
	r := NewReconciler(l)

	got, err := r.Resolve(context.Background(),
		models.DragItem{Kind: models.KindFolder, ID: "m"},
		models.DropTarget{Kind: models.KindFolder, ID: "p"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.NoOp {
		t.Error("unexpected no-op")
	}
}
