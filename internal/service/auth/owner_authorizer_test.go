package auth

import (
	"context"
	"errors"
	"testing"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/repository/memory"
)

func TestOwnerBasedAuthorizer(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := memory.NewRepositoryRepository(store)
	folders := memory.NewFolderRepository(store)
	assets := memory.NewAssetRepository(store)
	a := NewOwnerBasedAuthorizer(repos, folders, assets)

	private := &models.Repository{WorkspaceID: "ws", OwnerID: "owner", Name: "private"}
	public := &models.Repository{WorkspaceID: "ws", OwnerID: "owner", Name: "public", IsPublic: true}
	for _, r := range []*models.Repository{private, public} {
		if err := repos.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	pubFolder := &models.Folder{RepositoryID: public.ID, Name: "f"}
	if err := folders.Create(ctx, pubFolder); err != nil {
		t.Fatal(err)
	}
	privAsset := &models.Asset{RepositoryID: private.ID, StoragePath: "p"}
	if err := assets.Create(ctx, privAsset); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		check func() error
		want  error
	}{
		{name: "owner writes private", check: func() error { return a.CanWriteRepository(ctx, "owner", private.ID) }},
		{name: "stranger reads private", check: func() error { return a.CanReadRepository(ctx, "stranger", private.ID) }, want: domain.ErrForbidden},
		{name: "stranger reads public", check: func() error { return a.CanReadRepository(ctx, "stranger", public.ID) }},
		{name: "stranger writes public", check: func() error { return a.CanWriteRepository(ctx, "stranger", public.ID) }, want: domain.ErrForbidden},
		{name: "stranger reads public folder", check: func() error { return a.CanReadFolder(ctx, "stranger", pubFolder.ID) }},
		{name: "stranger writes public folder", check: func() error { return a.CanWriteFolder(ctx, "stranger", pubFolder.ID) }, want: domain.ErrForbidden},
		{name: "owner reads private asset", check: func() error { return a.CanReadAsset(ctx, "owner", privAsset.ID) }},
		{name: "stranger writes private asset", check: func() error { return a.CanWriteAsset(ctx, "stranger", privAsset.ID) }, want: domain.ErrForbidden},
		{name: "missing repository", check: func() error { return a.CanReadRepository(ctx, "owner", "nope") }, want: domain.ErrNotFound},
		{name: "missing folder", check: func() error { return a.CanReadFolder(ctx, "owner", "nope") }, want: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if tt.want == nil && err != nil {
				t.Fatalf("error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
