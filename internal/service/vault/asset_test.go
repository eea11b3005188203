package vault

import (
	"context"
	"errors"
	"testing"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
)

func TestCreateAsset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := h.repo(t, "Repo")
	f := h.folder(t, repo.ID, nil, "F", 0)
	h.asset(t, repo.ID, &f.ID, "first", 2)

	got, err := h.assetSvc.CreateAsset(ctx, &svc.CreateAssetRequest{
		RepositoryID: repo.ID,
		FolderID:     &f.ID,
		Name:         "second",
		StoragePath:  "uploads/second.png",
		Width:        10,
		Height:       20,
		Tags:         []string{"wip"},
		Metadata:     map[string]any{"device": "pixel"},
	})
	if err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
	if got.Position != 3 {
		t.Errorf("position = %d, want 3", got.Position)
	}
	if got.Name() != "second" || got.Metadata["device"] != "pixel" {
		t.Errorf("metadata = %v", got.Metadata)
	}

	tests := []struct {
		name string
		req  *svc.CreateAssetRequest
		want error
	}{
		{name: "no storage path", req: &svc.CreateAssetRequest{RepositoryID: repo.ID, Name: "x"}, want: domain.ErrValidation},
		{name: "empty tag", req: &svc.CreateAssetRequest{RepositoryID: repo.ID, Name: "x", StoragePath: "p", Tags: []string{""}}, want: domain.ErrValidation},
		{name: "negative width", req: &svc.CreateAssetRequest{RepositoryID: repo.ID, Name: "x", StoragePath: "p", Width: -1}, want: domain.ErrValidation},
		{name: "unknown folder", req: &svc.CreateAssetRequest{RepositoryID: repo.ID, Name: "x", StoragePath: "p", FolderID: strPtr("nope")}, want: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.assetSvc.CreateAsset(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateAsset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := h.repo(t, "Repo")
	a := h.asset(t, repo.ID, nil, "old", 0)

	name := "new"
	tags := []string{"final"}
	got, err := h.assetSvc.UpdateAsset(ctx, a.ID, &svc.UpdateAssetRequest{Name: &name, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdateAsset() error = %v", err)
	}
	if got.Name() != "new" || len(got.Tags) != 1 || got.Metadata["source"] != "capture" {
		t.Errorf("updated asset = %+v", got)
	}

	stored, _ := h.assets.GetByID(ctx, a.ID)
	if stored.Metadata[models.MetadataName] != "new" {
		t.Errorf("stored name = %v", stored.Metadata[models.MetadataName])
	}
}

func TestDeleteAssetAndImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	repo := h.repo(t, "Repo")
	a := h.asset(t, repo.ID, nil, "shot", 0)

	data, err := h.assetSvc.Image(ctx, a.ID)
	if err != nil || string(data) != "png:shot" {
		t.Fatalf("Image() = %q, %v", data, err)
	}

	if err := h.assetSvc.DeleteAsset(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	if h.blobs.Has(a.StoragePath) {
		t.Error("blob survived delete")
	}
	if _, err := h.assetSvc.Image(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Image() after delete error = %v", err)
	}
}
