package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/repository/memory"
	vaultSvc "assetvault/internal/service/vault"
	"assetvault/internal/storage"
	"assetvault/internal/tree"
)

type fixtureEnv struct {
	seeder *Seeder
	repos  svc.RepositoryService
	trees  svc.TreeService
	assets svc.AssetService
}

func newEnv(t *testing.T) *fixtureEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	blobs := storage.NewMemoryStore()
	repoRepo := memory.NewRepositoryRepository(store)
	folderRepo := memory.NewFolderRepository(store)
	assetRepo := memory.NewAssetRepository(store)

	repos := vaultSvc.NewRepositoryService(repoRepo, folderRepo, assetRepo, blobs, store, logger)
	folders := vaultSvc.NewFolderService(repoRepo, folderRepo, assetRepo, blobs, store, logger)
	assets := vaultSvc.NewAssetService(repoRepo, folderRepo, assetRepo, blobs, logger)
	return &fixtureEnv{
		seeder: NewSeeder(repos, folders, assets, blobs, t.TempDir(), logger),
		repos:  repos,
		trees:  vaultSvc.NewTreeService(repoRepo, folderRepo, assetRepo, logger),
		assets: assets,
	}
}

func TestApply_DemoFixture(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	fixture, err := DemoFixture()
	if err != nil {
		t.Fatalf("DemoFixture: %v", err)
	}

	stats, err := env.seeder.Apply(ctx, fixture)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if stats.Repositories != 2 || stats.Folders != 5 || stats.Assets != 7 {
		t.Fatalf("stats = %+v, want 2 repositories, 5 folders, 7 assets", stats)
	}

	repos, err := env.repos.ListRepositories(ctx, fixture.WorkspaceID)
	if err != nil {
		t.Fatal(err)
	}
	var design string
	for _, r := range repos {
		if r.Name == "Design System" {
			design = r.ID
		}
	}
	tr, err := env.trees.GetRepositoryTree(ctx, design)
	if err != nil {
		t.Fatal(err)
	}
	if folders, assets := tree.Count(tr); folders != 4 || assets != 6 {
		t.Errorf("design system tree has %d folders and %d assets, want 4 and 6", folders, assets)
	}
	if len(tr.Assets) != 1 || tr.Assets[0].Width != 320 {
		t.Errorf("root assets = %+v, want the 320px cover", tr.Assets)
	}

	img, err := env.assets.Image(ctx, tr.Assets[0].ID)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if !strings.HasPrefix(string(img), "\x89PNG") {
		t.Error("placeholder is not a PNG")
	}
}

func TestApply_SkipsExistingRepositories(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	fixture, err := DemoFixture()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.seeder.Apply(ctx, fixture); err != nil {
		t.Fatal(err)
	}

	stats, err := env.seeder.Apply(ctx, fixture)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if stats.Skipped != 2 || stats.Repositories != 0 {
		t.Errorf("stats = %+v, want both repositories skipped", stats)
	}
}

func TestLoadFixture(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"minimal", "workspace_id: w\nowner_id: u\n", false},
		{"unknown key", "workspace_id: w\nowner_id: u\nrepos: []\n", true},
		{"missing owner", "workspace_id: w\n", true},
		{"malformed", "workspace_id: [\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(strings.NewReader(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#db2777")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0xdb || c.G != 0x27 || c.B != 0x77 {
		t.Errorf("color = %+v", c)
	}
	if _, err := parseColor("pink"); err == nil {
		t.Error("expected error for non-hex color")
	}
}
