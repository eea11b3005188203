// Package seed loads demo repositories from YAML fixtures through the
// regular services, so seeded data obeys the same rules as user data.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/storage"
)

// Stats counts what a run created
type Stats struct {
	Repositories int
	Folders      int
	Assets       int
	Skipped      int // repositories that already existed
}

// Seeder creates fixture records through the vault services
type Seeder struct {
	repoService   svc.RepositoryService
	folderService svc.FolderService
	assetService  svc.AssetService
	blobs         storage.BlobStore
	baseDir       string // resolves relative asset files
	logger        *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(
	repoService svc.RepositoryService,
	folderService svc.FolderService,
	assetService svc.AssetService,
	blobs storage.BlobStore,
	baseDir string,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		repoService:   repoService,
		folderService: folderService,
		assetService:  assetService,
		blobs:         blobs,
		baseDir:       baseDir,
		logger:        logger,
	}
}

// Apply creates every repository of the fixture. A repository whose name is
// already taken in the workspace is left untouched.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Stats, error) {
	var stats Stats
	for _, rf := range f.Repositories {
		repo, err := s.repoService.CreateRepository(ctx, &svc.CreateRepositoryRequest{
			WorkspaceID: f.WorkspaceID,
			OwnerID:     f.OwnerID,
			Name:        rf.Name,
			Description: optional(rf.Description),
			IsPublic:    rf.Public,
		})
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Info("repository exists, skipping", "name", rf.Name)
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("create repository %q: %w", rf.Name, err)
		}
		stats.Repositories++

		if err := s.fill(ctx, repo, nil, rf.Folders, rf.Assets, &stats); err != nil {
			return stats, fmt.Errorf("seed repository %q: %w", rf.Name, err)
		}
		s.logger.Info("repository seeded", "id", repo.ID, "name", repo.Name)
	}
	return stats, nil
}

// fill creates assets then folders under parentID, depth-first
func (s *Seeder) fill(ctx context.Context, repo *models.Repository, parentID *string, folders []FolderFixture, assets []AssetFixture, stats *Stats) error {
	for _, af := range assets {
		if err := s.createAsset(ctx, repo.ID, parentID, af); err != nil {
			return err
		}
		stats.Assets++
	}
	for _, ff := range folders {
		folder, err := s.folderService.CreateFolder(ctx, &svc.CreateFolderRequest{
			RepositoryID: repo.ID,
			ParentID:     parentID,
			Name:         ff.Name,
			Description:  optional(ff.Description),
		})
		if err != nil {
			return fmt.Errorf("create folder %q: %w", ff.Name, err)
		}
		stats.Folders++
		if err := s.fill(ctx, repo, &folder.ID, ff.Folders, ff.Assets, stats); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createAsset(ctx context.Context, repoID string, folderID *string, af AssetFixture) error {
	data, width, height, err := s.imageBytes(af)
	if err != nil {
		return fmt.Errorf("asset %q: %w", af.Name, err)
	}

	objectPath := storage.NewObjectPath(repoID, af.Name+".png")
	if af.File != "" {
		objectPath = storage.NewObjectPath(repoID, af.File)
	}
	if err := s.blobs.Put(ctx, objectPath, data, http.DetectContentType(data)); err != nil {
		return fmt.Errorf("upload %q: %w", af.Name, err)
	}

	_, err = s.assetService.CreateAsset(ctx, &svc.CreateAssetRequest{
		RepositoryID: repoID,
		FolderID:     folderID,
		Name:         af.Name,
		StoragePath:  objectPath,
		Width:        width,
		Height:       height,
		Tags:         af.Tags,
		Metadata:     map[string]any{"seeded": true},
	})
	if err != nil {
		_ = s.blobs.Delete(ctx, objectPath)
		return fmt.Errorf("create asset %q: %w", af.Name, err)
	}
	return nil
}

// imageBytes reads the fixture file, or renders a placeholder
func (s *Seeder) imageBytes(af AssetFixture) ([]byte, int, int, error) {
	if af.File != "" {
		data, err := os.ReadFile(filepath.Join(s.baseDir, af.File))
		if err != nil {
			return nil, 0, 0, err
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("read image size: %w", err)
		}
		return data, cfg.Width, cfg.Height, nil
	}

	width, height := af.Width, af.Height
	if width <= 0 {
		width = 64
	}
	if height <= 0 {
		height = 64
	}
	fill, err := parseColor(af.Color)
	if err != nil {
		return nil, 0, 0, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), width, height, nil
}

func parseColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(hex, "#")) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
