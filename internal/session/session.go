// Package session is the client core a UI embeds: cached reads, optimistic
// mutations, drag-and-drop, the clipboard, the selection and the image cache.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"assetvault/internal/cache"
	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/service/vault/dnd"
	"assetvault/internal/tree"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultImageCacheSize is the number of decoded images kept per session
const DefaultImageCacheSize = 64

// Config configures a session
type Config struct {
	WorkspaceID    string
	ImageCacheSize int
}

// Session is the state one user's client holds for a workspace
type Session struct {
	workspaceID string
	backend     Backend
	cache       *cache.QueryCache
	reconciler  *dnd.Reconciler
	images      *lru.Cache[string, []byte]
	logger      *slog.Logger

	mu        sync.Mutex
	clipboard *models.ClipboardEntry
	selection []models.DragItem
}

// New creates a session for one workspace
func New(backend Backend, cfg Config, logger *slog.Logger) (*Session, error) {
	if cfg.WorkspaceID == "" {
		return nil, domain.NewValidationError("workspace id is required")
	}
	size := cfg.ImageCacheSize
	if size <= 0 {
		size = DefaultImageCacheSize
	}
	images, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}

	s := &Session{
		workspaceID: cfg.WorkspaceID,
		backend:     backend,
		cache:       cache.New(logger),
		images:      images,
		logger:      logger.With("workspace_id", cfg.WorkspaceID),
	}
	s.reconciler = dnd.NewReconciler(&cacheLocator{s: s})
	return s, nil
}

// Cache exposes the query cache, mainly so a UI can subscribe to staleness
func (s *Session) Cache() *cache.QueryCache {
	return s.cache
}

// WorkspaceFolders lists every folder in the workspace
func (s *Session) WorkspaceFolders(ctx context.Context) ([]models.Folder, error) {
	return cache.Load(ctx, s.cache, cache.FoldersInWorkspace(s.workspaceID), func(ctx context.Context) ([]models.Folder, error) {
		return s.backend.ListWorkspaceFolders(ctx, s.workspaceID)
	})
}

// Folders lists every folder of a repository
func (s *Session) Folders(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	return cache.Load(ctx, s.cache, cache.FoldersInRepository(repositoryID), func(ctx context.Context) ([]models.Folder, error) {
		return s.backend.ListFolders(ctx, repositoryID)
	})
}

// WorkspaceAssets lists every asset in the workspace
func (s *Session) WorkspaceAssets(ctx context.Context) ([]models.Asset, error) {
	return cache.Load(ctx, s.cache, cache.AssetsInWorkspace(s.workspaceID), func(ctx context.Context) ([]models.Asset, error) {
		return s.backend.ListWorkspaceAssets(ctx, s.workspaceID)
	})
}

// Assets lists every asset of a repository
func (s *Session) Assets(ctx context.Context, repositoryID string) ([]models.Asset, error) {
	return cache.Load(ctx, s.cache, cache.AssetsInRepository(repositoryID), func(ctx context.Context) ([]models.Asset, error) {
		return s.backend.ListAssets(ctx, repositoryID)
	})
}

// FolderAssets lists the assets directly inside a folder (nil = repository root)
func (s *Session) FolderAssets(ctx context.Context, repositoryID string, folderID *string) ([]models.Asset, error) {
	return cache.Load(ctx, s.cache, cache.AssetsInFolder(repositoryID, deref(folderID)), func(ctx context.Context) ([]models.Asset, error) {
		return s.backend.ListFolderAssets(ctx, repositoryID, folderID)
	})
}

// Tree builds a repository tree from the cached flat lists
func (s *Session) Tree(ctx context.Context, repositoryID string) (*models.Tree, error) {
	folders, err := s.Folders(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	assets, err := s.Assets(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	t := tree.Build(folders, assets)
	tree.Sort(t, tree.OrderByPosition)
	return t, nil
}

// AssetImage returns an asset's image bytes, from the LRU when possible
func (s *Session) AssetImage(ctx context.Context, assetID string) ([]byte, error) {
	if data, ok := s.images.Get(assetID); ok {
		return data, nil
	}
	data, err := s.backend.Image(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if evicted := s.images.Add(assetID, data); evicted {
		s.logger.Debug("image cache evicted oldest entry", "size", s.images.Len())
	}
	return data, nil
}

// cached returns whatever key holds, stale or not, and loads only when it
// holds nothing. Mutations read through it so an optimistic write never waits
// on a refetch.
func cached[T any](ctx context.Context, s *Session, key cache.Key, load func(ctx context.Context) (T, error)) (T, error) {
	if value, ok := cache.Peek[T](s.cache, key); ok {
		return value, nil
	}
	return cache.Load(ctx, s.cache, key, load)
}

// find looks id up in the list under key. A stale list that lacks id is
// reloaded once, since the record may have been created elsewhere.
func find[E any](ctx context.Context, s *Session, key cache.Key, load func(ctx context.Context) ([]E, error), match func(E) bool) (E, bool, error) {
	list, err := cached(ctx, s, key, load)
	if err != nil {
		var zero E
		return zero, false, err
	}
	if i := slices.IndexFunc(list, match); i >= 0 {
		return list[i], true, nil
	}
	if !s.cache.IsStale(key) {
		var zero E
		return zero, false, nil
	}
	list, err = cache.Load(ctx, s.cache, key, load)
	if err != nil {
		var zero E
		return zero, false, err
	}
	if i := slices.IndexFunc(list, match); i >= 0 {
		return list[i], true, nil
	}
	var zero E
	return zero, false, nil
}

// cacheLocator finds folders and assets in the cached workspace lists
type cacheLocator struct {
	s *Session
}

func (l *cacheLocator) Folder(ctx context.Context, id string) (*models.Folder, error) {
	f, ok, err := find(ctx, l.s, cache.FoldersInWorkspace(l.s.workspaceID), func(ctx context.Context) ([]models.Folder, error) {
		return l.s.backend.ListWorkspaceFolders(ctx, l.s.workspaceID)
	}, folderByID(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	return &f, nil
}

func (l *cacheLocator) Asset(ctx context.Context, id string) (*models.Asset, error) {
	a, ok, err := find(ctx, l.s, cache.AssetsInWorkspace(l.s.workspaceID), func(ctx context.Context) ([]models.Asset, error) {
		return l.s.backend.ListWorkspaceAssets(ctx, l.s.workspaceID)
	}, assetByID(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("asset %s not found", id)}
	}
	return &a, nil
}

// repositoryFolders is Folders without waiting on a reload of a stale list
func (s *Session) repositoryFolders(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	return cached(ctx, s, cache.FoldersInRepository(repositoryID), func(ctx context.Context) ([]models.Folder, error) {
		return s.backend.ListFolders(ctx, repositoryID)
	})
}

func deref(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
