package session

import (
	"context"
	"slices"

	"assetvault/internal/cache"
	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
)

// CopyToClipboard replaces the clipboard contents
func (s *Session) CopyToClipboard(entry models.ClipboardEntry) error {
	switch entry.Kind {
	case models.KindAsset, models.KindFolder, models.KindRepository:
	default:
		return domain.NewValidationError("cannot copy a %q", entry.Kind)
	}
	if err := validateID(string(entry.Kind), entry.ID); err != nil {
		return err
	}
	if entry.Kind == models.KindRepository {
		entry.SourceRepositoryID = entry.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = &entry
	return nil
}

// Clipboard returns the copied item, if any
func (s *Session) Clipboard() (models.ClipboardEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clipboard == nil {
		return models.ClipboardEntry{}, false
	}
	return *s.clipboard, true
}

// ClearClipboard empties the clipboard
func (s *Session) ClearClipboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = nil
}

// Paste copies the clipboard item under folderID (nil = root) of a
// repository. A successful paste clears the clipboard; a failed one keeps it.
func (s *Session) Paste(ctx context.Context, repositoryID string, folderID *string) (*svc.CopyResult, error) {
	entry, ok := s.Clipboard()
	if !ok {
		return nil, domain.NewValidationError("clipboard is empty")
	}
	if err := validateID("repository", repositoryID); err != nil {
		return nil, err
	}
	if folderID != nil {
		if err := validateID("folder", *folderID); err != nil {
			return nil, err
		}
	}

	var (
		result *svc.CopyResult
		err    error
	)
	switch entry.Kind {
	case models.KindFolder:
		result, err = s.backend.CopyFolders(ctx, &svc.CopyFoldersRequest{
			FolderIDs:          []string{entry.ID},
			TargetRepositoryID: repositoryID,
			TargetParentID:     folderID,
		})
	case models.KindAsset:
		result, err = s.backend.CopyAssets(ctx, &svc.CopyAssetsRequest{
			AssetIDs:           []string{entry.ID},
			TargetRepositoryID: repositoryID,
			TargetFolderID:     folderID,
		})
	case models.KindRepository:
		result, err = s.backend.CopyRepositoryAsFolder(ctx, &svc.RepositoryAsFolderRequest{
			SourceRepositoryID: entry.ID,
			TargetRepositoryID: repositoryID,
			TargetParentID:     folderID,
		})
	}
	if err != nil {
		s.logger.Warn("paste failed", "kind", entry.Kind, "id", entry.ID, "error", err)
		return nil, err
	}

	keys := []cache.Key{
		cache.FoldersInWorkspace(s.workspaceID),
		cache.FoldersInRepository(repositoryID),
		cache.AssetsInWorkspace(s.workspaceID),
		cache.AssetsInRepository(repositoryID),
		cache.AssetsInFolder(repositoryID, deref(folderID)),
	}
	for _, f := range result.Folders {
		keys = append(keys, cache.AssetsInFolder(repositoryID, f.ID))
	}
	s.cache.Invalidate(keys...)

	s.mu.Lock()
	if s.clipboard != nil && *s.clipboard == entry {
		s.clipboard = nil
	}
	s.mu.Unlock()

	if len(result.Skipped) > 0 {
		s.logger.Warn("paste skipped assets", "skipped", len(result.Skipped))
	}
	return result, nil
}

// Select replaces the selection. Duplicates are dropped, order is kept.
func (s *Session) Select(items ...models.DragItem) {
	selection := make([]models.DragItem, 0, len(items))
	for _, it := range items {
		if !slices.Contains(selection, it) {
			selection = append(selection, it)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = selection
}

// Selection returns the selected items
func (s *Session) Selection() []models.DragItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// forget drops deleted records from the selection, the clipboard and the
// image cache
func (s *Session) forget(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		s.images.Remove(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = slices.DeleteFunc(s.selection, func(it models.DragItem) bool { return gone[it.ID] })
	if s.clipboard != nil && gone[s.clipboard.ID] {
		s.clipboard = nil
	}
}
