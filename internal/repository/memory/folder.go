package memory

import (
	"context"
	"fmt"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
)

type folderRecord = models.Folder

// FolderRepository implements vaultRepo.FolderRepository in memory
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder store view
func NewFolderRepository(store *Store) vaultRepo.FolderRepository {
	return &FolderRepository{store: store}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderCreate); err != nil {
		return err
	}

	if _, ok := s.repos[folder.RepositoryID]; !ok {
		return fmt.Errorf("repository %s: %w", folder.RepositoryID, domain.ErrNotFound)
	}
	if folder.ParentID != nil {
		if _, ok := s.folders[*folder.ParentID]; !ok {
			return fmt.Errorf("parent folder %s: %w", *folder.ParentID, domain.ErrNotFound)
		}
	}

	if folder.ID == "" {
		folder.ID = newID()
	}
	now := s.now()
	folder.CreatedAt, folder.UpdatedAt = now, now
	stored := *folder
	stored.ParentID = cloneStr(folder.ParentID)
	s.folders[folder.ID] = &row[folderRecord]{seq: s.nextSeq(), data: stored}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder := existing.data
	folder.ParentID = cloneStr(existing.data.ParentID)
	return &folder, nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderUpdate); err != nil {
		return err
	}

	existing, ok := s.folders[folder.ID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	if _, ok := s.repos[folder.RepositoryID]; !ok {
		return fmt.Errorf("repository %s: %w", folder.RepositoryID, domain.ErrNotFound)
	}
	if folder.ParentID != nil {
		if *folder.ParentID == folder.ID {
			return fmt.Errorf("folder cannot be its own parent: %w", domain.ErrValidation)
		}
		if _, ok := s.folders[*folder.ParentID]; !ok {
			return fmt.Errorf("parent folder %s: %w", *folder.ParentID, domain.ErrNotFound)
		}
	}

	existing.data.RepositoryID = folder.RepositoryID
	existing.data.ParentID = cloneStr(folder.ParentID)
	existing.data.Name = folder.Name
	existing.data.Description = cloneStr(folder.Description)
	existing.data.Position = folder.Position
	existing.data.UpdatedAt = s.now()
	folder.UpdatedAt = existing.data.UpdatedAt
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderDelete); err != nil {
		return err
	}

	if _, ok := s.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	for _, f := range s.folders {
		if f.data.ParentID != nil && *f.data.ParentID == id {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
	}
	for _, a := range s.assets {
		if a.data.FolderID != nil && *a.data.FolderID == id {
			return fmt.Errorf("cannot delete folder with assets: %w", domain.ErrConflict)
		}
	}
	delete(s.folders, id)
	return nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, repositoryID string, folderID *string) ([]models.Folder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderList); err != nil {
		return nil, err
	}

	return r.copies(func(f folderRecord) bool {
		return f.RepositoryID == repositoryID && models.SameParent(f.ParentID, folderID)
	}), nil
}

func (r *FolderRepository) ListByRepository(ctx context.Context, repositoryID string) ([]models.Folder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderList); err != nil {
		return nil, err
	}

	return r.copies(func(f folderRecord) bool {
		return f.RepositoryID == repositoryID
	}), nil
}

func (r *FolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderList); err != nil {
		return nil, err
	}

	return r.copies(func(f folderRecord) bool {
		repo, ok := s.repos[f.RepositoryID]
		return ok && repo.data.WorkspaceID == workspaceID
	}), nil
}

func (r *FolderRepository) ReassignRepository(ctx context.Context, fromRepositoryID, toRepositoryID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderReassign); err != nil {
		return 0, err
	}
	if _, ok := s.repos[toRepositoryID]; !ok {
		return 0, fmt.Errorf("repository %s: %w", toRepositoryID, domain.ErrNotFound)
	}

	count := 0
	now := s.now()
	for _, f := range s.folders {
		if f.data.RepositoryID == fromRepositoryID {
			f.data.RepositoryID = toRepositoryID
			f.data.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (r *FolderRepository) SetParent(ctx context.Context, ids []string, parentID *string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpFolderSetParent); err != nil {
		return err
	}

	if parentID != nil {
		if _, ok := s.folders[*parentID]; !ok {
			return fmt.Errorf("parent folder %s: %w", *parentID, domain.ErrNotFound)
		}
	}
	for _, id := range ids {
		if _, ok := s.folders[id]; !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
	}
	now := s.now()
	for _, id := range ids {
		f := s.folders[id]
		f.data.ParentID = cloneStr(parentID)
		f.data.UpdatedAt = now
	}
	return nil
}

// copies returns detached copies so callers cannot mutate stored rows
func (r *FolderRepository) copies(keep func(folderRecord) bool) []models.Folder {
	out := sortedRows(r.store.folders, keep)
	for i := range out {
		out[i].ParentID = cloneStr(out[i].ParentID)
	}
	return out
}
