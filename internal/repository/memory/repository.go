package memory

import (
	"context"
	"fmt"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
)

type repoRecord = models.Repository

// RepositoryRepository implements vaultRepo.RepositoryRepository in memory
type RepositoryRepository struct {
	store *Store
}

// NewRepositoryRepository creates a repository store view
func NewRepositoryRepository(store *Store) vaultRepo.RepositoryRepository {
	return &RepositoryRepository{store: store}
}

func (r *RepositoryRepository) Create(ctx context.Context, repo *models.Repository) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRepositoryCreate); err != nil {
		return err
	}

	for _, existing := range s.repos {
		if existing.data.WorkspaceID == repo.WorkspaceID && existing.data.Name == repo.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("repository '%s' already exists", repo.Name),
				ResourceType: "repository",
				ResourceID:   existing.data.ID,
			}
		}
	}

	if repo.ID == "" {
		repo.ID = newID()
	}
	now := s.now()
	repo.CreatedAt, repo.UpdatedAt = now, now
	s.repos[repo.ID] = &row[repoRecord]{seq: s.nextSeq(), data: *repo}
	return nil
}

func (r *RepositoryRepository) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.repos[id]
	if !ok {
		return nil, fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	repo := existing.data
	return &repo, nil
}

func (r *RepositoryRepository) List(ctx context.Context, workspaceID string) ([]models.Repository, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedRows(s.repos, func(repo repoRecord) bool {
		return repo.WorkspaceID == workspaceID
	}), nil
}

func (r *RepositoryRepository) Update(ctx context.Context, repo *models.Repository) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.repos[repo.ID]
	if !ok {
		return fmt.Errorf("repository %s: %w", repo.ID, domain.ErrNotFound)
	}
	existing.data.Name = repo.Name
	existing.data.Description = cloneStr(repo.Description)
	existing.data.IsPublic = repo.IsPublic
	existing.data.UpdatedAt = s.now()
	*repo = existing.data
	return nil
}

// Delete refuses to remove a repository that still owns records,
// mirroring the foreign keys of the Postgres schema.
func (r *RepositoryRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRepositoryDelete); err != nil {
		return err
	}

	if _, ok := s.repos[id]; !ok {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	for _, f := range s.folders {
		if f.data.RepositoryID == id {
			return fmt.Errorf("cannot delete repository with folders: %w", domain.ErrConflict)
		}
	}
	for _, a := range s.assets {
		if a.data.RepositoryID == id {
			return fmt.Errorf("cannot delete repository with assets: %w", domain.ErrConflict)
		}
	}
	delete(s.repos, id)
	return nil
}

func (r *RepositoryRepository) RecordFork(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.repos[id]
	if !ok {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	existing.data.ForkCount++
	return nil
}
