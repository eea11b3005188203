package session

import (
	"context"
	"strings"
	"time"

	"assetvault/internal/cache"
	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/tree"

	"github.com/google/uuid"
)

func folderByID(id string) func(models.Folder) bool {
	return func(f models.Folder) bool { return f.ID == id }
}

func assetByID(id string) func(models.Asset) bool {
	return func(a models.Asset) bool { return a.ID == id }
}

func replaceFolder(f models.Folder) func(models.Folder) models.Folder {
	return func(models.Folder) models.Folder { return f }
}

func replaceAsset(a models.Asset) func(models.Asset) models.Asset {
	return func(models.Asset) models.Asset { return a }
}

func all[E any](E) bool { return true }

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// nextFolderPosition predicts where the server will place a new folder
func (s *Session) nextFolderPosition(repositoryID string, parentID *string) int {
	folders, _ := cache.Peek[[]models.Folder](s.cache, cache.FoldersInRepository(repositoryID))
	next := 0
	for _, f := range folders {
		if models.SameParent(f.ParentID, parentID) && f.Position >= next {
			next = f.Position + 1
		}
	}
	return next
}

func (s *Session) nextAssetPosition(repositoryID string, folderID *string) int {
	assets, _ := cache.Peek[[]models.Asset](s.cache, cache.AssetsInFolder(repositoryID, deref(folderID)))
	next := 0
	for _, a := range assets {
		if a.Position >= next {
			next = a.Position + 1
		}
	}
	return next
}

// CreateFolder shows the folder under a temporary ID at once and swaps in
// the server record when the create succeeds
func (s *Session) CreateFolder(ctx context.Context, repositoryID string, parentID *string, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validateID("repository", repositoryID); err != nil {
		return nil, err
	}
	if parentID != nil {
		if err := validateID("parent folder", *parentID); err != nil {
			return nil, err
		}
	}
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	temp := models.Folder{
		ID:           TempIDPrefix + uuid.NewString(),
		RepositoryID: repositoryID,
		ParentID:     cloneID(parentID),
		Name:         name,
		Position:     s.nextFolderPosition(repositoryID, parentID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	wsKey := cache.FoldersInWorkspace(s.workspaceID)
	repoKey := cache.FoldersInRepository(repositoryID)
	p := s.cache.Begin(cache.Mutation{
		Name:     "create folder",
		Entities: []string{temp.ID},
		Writes:   []cache.Write{cache.Append(wsKey, temp), cache.Append(repoKey, temp)},
	})

	created, err := s.backend.CreateFolder(ctx, &svc.CreateFolderRequest{
		RepositoryID: repositoryID,
		ParentID:     parentID,
		Name:         name,
	})
	if err != nil {
		return nil, s.rollback(p, err)
	}

	match := func(f models.Folder) bool { return f.ID == temp.ID || f.ID == created.ID }
	p.Succeed(cache.ReplaceWhere(wsKey, match, *created), cache.ReplaceWhere(repoKey, match, *created))
	return created, nil
}

// RenameFolder renames a folder optimistically
func (s *Session) RenameFolder(ctx context.Context, id, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validateID("folder", id); err != nil {
		return nil, err
	}
	if err := validateFolderName(name); err != nil {
		return nil, err
	}
	folder, err := s.locator().Folder(ctx, id)
	if err != nil {
		return nil, err
	}

	wsKey := cache.FoldersInWorkspace(s.workspaceID)
	repoKey := cache.FoldersInRepository(folder.RepositoryID)
	rename := func(f models.Folder) models.Folder {
		f.Name = name
		return f
	}
	p := s.cache.Begin(cache.Mutation{
		Name:     "rename folder",
		Entities: []string{id},
		Writes: []cache.Write{
			cache.UpdateWhere(wsKey, folderByID(id), rename),
			cache.UpdateWhere(repoKey, folderByID(id), rename),
		},
	})

	updated, err := s.backend.UpdateFolder(ctx, id, &svc.UpdateFolderRequest{Name: &name})
	if err != nil {
		return nil, s.rollback(p, err)
	}
	p.Succeed(
		cache.UpdateWhere(wsKey, folderByID(id), replaceFolder(*updated)),
		cache.UpdateWhere(repoKey, folderByID(id), replaceFolder(*updated)),
	)
	return updated, nil
}

// DeleteFolder removes a folder, its subtree and their assets from every
// cached list before the server confirms
func (s *Session) DeleteFolder(ctx context.Context, id string) error {
	if err := validateID("folder", id); err != nil {
		return err
	}
	folder, err := s.locator().Folder(ctx, id)
	if err != nil {
		return err
	}
	folders, err := s.repositoryFolders(ctx, folder.RepositoryID)
	if err != nil {
		return err
	}
	subtree := tree.NewIndex(folders).SubtreeIDs(id)
	inSubtree := func(f models.Folder) bool { return subtree[f.ID] }
	assetInSubtree := func(a models.Asset) bool { return a.FolderID != nil && subtree[*a.FolderID] }

	var doomed []string
	if assets, ok := cache.Peek[[]models.Asset](s.cache, cache.AssetsInWorkspace(s.workspaceID)); ok {
		for _, a := range assets {
			if assetInSubtree(a) {
				doomed = append(doomed, a.ID)
			}
		}
	}

	writes := []cache.Write{
		cache.RemoveWhere(cache.FoldersInWorkspace(s.workspaceID), inSubtree),
		cache.RemoveWhere(cache.FoldersInRepository(folder.RepositoryID), inSubtree),
		cache.RemoveWhere(cache.AssetsInWorkspace(s.workspaceID), assetInSubtree),
		cache.RemoveWhere(cache.AssetsInRepository(folder.RepositoryID), assetInSubtree),
	}
	entities := make([]string, 0, len(subtree))
	for fid := range subtree {
		entities = append(entities, fid)
		writes = append(writes, cache.RemoveWhere(cache.AssetsInFolder(folder.RepositoryID, fid), all[models.Asset]))
	}

	p := s.cache.Begin(cache.Mutation{Name: "delete folder", Entities: entities, Writes: writes})
	if err := s.backend.DeleteFolder(ctx, id); err != nil {
		return s.rollback(p, err)
	}
	p.Succeed()
	s.forget(append(entities, doomed...)...)
	return nil
}

// RenameAsset sets an asset's display name optimistically
func (s *Session) RenameAsset(ctx context.Context, id, name string) (*models.Asset, error) {
	name = strings.TrimSpace(name)
	if err := validateID("asset", id); err != nil {
		return nil, err
	}
	if err := validateAssetName(name); err != nil {
		return nil, err
	}
	asset, err := s.locator().Asset(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := s.assetKeys(asset)
	rename := func(a models.Asset) models.Asset {
		a.Metadata = a.CloneMetadata()
		if a.Metadata == nil {
			a.Metadata = map[string]any{}
		}
		a.Metadata[models.MetadataName] = name
		return a
	}
	writes := make([]cache.Write, 0, len(keys))
	for _, key := range keys {
		writes = append(writes, cache.UpdateWhere(key, assetByID(id), rename))
	}
	p := s.cache.Begin(cache.Mutation{Name: "rename asset", Entities: []string{id}, Writes: writes})

	updated, err := s.backend.UpdateAsset(ctx, id, &svc.UpdateAssetRequest{Name: &name})
	if err != nil {
		return nil, s.rollback(p, err)
	}
	confirmed := make([]cache.Write, 0, len(keys))
	for _, key := range keys {
		confirmed = append(confirmed, cache.UpdateWhere(key, assetByID(id), replaceAsset(*updated)))
	}
	p.Succeed(confirmed...)
	return updated, nil
}

// DeleteAsset removes an asset optimistically
func (s *Session) DeleteAsset(ctx context.Context, id string) error {
	if err := validateID("asset", id); err != nil {
		return err
	}
	asset, err := s.locator().Asset(ctx, id)
	if err != nil {
		return err
	}

	keys := s.assetKeys(asset)
	writes := make([]cache.Write, 0, len(keys))
	for _, key := range keys {
		writes = append(writes, cache.RemoveWhere(key, assetByID(id)))
	}
	p := s.cache.Begin(cache.Mutation{Name: "delete asset", Entities: []string{id}, Writes: writes})
	if err := s.backend.DeleteAsset(ctx, id); err != nil {
		return s.rollback(p, err)
	}
	p.Succeed()
	s.forget(id)
	return nil
}

// assetKeys lists every cache key whose list holds the asset
func (s *Session) assetKeys(a *models.Asset) []cache.Key {
	return []cache.Key{
		cache.AssetsInWorkspace(s.workspaceID),
		cache.AssetsInRepository(a.RepositoryID),
		cache.AssetsInFolder(a.RepositoryID, deref(a.FolderID)),
	}
}

// MoveFolder moves a folder under parentID (nil = root) of a repository
func (s *Session) MoveFolder(ctx context.Context, id, repositoryID string, parentID *string) (*models.MoveIntent, error) {
	return s.moveTo(ctx, models.DragItem{Kind: models.KindFolder, ID: id}, repositoryID, parentID)
}

// MoveAsset moves an asset into folderID (nil = root) of a repository
func (s *Session) MoveAsset(ctx context.Context, id, repositoryID string, folderID *string) (*models.MoveIntent, error) {
	return s.moveTo(ctx, models.DragItem{Kind: models.KindAsset, ID: id}, repositoryID, folderID)
}

func (s *Session) moveTo(ctx context.Context, item models.DragItem, repositoryID string, folderID *string) (*models.MoveIntent, error) {
	if err := validateID("repository", repositoryID); err != nil {
		return nil, err
	}
	target := models.DropTarget{Kind: models.KindRepository, ID: repositoryID}
	if folderID != nil {
		target = models.DropTarget{Kind: models.KindFolder, ID: *folderID}
	}
	return s.drop(ctx, item, target, repositoryID)
}

// Drop resolves a drag-and-drop gesture and applies it optimistically
func (s *Session) Drop(ctx context.Context, item models.DragItem, target models.DropTarget) (*models.MoveIntent, error) {
	return s.drop(ctx, item, target, "")
}

// drop checks the resolved repository against wantRepo when one is given
func (s *Session) drop(ctx context.Context, item models.DragItem, target models.DropTarget, wantRepo string) (*models.MoveIntent, error) {
	for _, id := range []string{item.ID, target.ID} {
		if IsTempID(id) {
			return nil, domain.NewValidationError("%s is still being created", id)
		}
	}
	intent, err := s.reconciler.Resolve(ctx, item, target)
	if err != nil {
		return nil, err
	}
	if wantRepo != "" && intent.ToRepositoryID != wantRepo {
		return nil, domain.NewValidationError("target folder belongs to repository %s, not %s", intent.ToRepositoryID, wantRepo)
	}
	if intent.NoOp {
		s.logger.Debug("drop is a no-op", "kind", item.Kind, "id", item.ID)
		return intent, nil
	}

	switch intent.Kind {
	case models.KindFolder:
		err = s.applyFolderMove(ctx, intent)
	case models.KindAsset:
		err = s.applyAssetMove(ctx, intent)
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *Session) applyFolderMove(ctx context.Context, intent *models.MoveIntent) error {
	from, to := intent.FromRepositoryID, intent.ToRepositoryID
	folders, err := s.repositoryFolders(ctx, from)
	if err != nil {
		return err
	}
	idx := tree.NewIndex(folders)
	subtree := idx.SubtreeIDs(intent.ID)
	position := s.nextFolderPosition(to, intent.ToFolderID)

	relocate := func(f models.Folder) models.Folder {
		f.RepositoryID = to
		if f.ID == intent.ID {
			f.ParentID = cloneID(intent.ToFolderID)
			f.Position = position
		}
		return f
	}
	inSubtree := func(f models.Folder) bool { return subtree[f.ID] }
	entities := make([]string, 0, len(subtree))
	for id := range subtree {
		entities = append(entities, id)
	}

	writes := []cache.Write{cache.UpdateWhere(cache.FoldersInWorkspace(s.workspaceID), inSubtree, relocate)}
	if !intent.CrossesRepository() {
		writes = append(writes, cache.UpdateWhere(cache.FoldersInRepository(from), folderByID(intent.ID), relocate))
	} else {
		var moved []models.Folder
		if root := idx.Get(intent.ID); root != nil {
			moved = append(moved, relocate(*root))
		}
		for _, f := range idx.Descendants(intent.ID) {
			moved = append(moved, relocate(*f))
		}
		assetInSubtree := func(a models.Asset) bool { return a.FolderID != nil && subtree[*a.FolderID] }
		rehome := func(a models.Asset) models.Asset {
			a.RepositoryID = to
			return a
		}
		writes = append(writes,
			cache.RemoveWhere(cache.FoldersInRepository(from), inSubtree),
			cache.Append(cache.FoldersInRepository(to), moved...),
			cache.UpdateWhere(cache.AssetsInWorkspace(s.workspaceID), assetInSubtree, rehome),
			cache.RemoveWhere(cache.AssetsInRepository(from), assetInSubtree),
		)
		if assets, ok := cache.Peek[[]models.Asset](s.cache, cache.AssetsInRepository(from)); ok {
			var carried []models.Asset
			for _, a := range assets {
				if assetInSubtree(a) {
					carried = append(carried, rehome(a))
				}
			}
			writes = append(writes, cache.Append(cache.AssetsInRepository(to), carried...))
		}
		for id := range subtree {
			writes = append(writes, cache.UpdateWhere(cache.AssetsInFolder(from, id), all[models.Asset], rehome))
		}
	}

	p := s.cache.Begin(cache.Mutation{Name: "move folder", Entities: entities, Writes: writes})
	moved, err := s.backend.MoveFolder(ctx, &svc.MoveFolderRequest{
		FolderID:           intent.ID,
		TargetRepositoryID: to,
		TargetParentID:     intent.ToFolderID,
	})
	if err != nil {
		return s.rollback(p, err)
	}
	p.Succeed(
		cache.UpdateWhere(cache.FoldersInWorkspace(s.workspaceID), folderByID(moved.ID), replaceFolder(*moved)),
		cache.UpdateWhere(cache.FoldersInRepository(to), folderByID(moved.ID), replaceFolder(*moved)),
	)
	return nil
}

func (s *Session) applyAssetMove(ctx context.Context, intent *models.MoveIntent) error {
	asset, err := s.locator().Asset(ctx, intent.ID)
	if err != nil {
		return err
	}
	from, to := intent.FromRepositoryID, intent.ToRepositoryID
	position := s.nextAssetPosition(to, intent.ToFolderID)
	relocate := func(a models.Asset) models.Asset {
		a.RepositoryID = to
		a.FolderID = cloneID(intent.ToFolderID)
		a.Position = position
		return a
	}
	moved := relocate(*asset)
	is := assetByID(intent.ID)

	writes := []cache.Write{cache.UpdateWhere(cache.AssetsInWorkspace(s.workspaceID), is, relocate)}
	if intent.CrossesRepository() {
		writes = append(writes,
			cache.RemoveWhere(cache.AssetsInRepository(from), is),
			cache.Append(cache.AssetsInRepository(to), moved),
		)
	} else {
		writes = append(writes, cache.UpdateWhere(cache.AssetsInRepository(from), is, relocate))
	}
	targetFolderKey := cache.AssetsInFolder(to, deref(intent.ToFolderID))
	writes = append(writes,
		cache.RemoveWhere(cache.AssetsInFolder(from, deref(intent.FromFolderID)), is),
		cache.Append(targetFolderKey, moved),
	)

	p := s.cache.Begin(cache.Mutation{Name: "move asset", Entities: []string{intent.ID}, Writes: writes})
	confirmed, err := s.backend.MoveAsset(ctx, &svc.MoveAssetRequest{
		AssetID:            intent.ID,
		TargetRepositoryID: to,
		TargetFolderID:     intent.ToFolderID,
	})
	if err != nil {
		return s.rollback(p, err)
	}
	p.Succeed(
		cache.UpdateWhere(cache.AssetsInWorkspace(s.workspaceID), is, replaceAsset(*confirmed)),
		cache.UpdateWhere(cache.AssetsInRepository(to), is, replaceAsset(*confirmed)),
		cache.UpdateWhere(targetFolderKey, is, replaceAsset(*confirmed)),
	)
	return nil
}

// rollback settles p as failed and logs the rejection
func (s *Session) rollback(p *cache.Pending, err error) error {
	wrapped := p.Fail(err)
	s.logger.Warn("mutation rejected", "error", wrapped, "keys", len(p.Keys()))
	return wrapped
}

func (s *Session) locator() *cacheLocator {
	return &cacheLocator{s: s}
}
