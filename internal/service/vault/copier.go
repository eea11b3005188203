package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/storage"
	"assetvault/internal/tree"
)

// CopySuffix is appended to a folder copied next to its source
const CopySuffix = " (Copy)"

type copier struct {
	repoRepo   vaultRepo.RepositoryRepository
	folderRepo vaultRepo.FolderRepository
	assetRepo  vaultRepo.AssetRepository
	blobs      storage.BlobStore
	logger     *slog.Logger
}

// NewCopyService creates the recursive copy/move engine
func NewCopyService(
	repoRepo vaultRepo.RepositoryRepository,
	folderRepo vaultRepo.FolderRepository,
	assetRepo vaultRepo.AssetRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) svc.CopyService {
	return &copier{
		repoRepo:   repoRepo,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		blobs:      blobs,
		logger:     logger,
	}
}

// copyJob is one copy operation over a single source repository.
// Folders and assets are fetched once; the walk is sequential and
// depth-first so a child is only created after its parent's new ID exists.
type copyJob struct {
	c            *copier
	sourceRepoID string
	targetRepoID string
	idx          *tree.Index
	assets       map[string][]models.Asset // by folder ID, "" = repository root
	dissolve     map[string]bool
	folderSlots  *slots
	assetSlots   *slots
	result       *svc.CopyResult
}

func (c *copier) newJob(ctx context.Context, sourceRepoID, targetRepoID string, dissolve []string) (*copyJob, error) {
	folders, err := c.folderRepo.ListByRepository(ctx, sourceRepoID)
	if err != nil {
		return nil, fmt.Errorf("list source folders: %w", err)
	}
	assets, err := c.assetRepo.ListByRepository(ctx, sourceRepoID)
	if err != nil {
		return nil, fmt.Errorf("list source assets: %w", err)
	}

	idx := tree.NewIndex(folders)
	byFolder := make(map[string][]models.Asset)
	for _, a := range assets {
		key := ""
		if a.FolderID != nil && idx.Get(*a.FolderID) != nil {
			key = *a.FolderID
		}
		byFolder[key] = append(byFolder[key], a)
	}
	for key := range byFolder {
		list := byFolder[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}

	set := make(map[string]bool, len(dissolve))
	for _, id := range dissolve {
		set[id] = true
	}

	job := &copyJob{
		c:            c,
		sourceRepoID: sourceRepoID,
		targetRepoID: targetRepoID,
		idx:          idx,
		assets:       byFolder,
		dissolve:     set,
		folderSlots:  newFolderSlots(targetRepoID, c.folderRepo),
		assetSlots:   newAssetSlots(targetRepoID, c.assetRepo),
		result: &svc.CopyResult{
			Folders:   []models.Folder{},
			Assets:    []models.Asset{},
			Skipped:   []svc.SkippedAsset{},
			FolderMap: make(map[string]string),
		},
	}
	return job, nil
}

// setTarget points the job at a repository created after the source was loaded
func (j *copyJob) setTarget(repositoryID string) {
	j.targetRepoID = repositoryID
	j.folderSlots.repositoryID = repositoryID
	j.assetSlots.repositoryID = repositoryID
	j.folderSlots.fresh(nil)
	j.assetSlots.fresh(nil)
}

// copyFolder replicates src and its subtree under targetParent.
// A dissolved folder is not created: its direct assets land in targetParent
// and its children are copied into targetParent.
func (j *copyJob) copyFolder(ctx context.Context, src *models.Folder, targetParent *string, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dest := targetParent
	if !j.dissolve[src.ID] {
		position, err := j.folderSlots.take(ctx, targetParent)
		if err != nil {
			return err
		}
		folder := &models.Folder{
			RepositoryID: j.targetRepoID,
			ParentID:     targetParent,
			Name:         name,
			Description:  src.Description,
			Position:     position,
		}
		if err := j.c.folderRepo.Create(ctx, folder); err != nil {
			return fmt.Errorf("create copy of folder %q: %w", src.Name, err)
		}
		j.folderSlots.fresh(&folder.ID)
		j.assetSlots.fresh(&folder.ID)
		j.result.Folders = append(j.result.Folders, *folder)
		j.result.FolderMap[src.ID] = folder.ID
		dest = &folder.ID

		j.c.logger.Debug("folder copied",
			"source_id", src.ID,
			"copy_id", folder.ID,
			"name", folder.Name,
		)
	}

	if err := j.copyAssets(ctx, j.assets[src.ID], dest); err != nil {
		return err
	}
	return j.copyChildren(ctx, &src.ID, dest)
}

// copyChildren copies every child of sourceParent (nil = source root) under targetParent
func (j *copyJob) copyChildren(ctx context.Context, sourceParent *string, targetParent *string) error {
	children := append([]*models.Folder(nil), j.idx.Children(sourceParent)...)
	sort.SliceStable(children, func(a, b int) bool { return children[a].Position < children[b].Position })
	for _, child := range children {
		if err := j.copyFolder(ctx, child, targetParent, child.Name); err != nil {
			return err
		}
	}
	return nil
}

// copyAssets duplicates each blob, then creates the record pointing at the
// duplicate. A failed blob copy skips that asset only.
func (j *copyJob) copyAssets(ctx context.Context, assets []models.Asset, folderID *string) error {
	for _, src := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := j.c.copyAsset(ctx, &src, j.targetRepoID, folderID, j.assetSlots, j.result); err != nil {
			return err
		}
	}
	return nil
}

// copyAsset copies one asset into folderID. It returns (nil, nil) when the
// asset was skipped because its blob could not be duplicated.
func (c *copier) copyAsset(ctx context.Context, src *models.Asset, targetRepoID string, folderID *string, positions *slots, result *svc.CopyResult) (*models.Asset, error) {
	newPath, err := c.blobs.Copy(ctx, src.StoragePath, targetRepoID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("skipping asset: blob copy failed",
			"asset_id", src.ID,
			"storage_path", src.StoragePath,
			"error", err,
		)
		result.Skipped = append(result.Skipped, svc.SkippedAsset{AssetID: src.ID, Reason: err.Error()})
		return nil, nil
	}

	position, err := positions.take(ctx, folderID)
	if err != nil {
		c.discardBlob(ctx, newPath)
		return nil, err
	}

	asset := &models.Asset{
		RepositoryID: targetRepoID,
		FolderID:     folderID,
		Position:     position,
		StoragePath:  newPath,
		Width:        src.Width,
		Height:       src.Height,
		Tags:         append([]string(nil), src.Tags...),
		Metadata:     src.CloneMetadata(),
	}
	if err := c.assetRepo.Create(ctx, asset); err != nil {
		c.discardBlob(ctx, newPath)
		return nil, fmt.Errorf("create copy of asset %s: %w", src.ID, err)
	}
	result.Assets = append(result.Assets, *asset)
	return asset, nil
}

func (c *copier) discardBlob(ctx context.Context, objectPath string) {
	if err := c.blobs.Delete(ctx, objectPath); err != nil {
		c.logger.Warn("failed to remove orphaned blob", "storage_path", objectPath, "error", err)
	}
}

// CopyFolders copies each requested folder subtree under the target parent.
// All folders must belong to one repository; a folder nested inside another
// requested folder is copied once, as part of its ancestor.
func (c *copier) CopyFolders(ctx context.Context, req *svc.CopyFoldersRequest) (*svc.CopyResult, error) {
	req.TargetParentID = normalizeID(req.TargetParentID)
	if err := validateCopyFolders(req); err != nil {
		return nil, err
	}

	sources := make([]*models.Folder, 0, len(req.FolderIDs))
	for _, id := range req.FolderIDs {
		f, err := c.folderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(sources) > 0 && f.RepositoryID != sources[0].RepositoryID {
			return nil, domain.NewValidationError("folders to copy must belong to one repository")
		}
		sources = append(sources, f)
	}
	if err := c.checkTarget(ctx, req.TargetRepositoryID, req.TargetParentID); err != nil {
		return nil, err
	}

	sourceRepoID := sources[0].RepositoryID
	job, err := c.newJob(ctx, sourceRepoID, req.TargetRepositoryID, nil)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]bool, len(sources))
	for _, f := range sources {
		requested[f.ID] = true
	}
	for _, src := range sources {
		if c.hasRequestedAncestor(job.idx, src.ID, requested) {
			continue
		}
		if _, done := job.result.FolderMap[src.ID]; done {
			continue
		}
		name := src.Name
		if sourceRepoID == req.TargetRepositoryID && models.SameParent(src.ParentID, req.TargetParentID) {
			name += CopySuffix
		}
		if err := job.copyFolder(ctx, src, req.TargetParentID, name); err != nil {
			return nil, fmt.Errorf("copy folder %q: %w", src.Name, err)
		}
	}

	c.logger.Info("folders copied",
		"source_repository_id", sourceRepoID,
		"target_repository_id", req.TargetRepositoryID,
		"target_parent_id", req.TargetParentID,
		"folders", len(job.result.Folders),
		"assets", len(job.result.Assets),
		"skipped", len(job.result.Skipped),
	)
	return job.result, nil
}

func (c *copier) hasRequestedAncestor(idx *tree.Index, id string, requested map[string]bool) bool {
	for ancestor := range requested {
		if ancestor != id && idx.IsDescendant(id, ancestor) {
			return true
		}
	}
	return false
}

// CopyAssets copies individual assets to the end of the target folder
func (c *copier) CopyAssets(ctx context.Context, req *svc.CopyAssetsRequest) (*svc.CopyResult, error) {
	req.TargetFolderID = normalizeID(req.TargetFolderID)
	if err := validateCopyAssets(req); err != nil {
		return nil, err
	}

	sources := make([]*models.Asset, 0, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		a, err := c.assetRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sources = append(sources, a)
	}
	if err := c.checkTarget(ctx, req.TargetRepositoryID, req.TargetFolderID); err != nil {
		return nil, err
	}

	result := &svc.CopyResult{
		Folders:   []models.Folder{},
		Assets:    []models.Asset{},
		Skipped:   []svc.SkippedAsset{},
		FolderMap: map[string]string{},
	}
	positions := newAssetSlots(req.TargetRepositoryID, c.assetRepo)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := c.copyAsset(ctx, src, req.TargetRepositoryID, req.TargetFolderID, positions, result); err != nil {
			return nil, err
		}
	}

	c.logger.Info("assets copied",
		"target_repository_id", req.TargetRepositoryID,
		"target_folder_id", req.TargetFolderID,
		"assets", len(result.Assets),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// ForkFolder creates a repository whose root holds the folder's direct
// assets and children. The folder itself is not copied.
func (c *copier) ForkFolder(ctx context.Context, req *svc.ForkFolderRequest) (*svc.ForkResult, error) {
	if err := validateForkFolder(req); err != nil {
		return nil, err
	}

	folder, err := c.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	job, err := c.newJob(ctx, folder.RepositoryID, "", []string{folder.ID})
	if err != nil {
		return nil, err
	}

	repo, err := c.createFork(ctx, folder.RepositoryID, req.WorkspaceID, req.OwnerID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		return nil, err
	}
	job.setTarget(repo.ID)

	if err := job.copyFolder(ctx, folder, nil, folder.Name); err != nil {
		return nil, fmt.Errorf("fork folder %q into repository %s: %w", folder.Name, repo.ID, err)
	}

	c.recordFork(ctx, folder.RepositoryID)
	c.logger.Info("folder forked",
		"folder_id", folder.ID,
		"repository_id", repo.ID,
		"folders", len(job.result.Folders),
		"assets", len(job.result.Assets),
		"skipped", len(job.result.Skipped),
	)
	return &svc.ForkResult{Repository: repo, Copy: job.result}, nil
}

// ForkRepository copies a repository into a new one. Folders named in
// Dissolve are not created; their contents move up a level.
func (c *copier) ForkRepository(ctx context.Context, req *svc.ForkRepositoryRequest) (*svc.ForkResult, error) {
	if err := validateForkRepository(req); err != nil {
		return nil, err
	}

	source, err := c.repoRepo.GetByID(ctx, req.SourceRepositoryID)
	if err != nil {
		return nil, err
	}

	job, err := c.newJob(ctx, source.ID, "", req.Dissolve)
	if err != nil {
		return nil, err
	}
	for _, id := range req.Dissolve {
		if job.idx.Get(id) == nil {
			return nil, domain.NewValidationError("folder %s to dissolve is not in repository %s", id, source.ID)
		}
	}

	repo, err := c.createFork(ctx, source.ID, req.WorkspaceID, req.OwnerID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		return nil, err
	}
	job.setTarget(repo.ID)

	if err := job.copyAssets(ctx, job.assets[""], nil); err != nil {
		return nil, fmt.Errorf("fork repository %s: %w", source.ID, err)
	}
	if err := job.copyChildren(ctx, nil, nil); err != nil {
		return nil, fmt.Errorf("fork repository %s: %w", source.ID, err)
	}

	c.recordFork(ctx, source.ID)
	c.logger.Info("repository forked",
		"source_repository_id", source.ID,
		"repository_id", repo.ID,
		"dissolved", len(req.Dissolve),
		"folders", len(job.result.Folders),
		"assets", len(job.result.Assets),
		"skipped", len(job.result.Skipped),
	)
	return &svc.ForkResult{Repository: repo, Copy: job.result}, nil
}

// CopyRepositoryAsFolder creates a folder named after the source repository
// inside the target, then copies the source's root folders and root assets into it.
func (c *copier) CopyRepositoryAsFolder(ctx context.Context, req *svc.RepositoryAsFolderRequest) (*svc.CopyResult, error) {
	req.TargetParentID = normalizeID(req.TargetParentID)
	if err := validateRepositoryAsFolder(req); err != nil {
		return nil, err
	}

	source, err := c.repoRepo.GetByID(ctx, req.SourceRepositoryID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTarget(ctx, req.TargetRepositoryID, req.TargetParentID); err != nil {
		return nil, err
	}

	job, err := c.newJob(ctx, source.ID, req.TargetRepositoryID, nil)
	if err != nil {
		return nil, err
	}

	wrapper, err := c.createWrapper(ctx, source, req.TargetRepositoryID, req.TargetParentID)
	if err != nil {
		return nil, err
	}
	job.folderSlots.fresh(&wrapper.ID)
	job.assetSlots.fresh(&wrapper.ID)
	job.result.Folders = append(job.result.Folders, *wrapper)

	if err := job.copyAssets(ctx, job.assets[""], &wrapper.ID); err != nil {
		return nil, fmt.Errorf("copy repository %s as folder: %w", source.ID, err)
	}
	if err := job.copyChildren(ctx, nil, &wrapper.ID); err != nil {
		return nil, fmt.Errorf("copy repository %s as folder: %w", source.ID, err)
	}

	c.logger.Info("repository copied as folder",
		"source_repository_id", source.ID,
		"target_repository_id", req.TargetRepositoryID,
		"wrapper_id", wrapper.ID,
		"folders", len(job.result.Folders),
		"assets", len(job.result.Assets),
		"skipped", len(job.result.Skipped),
	)
	return job.result, nil
}

// Steps of MoveRepositoryInto, reported in StepError
const (
	StepCreateWrapper    = "create wrapper folder"
	StepReassignFolders  = "reassign folders"
	StepReassignAssets   = "reassign assets"
	StepReparentRoots    = "reparent root items"
	StepDeleteRepository = "delete source repository"
)

// MoveRepositoryInto relocates every record of the source repository into
// the target without copying: (a) reassign folders, (b) reassign assets,
// (c) reparent former roots under a new wrapper folder, (d) delete the
// source. A failure stops before (d); completed steps are not reverted.
func (c *copier) MoveRepositoryInto(ctx context.Context, req *svc.RepositoryAsFolderRequest) (*svc.MoveRepositoryResult, error) {
	req.TargetParentID = normalizeID(req.TargetParentID)
	if err := validateRepositoryAsFolder(req); err != nil {
		return nil, err
	}

	source, err := c.repoRepo.GetByID(ctx, req.SourceRepositoryID)
	if err != nil {
		return nil, err
	}
	if err := c.checkTarget(ctx, req.TargetRepositoryID, req.TargetParentID); err != nil {
		return nil, err
	}

	// Roots must be captured before reassignment mixes them with the target's
	rootFolders, err := c.folderRepo.ListChildren(ctx, source.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}
	rootAssets, err := c.assetRepo.ListByFolder(ctx, source.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("list root assets: %w", err)
	}

	var completed []string
	fail := func(step string, err error) error {
		c.logger.Error("repository move aborted",
			"source_repository_id", source.ID,
			"target_repository_id", req.TargetRepositoryID,
			"step", step,
			"completed", completed,
			"error", err,
		)
		return &domain.StepError{
			Operation: "move repository",
			Step:      step,
			Completed: append([]string(nil), completed...),
			Err:       err,
		}
	}

	wrapper, err := c.createWrapper(ctx, source, req.TargetRepositoryID, req.TargetParentID)
	if err != nil {
		return nil, fail(StepCreateWrapper, err)
	}
	completed = append(completed, StepCreateWrapper)

	foldersMoved, err := c.folderRepo.ReassignRepository(ctx, source.ID, req.TargetRepositoryID)
	if err != nil {
		return nil, fail(StepReassignFolders, err)
	}
	completed = append(completed, StepReassignFolders)

	assetsMoved, err := c.assetRepo.ReassignRepository(ctx, source.ID, req.TargetRepositoryID)
	if err != nil {
		return nil, fail(StepReassignAssets, err)
	}
	completed = append(completed, StepReassignAssets)

	folderIDs := make([]string, 0, len(rootFolders))
	for _, f := range rootFolders {
		folderIDs = append(folderIDs, f.ID)
	}
	assetIDs := make([]string, 0, len(rootAssets))
	for _, a := range rootAssets {
		assetIDs = append(assetIDs, a.ID)
	}
	if err := c.folderRepo.SetParent(ctx, folderIDs, &wrapper.ID); err != nil {
		return nil, fail(StepReparentRoots, err)
	}
	if err := c.assetRepo.SetFolder(ctx, assetIDs, &wrapper.ID); err != nil {
		return nil, fail(StepReparentRoots, err)
	}
	completed = append(completed, StepReparentRoots)

	if err := c.repoRepo.Delete(ctx, source.ID); err != nil {
		return nil, fail(StepDeleteRepository, err)
	}

	c.logger.Info("repository moved into folder",
		"source_repository_id", source.ID,
		"target_repository_id", req.TargetRepositoryID,
		"wrapper_id", wrapper.ID,
		"folders", foldersMoved,
		"assets", assetsMoved,
	)
	return &svc.MoveRepositoryResult{
		Wrapper:      wrapper,
		FoldersMoved: foldersMoved,
		AssetsMoved:  assetsMoved,
	}, nil
}

// checkTarget verifies the target repository exists and the parent folder, if any, is inside it
func (c *copier) checkTarget(ctx context.Context, repositoryID string, parentID *string) error {
	if _, err := c.repoRepo.GetByID(ctx, repositoryID); err != nil {
		return fmt.Errorf("invalid target repository: %w", err)
	}
	if parentID == nil {
		return nil
	}
	parent, err := c.folderRepo.GetByID(ctx, *parentID)
	if err != nil {
		return fmt.Errorf("invalid target folder: %w", err)
	}
	if parent.RepositoryID != repositoryID {
		return domain.NewValidationError("target folder belongs to another repository")
	}
	return nil
}

// createWrapper creates the folder standing in for a whole repository
func (c *copier) createWrapper(ctx context.Context, source *models.Repository, targetRepoID string, parentID *string) (*models.Folder, error) {
	position, err := nextFolderPosition(ctx, c.folderRepo, targetRepoID, parentID)
	if err != nil {
		return nil, err
	}
	wrapper := &models.Folder{
		RepositoryID: targetRepoID,
		ParentID:     parentID,
		Name:         source.Name,
		Description:  source.Description,
		Position:     position,
	}
	if err := c.folderRepo.Create(ctx, wrapper); err != nil {
		return nil, fmt.Errorf("create wrapper folder: %w", err)
	}
	return wrapper, nil
}

func (c *copier) createFork(ctx context.Context, sourceRepoID, workspaceID, ownerID, name string, description *string, isPublic bool) (*models.Repository, error) {
	repo := &models.Repository{
		WorkspaceID:  workspaceID,
		OwnerID:      ownerID,
		Name:         name,
		Description:  description,
		IsPublic:     isPublic,
		ForkedFromID: &sourceRepoID,
	}
	if err := c.repoRepo.Create(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// recordFork bumps the source's fork counter; the fork itself already succeeded
func (c *copier) recordFork(ctx context.Context, sourceRepoID string) {
	if err := c.repoRepo.RecordFork(ctx, sourceRepoID); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("failed to record fork", "repository_id", sourceRepoID, "error", err)
	}
}
