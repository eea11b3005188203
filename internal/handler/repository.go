package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/services"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/httputil"
)

// RepositoryHandler handles repository HTTP requests, including the
// repository-level copy actions (fork, copy-as-folder, move-into)
type RepositoryHandler struct {
	repoService   svc.RepositoryService
	treeService   svc.TreeService
	folderService svc.FolderService
	assetService  svc.AssetService
	copyService   svc.CopyService
	authorizer    services.ResourceAuthorizer
	logger        *slog.Logger
}

// NewRepositoryHandler creates a new repository handler
func NewRepositoryHandler(
	repoService svc.RepositoryService,
	treeService svc.TreeService,
	folderService svc.FolderService,
	assetService svc.AssetService,
	copyService svc.CopyService,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) *RepositoryHandler {
	return &RepositoryHandler{
		repoService:   repoService,
		treeService:   treeService,
		folderService: folderService,
		assetService:  assetService,
		copyService:   copyService,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// readable lists the workspace's repositories the user may see
func (h *RepositoryHandler) readable(r *http.Request, workspaceID string) ([]models.Repository, error) {
	repos, err := h.repoService.ListRepositories(r.Context(), workspaceID)
	if err != nil {
		return nil, err
	}
	userID := httputil.GetUserID(r)
	visible := make([]models.Repository, 0, len(repos))
	for _, repo := range repos {
		err := h.authorizer.CanReadRepository(r.Context(), userID, repo.ID)
		switch {
		case err == nil:
			visible = append(visible, repo)
		case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		default:
			return nil, err
		}
	}
	return visible, nil
}

func repositorySet(repos []models.Repository) map[string]bool {
	set := make(map[string]bool, len(repos))
	for _, repo := range repos {
		set[repo.ID] = true
	}
	return set
}

// ListWorkspaceRepositories lists readable repositories of a workspace
// GET /api/workspaces/{id}/repositories
func (h *RepositoryHandler) ListWorkspaceRepositories(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "Workspace")
	if !ok {
		return
	}
	repos, err := h.readable(r, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, repos)
}

// ListWorkspaceFolders returns the flat folder list of every readable repository
// GET /api/workspaces/{id}/folders
func (h *RepositoryHandler) ListWorkspaceFolders(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "Workspace")
	if !ok {
		return
	}
	repos, err := h.readable(r, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	folders, err := h.folderService.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	set := repositorySet(repos)
	visible := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		if set[f.RepositoryID] {
			visible = append(visible, f)
		}
	}
	httputil.RespondJSON(w, http.StatusOK, visible)
}

// ListWorkspaceAssets returns the flat asset list of every readable repository
// GET /api/workspaces/{id}/assets
func (h *RepositoryHandler) ListWorkspaceAssets(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "Workspace")
	if !ok {
		return
	}
	repos, err := h.readable(r, workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	assets, err := h.assetService.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}
	set := repositorySet(repos)
	visible := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if set[a.RepositoryID] {
			visible = append(visible, a)
		}
	}
	httputil.RespondJSON(w, http.StatusOK, visible)
}

// CreateRepository creates a repository owned by the caller
// POST /api/repositories
// Returns 201 if created, 409 with existing repository if the name is taken
func (h *RepositoryHandler) CreateRepository(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateRepositoryRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	repo, err := h.repoService.CreateRepository(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Repository, error) {
			if err := h.authorizer.CanReadRepository(r.Context(), req.OwnerID, id); err != nil {
				return nil, err
			}
			return h.repoService.GetRepository(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, repo)
}

// GetRepository retrieves a repository
// GET /api/repositories/{id}
func (h *RepositoryHandler) GetRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	repo, err := h.repoService.GetRepository(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, repo)
}

type updateRepositoryBody struct {
	Name        *string                 `json:"name"`
	Description httputil.OptionalString `json:"description"`
	IsPublic    *bool                   `json:"is_public"`
}

// UpdateRepository renames a repository, changes its description or visibility
// PATCH /api/repositories/{id}
func (h *RepositoryHandler) UpdateRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	var body updateRepositoryBody
	if !parseBody(w, r, &body) {
		return
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	repo, err := h.repoService.UpdateRepository(r.Context(), id, &svc.UpdateRepositoryRequest{
		Name:        body.Name,
		Description: body.Description.Patch(),
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, repo)
}

// DeleteRepository deletes a repository with all its folders and assets
// DELETE /api/repositories/{id}
func (h *RepositoryHandler) DeleteRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	if err := h.repoService.DeleteRepository(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}

// GetTree returns the nested folder/asset tree of a repository
// GET /api/repositories/{id}/tree
func (h *RepositoryHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	tree, err := h.treeService.GetRepositoryTree(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// ListFolders returns the flat folder list of a repository
// GET /api/repositories/{id}/folders
func (h *RepositoryHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	folders, err := h.folderService.ListByRepository(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// ListAssets returns the assets of a repository.
// ?folder_id=<id> narrows to one folder, ?folder_id=root to the root bucket.
// GET /api/repositories/{id}/assets
func (h *RepositoryHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadRepository(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	var (
		assets []models.Asset
		err    error
	)
	switch folderID := r.URL.Query().Get("folder_id"); folderID {
	case "":
		assets, err = h.assetService.ListByRepository(r.Context(), id)
	case "root":
		assets, err = h.assetService.ListByFolder(r.Context(), id, nil)
	default:
		assets, err = h.assetService.ListByFolder(r.Context(), id, &folderID)
	}
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, assets)
}

// ForkRepository copies a repository into a new one owned by the caller
// POST /api/repositories/{id}/fork
func (h *RepositoryHandler) ForkRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	var req svc.ForkRepositoryRequest
	if !parseBody(w, r, &req) {
		return
	}
	userID := httputil.GetUserID(r)
	if err := h.authorizer.CanReadRepository(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	if req.WorkspaceID == "" {
		source, err := h.repoService.GetRepository(r.Context(), id)
		if err != nil {
			handleError(w, err)
			return
		}
		req.WorkspaceID = source.WorkspaceID
	}
	req.SourceRepositoryID = id
	req.OwnerID = userID

	result, err := h.copyService.ForkRepository(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// CopyAsFolder copies a repository into a new folder of another repository
// POST /api/repositories/{id}/copy-as-folder
func (h *RepositoryHandler) CopyAsFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	var req svc.RepositoryAsFolderRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !required(w, "target_repository_id", req.TargetRepositoryID) {
		return
	}
	userID := httputil.GetUserID(r)
	if err := h.authorizer.CanReadRepository(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), userID, req.TargetRepositoryID); err != nil {
		handleError(w, err)
		return
	}
	req.SourceRepositoryID = id

	result, err := h.copyService.CopyRepositoryAsFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// MoveInto moves a repository's contents under a new folder of another
// repository and deletes the source
// POST /api/repositories/{id}/move-into
func (h *RepositoryHandler) MoveInto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Repository")
	if !ok {
		return
	}
	var req svc.RepositoryAsFolderRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !required(w, "target_repository_id", req.TargetRepositoryID) {
		return
	}
	userID := httputil.GetUserID(r)
	if err := h.authorizer.CanWriteRepository(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), userID, req.TargetRepositoryID); err != nil {
		handleError(w, err)
		return
	}
	req.SourceRepositoryID = id

	result, err := h.copyService.MoveRepositoryInto(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
