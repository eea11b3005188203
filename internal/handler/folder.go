package handler

import (
	"log/slog"
	"net/http"

	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/services"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService svc.FolderService
	copyService   svc.CopyService
	authorizer    services.ResourceAuthorizer
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(
	folderService svc.FolderService,
	copyService svc.CopyService,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		copyService:   copyService,
		authorizer:    authorizer,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with existing folder if a sibling has the name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateFolderRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !required(w, "repository_id", req.RepositoryID) {
		return
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), httputil.GetUserID(r), req.RepositoryID); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Folder, error) {
			return h.folderService.GetFolder(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadFolder(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

type updateFolderBody struct {
	Name        *string                 `json:"name"`
	Description httputil.OptionalString `json:"description"`
}

// UpdateFolder renames a folder or changes its description.
// Moves go through POST /api/moves.
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}
	var body updateFolderBody
	if !parseBody(w, r, &body) {
		return
	}
	if err := h.authorizer.CanWriteFolder(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), id, &svc.UpdateFolderRequest{
		Name:        body.Name,
		Description: body.Description.Patch(),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything nested in it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteFolder(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}

// ForkFolder creates a new repository from a folder's contents
// POST /api/folders/{id}/fork
func (h *FolderHandler) ForkFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Folder")
	if !ok {
		return
	}
	var req svc.ForkFolderRequest
	if !parseBody(w, r, &req) {
		return
	}
	userID := httputil.GetUserID(r)
	if err := h.authorizer.CanReadFolder(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}
	req.FolderID = id
	req.OwnerID = userID

	result, err := h.copyService.ForkFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// CopyFolders copies folder subtrees under a target parent
// POST /api/folders/copy
func (h *FolderHandler) CopyFolders(w http.ResponseWriter, r *http.Request) {
	var req svc.CopyFoldersRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !required(w, "target_repository_id", req.TargetRepositoryID) {
		return
	}
	userID := httputil.GetUserID(r)
	for _, id := range req.FolderIDs {
		if err := h.authorizer.CanReadFolder(r.Context(), userID, id); err != nil {
			handleError(w, err)
			return
		}
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), userID, req.TargetRepositoryID); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.copyService.CopyFolders(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	if len(result.Skipped) > 0 {
		h.logger.Warn("folder copy skipped assets", "skipped", len(result.Skipped), "target_repository_id", req.TargetRepositoryID)
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}
