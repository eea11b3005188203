package handler

import (
	"log/slog"
	"net/http"

	"assetvault/internal/domain/services"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/httputil"
)

// AssetHandler handles asset HTTP requests
type AssetHandler struct {
	assetService svc.AssetService
	copyService  svc.CopyService
	authorizer   services.ResourceAuthorizer
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(
	assetService svc.AssetService,
	copyService svc.CopyService,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		copyService:  copyService,
		authorizer:   authorizer,
		logger:       logger,
	}
}

// CreateAsset records an uploaded blob as an asset
// POST /api/assets
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateAssetRequest
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

	asset, err := h.assetService.CreateAsset(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, asset)
}

// GetAsset retrieves an asset record
// GET /api/assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Asset")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadAsset(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	asset, err := h.assetService.GetAsset(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, asset)
}

// Images are authorized per user, so shared caches must not keep them.
const imageCacheControl = "private, max-age=300"

// GetImage streams the stored image bytes
// GET /api/assets/{id}/image
func (h *AssetHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Asset")
	if !ok {
		return
	}
	if err := h.authorizer.CanReadAsset(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	data, err := h.assetService.Image(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Cache-Control", imageCacheControl)
	httputil.RespondBytes(w, "", data)
}

// UpdateAsset renames an asset or replaces its tags
// PATCH /api/assets/{id}
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Asset")
	if !ok {
		return
	}
	var req svc.UpdateAssetRequest
	if !parseBody(w, r, &req) {
		return
	}
	if err := h.authorizer.CanWriteAsset(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	asset, err := h.assetService.UpdateAsset(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, asset)
}

// DeleteAsset deletes an asset and its blob
// DELETE /api/assets/{id}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Asset")
	if !ok {
		return
	}
	if err := h.authorizer.CanWriteAsset(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	if err := h.assetService.DeleteAsset(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondNoContent(w)
}

// CopyAssets copies assets into a target folder
// POST /api/assets/copy
func (h *AssetHandler) CopyAssets(w http.ResponseWriter, r *http.Request) {
	var req svc.CopyAssetsRequest
	if !parseBody(w, r, &req) {
		return
	}
	if !required(w, "target_repository_id", req.TargetRepositoryID) {
		return
	}
	userID := httputil.GetUserID(r)
	for _, id := range req.AssetIDs {
		if err := h.authorizer.CanReadAsset(r.Context(), userID, id); err != nil {
			handleError(w, err)
			return
		}
	}
	if err := h.authorizer.CanWriteRepository(r.Context(), userID, req.TargetRepositoryID); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.copyService.CopyAssets(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}
