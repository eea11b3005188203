package handler

import (
	"context"
	"log/slog"
	"net/http"

	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/domain/services"
	svc "assetvault/internal/domain/services/vault"
	"assetvault/internal/httputil"
)

// MoveHandler applies drag-and-drop gestures
type MoveHandler struct {
	moveService svc.MoveService
	authorizer  services.ResourceAuthorizer
	logger      *slog.Logger
}

// NewMoveHandler creates a new move handler
func NewMoveHandler(moveService svc.MoveService, authorizer services.ResourceAuthorizer, logger *slog.Logger) *MoveHandler {
	return &MoveHandler{
		moveService: moveService,
		authorizer:  authorizer,
		logger:      logger,
	}
}

type dropBody struct {
	Item   models.DragItem   `json:"item"`
	Target models.DropTarget `json:"target"`
}

// Drop moves a folder or asset onto a repository or folder.
// Responds with the resolved intent; no_op is set when nothing moved.
// POST /api/moves
func (h *MoveHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var body dropBody
	if !parseBody(w, r, &body) {
		return
	}
	if !required(w, "item.id", body.Item.ID) || !required(w, "target.id", body.Target.ID) {
		return
	}
	userID := httputil.GetUserID(r)
	if err := h.canWrite(r.Context(), userID, body.Item.Kind, body.Item.ID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.canWrite(r.Context(), userID, body.Target.Kind, body.Target.ID); err != nil {
		handleError(w, err)
		return
	}

	intent, err := h.moveService.Drop(r.Context(), body.Item, body.Target)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, intent)
}

// canWrite dispatches on kind; unknown kinds are left to the reconciler's validation
func (h *MoveHandler) canWrite(ctx context.Context, userID string, kind models.ItemKind, id string) error {
	switch kind {
	case models.KindRepository:
		return h.authorizer.CanWriteRepository(ctx, userID, id)
	case models.KindFolder:
		return h.authorizer.CanWriteFolder(ctx, userID, id)
	case models.KindAsset:
		return h.authorizer.CanWriteAsset(ctx, userID, id)
	}
	return nil
}
