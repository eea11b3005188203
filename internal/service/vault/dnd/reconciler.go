// Package dnd turns a drag-and-drop gesture into a move intent.
package dnd

import (
	"context"
	"errors"
	"fmt"

	"assetvault/internal/domain"
	models "assetvault/internal/domain/models/vault"
	"assetvault/internal/tree"
)

var (
	// ErrSelfDrop is returned when a folder is dropped onto itself
	ErrSelfDrop = fmt.Errorf("%w: cannot drop a folder onto itself", domain.ErrValidation)

	// ErrCycle is returned when a folder is dropped into one of its descendants
	ErrCycle = fmt.Errorf("%w: cannot move a folder into its own descendant", domain.ErrValidation)
)

// Locator finds the current location of folders and assets
type Locator interface {
	Folder(ctx context.Context, id string) (*models.Folder, error)
	Asset(ctx context.Context, id string) (*models.Asset, error)
}

// Reconciler resolves drops against a Locator
type Reconciler struct {
	locator Locator
}

// NewReconciler creates a reconciler
func NewReconciler(locator Locator) *Reconciler {
	return &Reconciler{locator: locator}
}

// Resolve computes where a dropped item goes.
//
// Order of checks: self-drop, target resolution, same-location no-op,
// then a full ancestor walk so a folder never lands inside its own subtree.
func (r *Reconciler) Resolve(ctx context.Context, item models.DragItem, target models.DropTarget) (*models.MoveIntent, error) {
	if err := validate(item, target); err != nil {
		return nil, err
	}
	if item.Kind == models.KindFolder && target.Kind == models.KindFolder && item.ID == target.ID {
		return nil, ErrSelfDrop
	}

	intent := &models.MoveIntent{Kind: item.Kind, ID: item.ID}

	switch target.Kind {
	case models.KindFolder:
		folder, err := r.locator.Folder(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve drop target: %w", err)
		}
		intent.ToRepositoryID = folder.RepositoryID
		id := folder.ID
		intent.ToFolderID = &id
	case models.KindRepository:
		intent.ToRepositoryID = target.ID
	}

	switch item.Kind {
	case models.KindFolder:
		folder, err := r.locator.Folder(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("locate dragged folder: %w", err)
		}
		intent.FromRepositoryID = folder.RepositoryID
		intent.FromFolderID = folder.ParentID
	case models.KindAsset:
		asset, err := r.locator.Asset(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("locate dragged asset: %w", err)
		}
		intent.FromRepositoryID = asset.RepositoryID
		intent.FromFolderID = asset.FolderID
	}

	if intent.FromRepositoryID == intent.ToRepositoryID && models.SameParent(intent.FromFolderID, intent.ToFolderID) {
		intent.NoOp = true
		return intent, nil
	}

	if item.Kind == models.KindFolder && intent.ToFolderID != nil {
		inside, err := r.isDescendant(ctx, *intent.ToFolderID, item.ID)
		if err != nil {
			return nil, err
		}
		if inside {
			return nil, ErrCycle
		}
	}

	return intent, nil
}

// isDescendant walks the candidate's ancestors through the locator
func (r *Reconciler) isDescendant(ctx context.Context, candidateID, ancestorID string) (bool, error) {
	var lookupErr error
	found := tree.IsDescendant(candidateID, ancestorID, func(id string) (*string, bool) {
		if lookupErr != nil {
			return nil, false
		}
		f, err := r.locator.Folder(ctx, id)
		if err != nil {
			// A dangling parent reference ends the chain like a root
			if !errors.Is(err, domain.ErrNotFound) {
				lookupErr = err
			}
			return nil, false
		}
		return f.ParentID, true
	})
	if lookupErr != nil {
		return false, fmt.Errorf("check folder ancestry: %w", lookupErr)
	}
	return found, nil
}

func validate(item models.DragItem, target models.DropTarget) error {
	if item.ID == "" || target.ID == "" {
		return domain.NewValidationError("drag item and drop target need an id")
	}
	if item.Kind != models.KindFolder && item.Kind != models.KindAsset {
		return domain.NewValidationError("cannot drag a %q", item.Kind)
	}
	if target.Kind != models.KindFolder && target.Kind != models.KindRepository {
		return domain.NewValidationError("cannot drop onto a %q", target.Kind)
	}
	return nil
}
