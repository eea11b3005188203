package vault

import (
	"time"
)

// Repository is the top-level container owning folders and assets.
// View, fork and like counters are maintained by the record store.
type Repository struct {
	ID           string    `json:"id" db:"id"`
	WorkspaceID  string    `json:"workspace_id" db:"workspace_id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	IsPublic     bool      `json:"is_public" db:"is_public"`
	ViewCount    int       `json:"view_count" db:"view_count"`
	ForkCount    int       `json:"fork_count" db:"fork_count"`
	LikeCount    int       `json:"like_count" db:"like_count"`
	ForkedFromID *string   `json:"forked_from_id,omitempty" db:"forked_from_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
