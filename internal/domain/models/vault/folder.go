package vault

import (
	"time"
)

type Folder struct {
	ID           string    `json:"id" db:"id"`
	RepositoryID string    `json:"repository_id" db:"repository_id"`
	ParentID     *string   `json:"parent_id" db:"parent_id"` // NULL = repository root
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at its repository root
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
