package vault

import (
	"time"
)

// MetadataName is the metadata key holding an asset's display name
const MetadataName = "name"

// Asset is a stored image attached to a folder or to its repository root.
type Asset struct {
	ID           string         `json:"id" db:"id"`
	RepositoryID string         `json:"repository_id" db:"repository_id"`
	FolderID     *string        `json:"folder_id" db:"folder_id"` // NULL = repository root
	Position     int            `json:"position" db:"position"`   // unique within a folder only
	StoragePath  string         `json:"storage_path" db:"storage_path"`
	Width        int            `json:"width" db:"width"`
	Height       int            `json:"height" db:"height"`
	Tags         []string       `json:"tags" db:"tags"`
	Metadata     map[string]any `json:"metadata" db:"metadata"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Name returns the display name stored in metadata, or "" when unset
func (a *Asset) Name() string {
	if a.Metadata == nil {
		return ""
	}
	name, _ := a.Metadata[MetadataName].(string)
	return name
}

// CloneMetadata returns a shallow copy of the metadata bag
func (a *Asset) CloneMetadata() map[string]any {
	if a.Metadata == nil {
		return nil
	}
	out := make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		out[k] = v
	}
	return out
}
