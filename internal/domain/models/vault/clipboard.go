package vault

// ItemKind identifies what a clipboard entry or dragged item refers to
type ItemKind string

const (
	KindAsset      ItemKind = "asset"
	KindFolder     ItemKind = "folder"
	KindRepository ItemKind = "repository"
)

// ClipboardEntry is the copied item: its kind, ID and the repository it came from.
// It only lives in a client session.
type ClipboardEntry struct {
	Kind               ItemKind `json:"kind"`
	ID                 string   `json:"id"`
	SourceRepositoryID string   `json:"source_repository_id"`
}
