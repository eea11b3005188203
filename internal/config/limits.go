package config

const (
	// MaxRepositoryNameLength is the maximum length for repository names.
	// Limited to 255 to provide reasonable UX (names should be short and descriptive).
	MaxRepositoryNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Leaves room for the " (Copy)" suffix added when a folder is pasted next to itself.
	MaxFolderNameLength = 240

	// MaxAssetNameLength is the maximum length for an asset's display name.
	MaxAssetNameLength = 255

	// MaxDescriptionLength caps repository and folder descriptions.
	MaxDescriptionLength = 2000

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 64

	// MaxTagsPerAsset bounds the tag list of one asset.
	MaxTagsPerAsset = 50

	// MaxCopyBatch bounds how many folders or assets one copy request may name.
	// Each folder is walked recursively, so the real record count can be larger.
	MaxCopyBatch = 200
)
