package services

import "context"

// ResourceAuthorizer checks whether a user may read or change a record.
// Handlers call it before invoking a service.
type ResourceAuthorizer interface {
	// CanReadRepository allows the owner and, for public repositories, anyone
	CanReadRepository(ctx context.Context, userID, repositoryID string) error

	// CanWriteRepository allows only the owner
	CanWriteRepository(ctx context.Context, userID, repositoryID string) error

	CanReadFolder(ctx context.Context, userID, folderID string) error
	CanWriteFolder(ctx context.Context, userID, folderID string) error

	CanReadAsset(ctx context.Context, userID, assetID string) error
	CanWriteAsset(ctx context.Context, userID, assetID string) error
}
