package vault

import (
	"context"
	"fmt"

	models "assetvault/internal/domain/models/vault"
	vaultRepo "assetvault/internal/domain/repositories/vault"
)

// slots hands out increasing positions per destination folder within one
// operation. Buckets created by the operation start at zero; existing ones
// start after their current last entry.
type slots struct {
	repositoryID string
	next         map[string]int
	load         func(ctx context.Context, repositoryID string, parentID *string) (int, error)
}

func bucketKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

// fresh registers a bucket created by the current operation
func (s *slots) fresh(parentID *string) {
	s.next[bucketKey(parentID)] = 0
}

func (s *slots) take(ctx context.Context, parentID *string) (int, error) {
	key := bucketKey(parentID)
	pos, ok := s.next[key]
	if !ok {
		var err error
		pos, err = s.load(ctx, s.repositoryID, parentID)
		if err != nil {
			return 0, err
		}
	}
	s.next[key] = pos + 1
	return pos, nil
}

func newAssetSlots(repositoryID string, assetRepo vaultRepo.AssetRepository) *slots {
	return &slots{
		repositoryID: repositoryID,
		next:         make(map[string]int),
		load:         assetRepo.NextPosition,
	}
}

func newFolderSlots(repositoryID string, folderRepo vaultRepo.FolderRepository) *slots {
	return &slots{
		repositoryID: repositoryID,
		next:         make(map[string]int),
		load: func(ctx context.Context, repositoryID string, parentID *string) (int, error) {
			return nextFolderPosition(ctx, folderRepo, repositoryID, parentID)
		},
	}
}

// nextFolderPosition returns one past the highest sibling position
func nextFolderPosition(ctx context.Context, folderRepo vaultRepo.FolderRepository, repositoryID string, parentID *string) (int, error) {
	siblings, err := folderRepo.ListChildren(ctx, repositoryID, parentID)
	if err != nil {
		return 0, fmt.Errorf("list siblings: %w", err)
	}
	return maxFolderPosition(siblings) + 1, nil
}

func maxFolderPosition(folders []models.Folder) int {
	highest := -1
	for _, f := range folders {
		if f.Position > highest {
			highest = f.Position
		}
	}
	return highest
}
