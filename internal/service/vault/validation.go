package vault

import (
	"fmt"
	"regexp"
	"strings"

	"assetvault/internal/config"
	"assetvault/internal/domain"
	svc "assetvault/internal/domain/services/vault"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("name cannot contain slashes")

// invalid wraps an ozzo error so errors.Is(err, domain.ErrValidation) holds
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// clearable maps an empty PATCH value to NULL
func clearable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// normalizeID treats an empty string as "no folder" (repository root)
func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func validateCreateRepository(req *svc.CreateRepositoryRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxRepositoryNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	))
}

func validateUpdateRepository(req *svc.UpdateRepositoryRequest) error {
	if req.Name == nil && req.Description == nil && req.IsPublic == nil {
		return invalid(fmt.Errorf("at least one field must be provided"))
	}
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxRepositoryNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	))
}

func validateCreateFolder(req *svc.CreateFolderRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.RepositoryID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength), noSlashes),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	))
}

func validateUpdateFolder(req *svc.UpdateFolderRequest) error {
	if req.Name == nil && req.Description == nil {
		return invalid(fmt.Errorf("at least one field must be provided"))
	}
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxFolderNameLength), noSlashes),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	))
}

var tagRules = validation.Each(validation.Required, validation.Length(1, config.MaxTagLength))

func validateCreateAsset(req *svc.CreateAssetRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.RepositoryID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxAssetNameLength)),
		validation.Field(&req.StoragePath, validation.Required),
		validation.Field(&req.Width, validation.Min(0)),
		validation.Field(&req.Height, validation.Min(0)),
		validation.Field(&req.Tags, validation.Length(0, config.MaxTagsPerAsset), tagRules),
	))
}

func validateUpdateAsset(req *svc.UpdateAssetRequest) error {
	if req.Name == nil && req.Tags == nil {
		return invalid(fmt.Errorf("at least one field must be provided"))
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxAssetNameLength)),
	); err != nil {
		return invalid(err)
	}
	if req.Tags != nil {
		if err := validation.Validate(*req.Tags, validation.Length(0, config.MaxTagsPerAsset), tagRules); err != nil {
			return invalid(fmt.Errorf("tags: %w", err))
		}
	}
	return nil
}

func validateCopyFolders(req *svc.CopyFoldersRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.FolderIDs, validation.Required, validation.Length(1, config.MaxCopyBatch), validation.Each(validation.Required)),
		validation.Field(&req.TargetRepositoryID, validation.Required),
	))
}

func validateCopyAssets(req *svc.CopyAssetsRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.AssetIDs, validation.Required, validation.Length(1, config.MaxCopyBatch), validation.Each(validation.Required)),
		validation.Field(&req.TargetRepositoryID, validation.Required),
	))
}

func validateForkFolder(req *svc.ForkFolderRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxRepositoryNameLength)),
	))
}

func validateForkRepository(req *svc.ForkRepositoryRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.SourceRepositoryID, validation.Required),
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxRepositoryNameLength)),
		validation.Field(&req.Dissolve, validation.Each(validation.Required)),
	))
}

func validateRepositoryAsFolder(req *svc.RepositoryAsFolderRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.SourceRepositoryID, validation.Required),
		validation.Field(&req.TargetRepositoryID, validation.Required),
	); err != nil {
		return invalid(err)
	}
	if req.SourceRepositoryID == req.TargetRepositoryID {
		return domain.NewValidationError("source and target repository must differ")
	}
	return nil
}

func validateMoveFolder(req *svc.MoveFolderRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.TargetRepositoryID, validation.Required),
	))
}

func validateMoveAsset(req *svc.MoveAssetRequest) error {
	return invalid(validation.ValidateStruct(req,
		validation.Field(&req.AssetID, validation.Required),
		validation.Field(&req.TargetRepositoryID, validation.Required),
	))
}
