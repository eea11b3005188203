package session

import (
	"regexp"
	"strings"

	"assetvault/internal/config"
	"assetvault/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TempIDPrefix marks IDs minted by the session for records the server has
// not confirmed yet
const TempIDPrefix = "temp-"

// IsTempID reports whether id belongs to an unconfirmed record
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

var noSlashes = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("name cannot contain slashes")

func validateFolderName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxFolderNameLength), noSlashes); err != nil {
		return domain.NewValidationError("folder name: %v", err)
	}
	return nil
}

func validateAssetName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxAssetNameLength)); err != nil {
		return domain.NewValidationError("asset name: %v", err)
	}
	return nil
}

func validateID(what, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("%s id is required", what)
	}
	if IsTempID(id) {
		return domain.NewValidationError("%s %s is still being created", what, id)
	}
	return nil
}
