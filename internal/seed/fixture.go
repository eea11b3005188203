package seed

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of repositories to create
type Fixture struct {
	WorkspaceID  string              `yaml:"workspace_id"`
	OwnerID      string              `yaml:"owner_id"`
	Repositories []RepositoryFixture `yaml:"repositories"`
}

type RepositoryFixture struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Public      bool            `yaml:"public"`
	Folders     []FolderFixture `yaml:"folders"`
	Assets      []AssetFixture  `yaml:"assets"`
}

type FolderFixture struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Folders     []FolderFixture `yaml:"folders"`
	Assets      []AssetFixture  `yaml:"assets"`
}

// AssetFixture is one image. Without a file a flat placeholder PNG of the
// given size is generated.
type AssetFixture struct {
	Name   string   `yaml:"name"`
	File   string   `yaml:"file"`
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Tags   []string `yaml:"tags"`
	Color  string   `yaml:"color"` // #rrggbb, placeholder fill
}

// LoadFixture decodes a fixture, rejecting unknown keys
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if f.WorkspaceID == "" || f.OwnerID == "" {
		return nil, fmt.Errorf("fixture needs workspace_id and owner_id")
	}
	return &f, nil
}
