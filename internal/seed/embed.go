package seed

import (
	"bytes"
	_ "embed"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

// DemoFixture is the built-in fixture used when no file is given
func DemoFixture() (*Fixture, error) {
	return LoadFixture(bytes.NewReader(demoFixture))
}
