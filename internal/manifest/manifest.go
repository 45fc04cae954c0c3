// Package manifest reads the package.json of the project being released.
//
// The file is read once per run. Comments and trailing commas are tolerated
// (github.com/tidwall/jsonc strips them) because yarn and npm both accept
// hand-edited manifests that strict encoding/json would reject.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Filename is the manifest file name inside a package root.
const Filename = "package.json"

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
	// ErrMalformed is returned when the manifest is not valid JSON.
	ErrMalformed = errors.New("manifest is malformed")
)

// Manifest holds the parts of package.json the release action looks at.
type Manifest struct {
	// Name is the package name.
	Name string `json:"name"`
	// Version is the package version.
	Version string `json:"version"`
	// Scripts maps script names to their command lines.
	Scripts map[string]string `json:"scripts"`
}

// Path returns the manifest path for the given package root.
func Path(packageRoot string) string {
	return filepath.Join(packageRoot, Filename)
}

// Load reads and parses the manifest in packageRoot.
func Load(packageRoot string) (*Manifest, error) {
	path := Path(packageRoot)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return &m, nil
}

// HasScript reports whether the scripts table defines a non-empty script named name.
func (m *Manifest) HasScript(name string) bool {
	if m == nil {
		return false
	}

	return m.Scripts[name] != ""
}
