// Package pkgmanager resolves which JavaScript package manager drives a
// project and renders the command lines for each release step.
//
// The choice is made once from the lockfile present in the package root and
// passed to every step, so adding a third manager means adding one case here.
package pkgmanager

import (
	"os"
	"path/filepath"

	"github.com/oshokin/electron-release/internal/manifest"
	"github.com/oshokin/electron-release/internal/platform"
)

// Manager is a package manager.
type Manager string

const (
	// NPM is selected when package-lock.json is present.
	NPM Manager = "npm"
	// Yarn is selected otherwise.
	Yarn Manager = "yarn"
)

// LockfileNPM is the lockfile whose presence selects NPM.
const LockfileNPM = "package-lock.json"

// packagerName is the electron-builder executable as exposed by node_modules/.bin.
const packagerName = "electron-builder"

// Detect chooses NPM when packageRoot contains package-lock.json and Yarn otherwise.
// A yarn.lock next to package-lock.json is not considered.
func Detect(packageRoot string) Manager {
	if _, err := os.Stat(filepath.Join(packageRoot, LockfileNPM)); err == nil {
		return NPM
	}

	return Yarn
}

// DisplayName is the human-readable manager name used in log lines.
func (m Manager) DisplayName() string {
	switch m {
	case NPM:
		return "NPM"
	case Yarn:
		return "Yarn"
	default:
		return string(m)
	}
}

// InstallArgs returns the program and arguments installing dependencies.
func (m Manager) InstallArgs() (string, []string) {
	if m == NPM {
		return "npm", []string{"install"}
	}

	return "yarn", nil
}

// BuildArgs returns the program and arguments running the build script.
// ok is false when the step must be skipped: yarn fails on unknown scripts,
// so it only runs scripts present in the manifest, while npm is always
// invoked with --if-present.
func (m Manager) BuildArgs(script string, pkg *manifest.Manifest) (name string, args []string, ok bool) {
	if m == NPM {
		return "npm", []string{"run", script, "--if-present"}, true
	}

	if !pkg.HasScript(script) {
		return "", nil, false
	}

	return "yarn", []string{"run", script}, true
}

// PackageArgs returns the program and arguments invoking electron-builder
// for target with the publish-always policy; extra is appended verbatim.
func (m Manager) PackageArgs(target platform.Platform, extra []string) (string, []string) {
	var (
		name string
		args []string
	)

	if m == NPM {
		name, args = "npx", []string{"--no-install", packagerName}
	} else {
		name, args = "yarn", []string{"run", packagerName}
	}

	args = append(args, target.Flag(), "--publish", "always")
	args = append(args, extra...)

	return name, args
}
