//go:build wails

package cmd

import "github.com/oshokin/electron-release/internal/service/shell"

//nolint:gochecknoinits // Selects the native window runtime for wails builds.
func init() {
	runShell = shell.RunDesktop
}
