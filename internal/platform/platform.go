// Package platform maps a host operating system identifier onto the
// three targets electron-builder knows about.
package platform

import (
	"runtime"
	"strings"
)

// Platform is an electron-builder build target.
type Platform string

const (
	// Mac targets macOS (electron-builder --mac).
	Mac Platform = "mac"
	// Windows targets Windows (electron-builder --windows).
	Windows Platform = "windows"
	// Linux targets Linux and every OS not recognized otherwise.
	Linux Platform = "linux"
)

// FromOS maps an OS identifier to a Platform. Both Node's "win32" and Go's
// "windows" are accepted; anything unrecognized maps to Linux.
func FromOS(osName string) Platform {
	switch strings.ToLower(strings.TrimSpace(osName)) {
	case "darwin":
		return Mac
	case "win32", "windows":
		return Windows
	default:
		return Linux
	}
}

// Current returns the Platform of the running host.
func Current() Platform {
	return FromOS(runtime.GOOS)
}

// Flag returns the electron-builder command-line flag selecting this platform.
func (p Platform) Flag() string {
	return "--" + string(p)
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}
