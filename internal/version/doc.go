// Package version exposes build metadata for the release action and the app shell.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// The app shell also reports Version to its window on the app_version channel
// and compares it against the release feed.
package version
