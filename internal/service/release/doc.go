// Package release builds an Electron app with electron-builder and optionally
// publishes it.
//
// Run validates the inputs, picks the package manager from the lockfile,
// checks the manifest, installs dependencies, runs the build script and then
// invokes electron-builder with a publish-always policy, retrying only that
// last step. Credentials are passed to each child process through an
// environment overlay.
package release
