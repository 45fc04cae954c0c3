// Package updater checks the release feed, downloads newer builds and
// installs them over the running executable.
//
// A check reports its progress through the Events interface: update
// available, download progress and update downloaded. The verified download
// is recorded in a pending.Repository and installed by QuitAndInstall, which
// stops other instances of the executable, atomically replaces it with
// go-update and starts the new build.
package updater
