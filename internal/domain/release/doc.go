// Package release contains the core types of the update flow.
//
// Release describes a build published to the feed; Pending records a release
// that was downloaded and verified but not installed yet.
package release
