// Package pending persists the update that was downloaded but not installed.
//
// FileRepository stores it as JSON on disk so a shell restarted before the
// user clicked "restart" can still install what it already verified.
package pending
