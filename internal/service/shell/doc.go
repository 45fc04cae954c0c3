// Package shell is the desktop application shell.
//
// It serves the application's local content to windows and bridges the
// background update checker to them. The shell pushes update_available,
// download_progress and update_downloaded to every window, and answers
// app_version and restart_app requests.
//
// Two window runtimes share the Bridge. Run serves windows as browser pages
// on a loopback address, each holding a WebSocket that carries JSON messages;
// it needs no native toolkit and is what headless builds and tests use.
// RunDesktop, built with the wails tag, opens a native webview window and
// carries the same channels as runtime events.
//
// Lifecycle follows the desktop conventions: every window creation triggers
// an update check, and closing the last window quits the shell everywhere but
// on macOS, where the app stays alive until a new window is opened.
package shell
