package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	domain "github.com/oshokin/electron-release/internal/domain/release"
	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/platform"
	"github.com/oshokin/electron-release/internal/service/updater"
)

// Checker is the update library the bridge drives.
type Checker interface {
	CheckForUpdates(ctx context.Context, events updater.Events) error
	QuitAndInstall(ctx context.Context) error
}

// errUnknownChannel is returned for requests on channels the shell does not serve.
var errUnknownChannel = errors.New("unknown channel")

// Bridge connects windows to the update checker and owns the window set.
type Bridge struct {
	version  string
	platform platform.Platform
	checker  Checker
	quit     func()

	// mu guards windows.
	mu      sync.Mutex
	windows []Window
	// checks tracks background update checks.
	checks sync.WaitGroup
}

// NewBridge creates a bridge. quit is called when the shell must exit:
// after the last window closed (except on macOS) or after an update was installed.
func NewBridge(version string, target platform.Platform, checker Checker, quit func()) *Bridge {
	return &Bridge{
		version:  version,
		platform: target,
		checker:  checker,
		quit:     quit,
	}
}

// Open registers a new window and starts an update check in the background.
// It reports whether the window re-activated an app with no windows open.
func (b *Bridge) Open(ctx context.Context, w Window) bool {
	b.mu.Lock()
	activated := len(b.windows) == 0
	b.windows = append(b.windows, w)
	b.mu.Unlock()

	logger.InfoKV(ctx, "Window created", "window", w.ID(), "activated", activated)

	if b.checker == nil {
		return activated
	}

	b.checks.Add(1)

	go func() {
		defer b.checks.Done()

		err := b.checker.CheckForUpdates(ctx, b)

		switch {
		case err == nil, errors.Is(err, updater.ErrCheckInProgress):
		case errors.Is(err, context.Canceled):
			logger.Debug(ctx, "Update check canceled")
		default:
			logger.ErrorKV(ctx, "Update check failed", "error", err)
		}
	}()

	return activated
}

// Close unregisters w. When it was the last window the shell quits,
// unless it runs on macOS.
func (b *Bridge) Close(ctx context.Context, w Window) {
	b.mu.Lock()
	b.windows = slices.DeleteFunc(b.windows, func(open Window) bool {
		return open == w
	})
	remaining := len(b.windows)
	b.mu.Unlock()

	logger.InfoKV(ctx, "Window closed", "window", w.ID(), "remaining", remaining)

	if remaining > 0 {
		return
	}

	if b.platform == platform.Mac {
		logger.Info(ctx, "All windows closed, staying alive on macOS")
		return
	}

	logger.Info(ctx, "All windows closed, quitting")
	b.quit()
}

// Handle serves a request sent by w.
func (b *Bridge) Handle(ctx context.Context, w Window, msg Message) error {
	switch msg.Channel {
	case ChannelAppVersion:
		reply, err := newMessage(ChannelAppVersion, VersionPayload{Version: b.version})
		if err != nil {
			return err
		}

		return w.Send(ctx, reply)
	case ChannelRestartApp:
		if b.checker == nil {
			return nil
		}

		if err := b.checker.QuitAndInstall(ctx); err != nil {
			return fmt.Errorf("install update: %w", err)
		}

		b.quit()

		return nil
	default:
		return fmt.Errorf("%q: %w", msg.Channel, errUnknownChannel)
	}
}

// Windows returns the number of open windows.
func (b *Bridge) Windows() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.windows)
}

// Wait blocks until background update checks finish.
func (b *Bridge) Wait() {
	b.checks.Wait()
}

// UpdateAvailable implements updater.Events.
func (b *Bridge) UpdateAvailable(ctx context.Context, _ *domain.Release) {
	b.broadcast(ctx, ChannelUpdateAvailable, nil)
}

// DownloadProgress implements updater.Events.
func (b *Bridge) DownloadProgress(ctx context.Context, percent float64) {
	b.broadcast(ctx, ChannelDownloadProgress, ProgressPayload{Progress: percent})
}

// UpdateDownloaded implements updater.Events.
func (b *Bridge) UpdateDownloaded(ctx context.Context, _ *domain.Release) {
	b.broadcast(ctx, ChannelUpdateDownloaded, nil)
}

// broadcast sends a notification to every open window.
// Delivery failures are logged; a dead window is removed by its own read loop.
func (b *Bridge) broadcast(ctx context.Context, channel string, payload any) {
	msg, err := newMessage(channel, payload)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode message", "channel", channel, "error", err)
		return
	}

	b.mu.Lock()
	targets := slices.Clone(b.windows)
	b.mu.Unlock()

	for _, w := range targets {
		if err = w.Send(ctx, msg); err != nil {
			logger.WarnKV(ctx, "Failed to notify window", "window", w.ID(), "channel", channel, "error", err)
		}
	}
}
