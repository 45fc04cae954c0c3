package shell

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/oshokin/electron-release/internal/config"
	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/platform"
	"github.com/oshokin/electron-release/internal/repository/pending"
	"github.com/oshokin/electron-release/internal/service/updater"
)

const (
	// readHeaderTimeout protects the loopback server from stalled clients.
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 5 * time.Second
)

// Options are inputs accepted by the shell entry point.
type Options struct {
	// SettingsPath is the optional path to the settings YAML file.
	SettingsPath string
	// Version is reported on app_version and compared with the feed.
	Version string
	// Platform drives the window-all-closed behavior. Defaults to the host.
	Platform platform.Platform
	// ExecutablePath is replaced on install. Defaults to the running executable.
	ExecutablePath string
	// OnReady, when set, receives the URL of the main window once it can be loaded.
	OnReady func(url string)
}

// errOptionsNotSet is returned when nil options are provided.
var errOptionsNotSet = errors.New("options are not set")

// app is the part of the shell shared by every window runtime.
type app struct {
	settings *config.Settings
	target   platform.Platform
	bridge   *Bridge
}

// newApp loads settings and wires the update checker to a bridge.
// quit is called when the shell must exit.
func newApp(ctx context.Context, opts *Options, quit func()) (*app, error) {
	settings, err := config.LoadSettings(opts.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	target := opts.Platform
	if target == "" {
		target = platform.Current()
	}

	var checker Checker

	if settings.FeedURL != "" {
		up, upErr := updater.New(&updater.Options{
			FeedURL:        settings.FeedURL,
			CurrentVersion: opts.Version,
			ExecutablePath: opts.ExecutablePath,
			Timeout:        settings.Timeout,
			Repository:     pending.NewFileRepository(settings.StateFile),
		})
		if upErr != nil {
			return nil, fmt.Errorf("initialize updater: %w", upErr)
		}

		checker = up
	} else {
		logger.Warn(ctx, "No feed URL configured, update checks are disabled")
	}

	return &app{
		settings: settings,
		target:   target,
		bridge:   NewBridge(opts.Version, target, checker, quit),
	}, nil
}

// Run starts the shell and blocks until it quits or ctx is canceled.
// Windows are browser pages served on a loopback address, talking IPC over a WebSocket.
func Run(ctx context.Context, opts *Options) error {
	if opts == nil {
		return errOptionsNotSet
	}

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "app-shell")

	ctx, quit := context.WithCancel(ctx)
	defer quit()

	a, err := newApp(ctx, opts, quit)
	if err != nil {
		return err
	}

	settings, target, bridge := a.settings, a.target, a.bridge
	server := NewServer(ctx, bridge, settings.ContentDir, settings.IndexFile)

	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", settings.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	url := "http://" + listener.Addr().String() + "/"
	logger.InfoKV(ctx, "App ready", "url", url, "platform", target.String(), "version", opts.Version)

	if opts.OnReady != nil {
		opts.OnReady(url)
	}

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WarnKV(ctx, "Shutdown incomplete", "error", err)
	}

	server.CloseWindows()

	bridge.Wait()
	logger.Info(ctx, "App shell stopped")

	return nil
}

// ErrSettingsExist is returned by InitSettings when the file is already present.
var ErrSettingsExist = errors.New("settings file already exists")

// InitSettings validates s, fills its defaults and writes it to path.
// An existing file is kept unless overwrite is set.
func InitSettings(ctx context.Context, path string, s *config.Settings, overwrite bool) error {
	if path == "" {
		path = config.DefaultSettingsFilename
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s: %w", path, ErrSettingsExist)
	}

	if err := config.SaveSettings(path, s); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Settings written", "path", path, "feed_url", s.FeedURL, "content_dir", s.ContentDir)

	return nil
}
