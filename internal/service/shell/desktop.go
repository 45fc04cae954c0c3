//go:build wails

package shell

import (
	"context"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/oshokin/electron-release/internal/logger"
)

const (
	// mainWindowID names the single native window.
	mainWindowID = "main"

	desktopWidth  = 1024
	desktopHeight = 768
)

// RunDesktop starts the shell in a native webview window and blocks until it quits.
// The window loads index.html from the content directory; requests and
// notifications travel as runtime events named after the IPC channels.
//
// Building it needs the webview runtime's desktop and production tags
// alongside wails.
func RunDesktop(ctx context.Context, opts *Options) error {
	if opts == nil {
		return errOptionsNotSet
	}

	ctx = logger.WithName(ctx, "app-shell")

	ctx, quit := context.WithCancel(ctx)
	defer quit()

	a, err := newApp(ctx, opts, quit)
	if err != nil {
		return err
	}

	var window *EventWindow

	err = wails.Run(&options.App{
		Title:       "App " + opts.Version,
		Width:       desktopWidth,
		Height:      desktopHeight,
		AssetServer: &assetserver.Options{Assets: os.DirFS(a.settings.ContentDir)},
		Logger:      webviewLogger{ctx: logger.WithName(ctx, "webview")},
		OnStartup: func(wctx context.Context) {
			window = NewEventWindow(wctx, mainWindowID, runtime.EventsEmit)

			for _, channel := range RequestChannels {
				runtime.EventsOn(wctx, channel, a.bridge.Listener(ctx, window, channel))
			}

			go func() {
				<-ctx.Done()
				runtime.Quit(wctx)
			}()

			logger.InfoKV(ctx, "App ready", "platform", a.target.String(), "version", opts.Version)
			a.bridge.Open(ctx, window)
		},
		OnBeforeClose: func(wctx context.Context) bool {
			if ctx.Err() != nil || window == nil {
				return false
			}

			if !a.bridge.BeforeClose(ctx, window) {
				return false
			}

			runtime.WindowHide(wctx)

			return true
		},
		OnShutdown: func(context.Context) {
			quit()
		},
	})
	if err != nil {
		return fmt.Errorf("run window: %w", err)
	}

	a.bridge.Wait()
	logger.Info(ctx, "App shell stopped")

	return nil
}

// webviewLogger writes the webview runtime's log lines through the app logger.
type webviewLogger struct {
	//nolint:containedctx // Carries the logger name for every line.
	ctx context.Context
}

func (l webviewLogger) Print(message string)   { logger.Info(l.ctx, message) }
func (l webviewLogger) Trace(message string)   { logger.Debug(l.ctx, message) }
func (l webviewLogger) Debug(message string)   { logger.Debug(l.ctx, message) }
func (l webviewLogger) Info(message string)    { logger.Info(l.ctx, message) }
func (l webviewLogger) Warning(message string) { logger.Warn(l.ctx, message) }
func (l webviewLogger) Error(message string)   { logger.ErrorKV(l.ctx, message) }
func (l webviewLogger) Fatal(message string)   { logger.ErrorKV(l.ctx, message) }
