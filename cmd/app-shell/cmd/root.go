package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/electron-release/internal/config"
	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/service/shell"
	"github.com/oshokin/electron-release/internal/version"
)

var (
	// settingsPath to the settings YAML file.
	settingsPath string
	// logLevel is the minimum level written to the console.
	logLevel string

	// runShell is the window runtime; wails builds replace it with the native one.
	runShell = shell.Run

	// rootCmd represents the base command for running the app shell.
	rootCmd = &cobra.Command{
		Use:          "app-shell",
		Short:        "Serve the app window and deliver updates to it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			options := &shell.Options{
				SettingsPath: settingsPath,
				Version:      version.Short(),
			}

			return runShell(ctx, options)
		},
	}
)

// Execute runs the app-shell CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "config", "c", config.DefaultSettingsFilename, "path to settings file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
