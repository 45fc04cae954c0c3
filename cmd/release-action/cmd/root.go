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
	"github.com/oshokin/electron-release/internal/runner"
	"github.com/oshokin/electron-release/internal/service/release"
	"github.com/oshokin/electron-release/internal/version"
)

var (
	// inputs resolves options from INPUT_* variables and flags.
	inputs = config.NewInputsViper()

	// rootCmd represents the base command for building and publishing the app.
	rootCmd = &cobra.Command{
		Use:   "release-action",
		Short: "Build and publish an Electron app with electron-builder",
		Long: "Installs dependencies with npm or yarn (chosen by the presence of package-lock.json), " +
			"runs the build script and packages the app with electron-builder using --publish always. " +
			"Options are read from INPUT_<NAME> environment variables or the matching flags.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			in, err := config.LoadInputs(inputs)
			if err != nil {
				return err
			}

			level, ok := logger.ParseLogLevel(in.LogLevel)
			if !ok {
				return fmt.Errorf("%q %w: unknown level %q", config.KeyLogLevel, config.ErrInvalidInput, in.LogLevel)
			}

			logger.SetLevel(level)

			options := &release.Options{
				Inputs: in,
				Runner: runner.NewExec(),
			}

			return release.Run(ctx, options)
		},
	}
)

// Execute runs the release-action CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	if err := config.RegisterInputFlags(inputs, rootCmd.Flags()); err != nil {
		panic(err)
	}
}
