package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/electron-release/internal/config"
	"github.com/oshokin/electron-release/internal/service/shell"
)

var (
	// initSettings collects the values written by the init command.
	initSettings config.Settings
	// overwrite replaces an existing settings file.
	overwrite bool

	// initCmd writes a settings file with defaults filled in.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file for the app shell",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return shell.InitSettings(context.Background(), settingsPath, &initSettings, overwrite)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().StringVar(&initSettings.ListenAddress, "listen-addr", config.DefaultListenAddress, "loopback address windows are served on")
	initCmd.Flags().StringVar(&initSettings.ContentDir, "content-dir", config.DefaultContentDir, "directory with the window content")
	initCmd.Flags().StringVar(&initSettings.IndexFile, "index-file", config.DefaultIndexFile, "page loaded into a new window")
	initCmd.Flags().StringVar(&initSettings.FeedURL, "feed-url", "", "release feed URL, empty disables updates")
	initCmd.Flags().StringVar(&initSettings.StateFile, "state-file", config.DefaultStateFilename, "pending update record")
	initCmd.Flags().DurationVar(&initSettings.Timeout, "timeout", config.DefaultTimeout, "feed request timeout")
	initCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing settings file")
}
