// Package config holds the settings of both binaries.
//
// Inputs are the release action's options. They come from INPUT_* environment
// variables (the CI runner convention) or from command-line flags, resolved
// through viper, and are validated before anything runs.
//
// Settings are the app shell's connection and content options, kept in a
// YAML file with Load, Save and Validate helpers.
package config
