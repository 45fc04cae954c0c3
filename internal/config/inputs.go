package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Option keys. Each maps to the INPUT_<KEY> environment variable and to a
// dashed command-line flag (package_root -> --package-root).
const (
	KeyRelease              = "release"
	KeyPackageRoot          = "package_root"
	KeyBuildScriptName      = "build_script_name"
	KeySkipBuild            = "skip_build"
	KeyArgs                 = "args"
	KeyMaxAttempts          = "max_attempts"
	KeyAppRoot              = "app_root"
	KeyGitHubToken          = "github_token"
	KeyMacCerts             = "mac_certs"
	KeyMacCertsPassword     = "mac_certs_password"
	KeyWindowsCerts         = "windows_certs"
	KeyWindowsCertsPassword = "windows_certs_password"
	KeyLogLevel             = "log_level"
)

const (
	// envPrefix is prepended to every key when reading the environment.
	envPrefix = "INPUT"

	// DefaultMaxAttempts is the publish attempt bound when max_attempts is unset.
	DefaultMaxAttempts = 1
)

var (
	// ErrMissingInput is returned when a required option is absent or empty.
	ErrMissingInput = errors.New("input variable is not defined")
	// ErrInvalidInput is returned when an option has a value of the wrong type.
	ErrInvalidInput = errors.New("input variable is invalid")
)

// requiredKeys are checked, in order, before any side effect.
//
//nolint:gochecknoglobals // Read-only table.
var requiredKeys = []string{KeyRelease, KeyPackageRoot, KeyBuildScriptName, KeyGitHubToken}

// Inputs is the release action configuration. It is read once and not
// modified afterwards.
type Inputs struct {
	// Release selects the "building and releasing" log phrasing.
	Release bool
	// PackageRoot is the directory containing package.json and the lockfile.
	PackageRoot string
	// BuildScriptName is the manifest script run before packaging.
	BuildScriptName string
	// SkipBuild disables the build step.
	SkipBuild bool
	// Args holds extra electron-builder arguments, whitespace separated.
	Args string
	// MaxAttempts bounds the publish retry loop; always at least 1.
	MaxAttempts int
	// AppRoot is where electron-builder runs; defaults to PackageRoot.
	AppRoot string
	// GitHubToken is handed to electron-builder for publishing.
	GitHubToken string
	// MacCerts is the macOS signing certificate (path, URL or base64).
	MacCerts string
	// MacCertsPassword unlocks MacCerts.
	MacCertsPassword string
	// WindowsCerts is the Windows signing certificate.
	WindowsCerts string
	// WindowsCertsPassword unlocks WindowsCerts.
	WindowsCertsPassword string
	// LogLevel is the requested log level name.
	LogLevel string
}

// Validate checks the required string options of inputs built without LoadInputs.
func (in *Inputs) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{key: KeyPackageRoot, value: in.PackageRoot},
		{key: KeyBuildScriptName, value: in.BuildScriptName},
		{key: KeyGitHubToken, value: in.GitHubToken},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%q %w", r.key, ErrMissingInput)
		}
	}

	if in.MaxAttempts < 1 {
		return fmt.Errorf("%q %w: must be at least 1", KeyMaxAttempts, ErrInvalidInput)
	}

	return nil
}

// ExtraArgs splits Args on whitespace.
func (in *Inputs) ExtraArgs() []string {
	return strings.Fields(in.Args)
}

// NewInputsViper returns a viper instance reading INPUT_* variables.
func NewInputsViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyMaxAttempts, strconv.Itoa(DefaultMaxAttempts))
	v.SetDefault(KeyLogLevel, "info")

	return v
}

// FlagName converts an option key to its command-line flag name.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// RegisterInputFlags declares one string flag per option on flags and binds
// them into v. Flags that are set take precedence over the environment.
func RegisterInputFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	usage := map[string]string{
		KeyRelease:              `"true" to publish the release, anything else to only build`,
		KeyPackageRoot:          "directory containing package.json",
		KeyBuildScriptName:      "package.json script run before packaging",
		KeySkipBuild:            `"true" to skip the build script`,
		KeyArgs:                 "extra electron-builder arguments",
		KeyMaxAttempts:          "maximum number of packaging attempts",
		KeyAppRoot:              "directory electron-builder runs in (defaults to package root)",
		KeyGitHubToken:          "token used by electron-builder to publish",
		KeyMacCerts:             "macOS code signing certificate",
		KeyMacCertsPassword:     "password for the macOS certificate",
		KeyWindowsCerts:         "Windows code signing certificate",
		KeyWindowsCertsPassword: "password for the Windows certificate",
		KeyLogLevel:             "log level (debug, info, warn, error)",
	}

	for _, key := range []string{
		KeyRelease, KeyPackageRoot, KeyBuildScriptName, KeySkipBuild, KeyArgs,
		KeyMaxAttempts, KeyAppRoot, KeyGitHubToken, KeyMacCerts, KeyMacCertsPassword,
		KeyWindowsCerts, KeyWindowsCertsPassword, KeyLogLevel,
	} {
		name := FlagName(key)
		flags.String(name, "", usage[key])

		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}

// LoadInputs reads and validates the options from v.
// Missing required options are reported in declaration order.
func LoadInputs(v *viper.Viper) (*Inputs, error) {
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%q %w", key, ErrMissingInput)
		}
	}

	maxAttempts := DefaultMaxAttempts

	if raw := strings.TrimSpace(v.GetString(KeyMaxAttempts)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q %w: %w", KeyMaxAttempts, ErrInvalidInput, err)
		}

		maxAttempts = max(parsed, 1)
	}

	in := &Inputs{
		Release:              isTrue(v.GetString(KeyRelease)),
		PackageRoot:          v.GetString(KeyPackageRoot),
		BuildScriptName:      v.GetString(KeyBuildScriptName),
		SkipBuild:            isTrue(v.GetString(KeySkipBuild)),
		Args:                 v.GetString(KeyArgs),
		MaxAttempts:          maxAttempts,
		AppRoot:              v.GetString(KeyAppRoot),
		GitHubToken:          v.GetString(KeyGitHubToken),
		MacCerts:             v.GetString(KeyMacCerts),
		MacCertsPassword:     v.GetString(KeyMacCertsPassword),
		WindowsCerts:         v.GetString(KeyWindowsCerts),
		WindowsCertsPassword: v.GetString(KeyWindowsCertsPassword),
		LogLevel:             v.GetString(KeyLogLevel),
	}

	if in.AppRoot == "" {
		in.AppRoot = in.PackageRoot
	}

	return in, nil
}

// isTrue matches the action's boolean convention: only the literal "true" enables a flag.
func isTrue(s string) bool {
	return strings.TrimSpace(s) == "true"
}
