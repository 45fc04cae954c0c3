package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the app shell options.
type Settings struct {
	// ListenAddress is the loopback address the window content is served on.
	ListenAddress string `yaml:"listen_addr"`
	// ContentDir is the directory with the window's local content.
	ContentDir string `yaml:"content_dir"`
	// IndexFile is the page loaded into a new window, relative to ContentDir.
	IndexFile string `yaml:"index_file"`
	// FeedURL is the release feed checked for updates. Empty disables update checks.
	FeedURL string `yaml:"feed_url"`
	// StateFile is where a downloaded, not yet installed update is recorded.
	StateFile string `yaml:"state_file"`
	// Timeout bounds feed requests.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultSettingsFilename is the default filename for app shell settings.
	DefaultSettingsFilename = "app-shell-settings.yaml"

	// DefaultListenAddress serves windows on an ephemeral loopback port.
	DefaultListenAddress = "127.0.0.1:0"

	// DefaultContentDir is the default content directory.
	DefaultContentDir = "."

	// DefaultIndexFile is the default page loaded into a window.
	DefaultIndexFile = "index.html"

	// DefaultStateFilename is the default pending update record.
	DefaultStateFilename = "app-shell-update.json"

	// DefaultTimeout is the default duration for feed requests.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errSettingsIsNotSet is returned when nil settings are provided.
	errSettingsIsNotSet = errors.New("settings are not set")
	// errListenAddressNotLoopback is returned for addresses reachable from other hosts.
	errListenAddressNotLoopback = errors.New("listen address must be a loopback address")
)

// LoadSettings reads settings from path and validates them.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		path = DefaultSettingsFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err = yaml.Unmarshal(contents, &s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = ValidateSettings(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// SaveSettings writes s to path.
func SaveSettings(path string, s *Settings) error {
	if s == nil {
		return errSettingsIsNotSet
	}

	if path == "" {
		path = DefaultSettingsFilename
	}

	if err := ValidateSettings(s); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ValidateSettings fills defaults and checks formats.
func ValidateSettings(s *Settings) error {
	if s == nil {
		return errSettingsIsNotSet
	}

	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}

	addr, err := net.ResolveTCPAddr("tcp", s.ListenAddress)
	if err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if addr.IP == nil || !addr.IP.IsLoopback() {
		return fmt.Errorf("%s: %w", s.ListenAddress, errListenAddressNotLoopback)
	}

	if s.ContentDir == "" {
		s.ContentDir = DefaultContentDir
	}

	if s.IndexFile == "" {
		s.IndexFile = DefaultIndexFile
	}

	if s.StateFile == "" {
		s.StateFile = DefaultStateFilename
	}

	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}

	if s.FeedURL == "" {
		return nil
	}

	if _, err = url.ParseRequestURI(s.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	return nil
}
