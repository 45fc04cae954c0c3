package release

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// errNoChecksum is returned when a release carries no checksum.
var errNoChecksum = errors.New("release has no checksum")

// Release is one entry of the update feed.
type Release struct {
	// Version is the semantic version of the build.
	Version string `yaml:"version" json:"version"`
	// Artifact is the file name of the executable, relative to the feed URL.
	Artifact string `yaml:"artifact" json:"artifact"`
	// Checksum is the base64-encoded SHA-512 of the artifact.
	Checksum string `yaml:"sha512" json:"sha512"`
	// Notes are free-form release notes.
	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
	// PublishedAt is when the build was published.
	PublishedAt time.Time `yaml:"published_at,omitempty" json:"published_at,omitzero"`
}

// ChecksumBytes decodes Checksum.
func (r *Release) ChecksumBytes() ([]byte, error) {
	if r.Checksum == "" {
		return nil, errNoChecksum
	}

	sum, err := base64.StdEncoding.DecodeString(r.Checksum)
	if err != nil {
		return nil, fmt.Errorf("decode checksum: %w", err)
	}

	return sum, nil
}

// NewerThan reports whether r should replace the running version current.
// Versions are compared as semver; if either side is not a valid semver the
// release is considered newer whenever the strings differ.
func (r *Release) NewerThan(current string) bool {
	remote, errRemote := semver.NewVersion(strings.TrimSpace(r.Version))
	local, errLocal := semver.NewVersion(strings.TrimSpace(current))

	if errRemote != nil || errLocal != nil {
		return strings.TrimSpace(r.Version) != strings.TrimSpace(current)
	}

	return remote.GreaterThan(local)
}

// Clone returns a copy of the release.
func (r *Release) Clone() *Release {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}

// Pending is a downloaded release waiting to be installed.
type Pending struct {
	// Release is the feed entry that was downloaded.
	Release *Release `json:"release"`
	// Path is where the verified artifact was stored.
	Path string `json:"path"`
	// DownloadedAt is when the download finished.
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Clone returns a deep copy of the pending update.
func (p *Pending) Clone() *Pending {
	if p == nil {
		return nil
	}

	return &Pending{
		Release:      p.Release.Clone(),
		Path:         p.Path,
		DownloadedAt: p.DownloadedAt,
	}
}
