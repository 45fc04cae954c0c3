package updater

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-ps"

	domain "github.com/oshokin/electron-release/internal/domain/release"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// FeedFilename is the release descriptor fetched from the feed URL.
	FeedFilename = "latest.yaml"

	// DefaultFileMode is applied to installed executables.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to verify downloaded artifacts.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// downloadDirName is the directory under os.TempDir holding downloads.
	downloadDirName = "app-shell-update"
)

var errHashUnavailable = errors.New("hash function unavailable")

// Events receives the notifications produced by a check.
type Events interface {
	// UpdateAvailable is called once a newer release is found.
	UpdateAvailable(ctx context.Context, rel *domain.Release)
	// DownloadProgress is called with the downloaded share in percent.
	DownloadProgress(ctx context.Context, percent float64)
	// UpdateDownloaded is called once the artifact is verified and recorded.
	UpdateDownloaded(ctx context.Context, rel *domain.Release)
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = io.Copy(hasher, f); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// progressReader reports the share of total read so far.
// Reports are emitted when the whole percent changes, and once more at EOF.
type progressReader struct {
	ctx     context.Context //nolint:containedctx // Forwarded to Events callbacks only.
	reader  io.Reader
	events  Events
	total   int64
	read    int64
	lastPct int
}

// Read implements io.Reader.
func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	p.read += int64(n)

	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct != p.lastPct && pct < 100 {
			p.lastPct = pct
			p.events.DownloadProgress(p.ctx, float64(p.read)*100/float64(p.total))
		}
	}

	if errors.Is(err, io.EOF) && p.lastPct != 100 {
		p.lastPct = 100
		p.events.DownloadProgress(p.ctx, 100)
	}

	return n, err
}

// linuxCommLength is the longest process name reported by /proc/<pid>/stat.
const linuxCommLength = 15

// processNameMatches reports whether a process listed with executable runs
// the binary named want. Linux cuts listed names to linuxCommLength bytes.
func processNameMatches(goos, executable, want string) bool {
	if goos == "linux" && len(want) > linuxCommLength {
		want = want[:linuxCommLength]
	}

	return executable == want
}

// terminateProcessByName kills processes with the provided executable name,
// except the current one.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID || !processNameMatches(runtime.GOOS, process.Executable(), processName) {
			continue
		}

		runningProcess, findErr := os.FindProcess(process.Pid())
		if findErr != nil {
			return findErr
		}

		if killErr := runningProcess.Kill(); killErr != nil {
			return killErr
		}
	}

	return nil
}
