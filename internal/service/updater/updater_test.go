package updater

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/electron-release/internal/domain/release"
	"github.com/oshokin/electron-release/internal/repository/pending"
)

// recorder is an Events implementation collecting notifications.
type recorder struct {
	mu         sync.Mutex
	available  []string
	progress   []float64
	downloaded []string
}

func (r *recorder) UpdateAvailable(_ context.Context, rel *domain.Release) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.available = append(r.available, rel.Version)
}

func (r *recorder) DownloadProgress(_ context.Context, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = append(r.progress, percent)
}

func (r *recorder) UpdateDownloaded(_ context.Context, rel *domain.Release) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.downloaded = append(r.downloaded, rel.Version)
}

// feed serves a release descriptor and its artifact.
func feed(t *testing.T, rel *domain.Release, artifact []byte) *httptest.Server {
	t.Helper()

	descriptor, err := yaml.Marshal(rel)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/releases/"+FeedFilename, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(descriptor)
	})
	mux.HandleFunc("/releases/"+rel.Artifact, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(artifact)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

// checksumOf returns the base64 SHA-512 of data.
func checksumOf(data []byte) string {
	sum := sha512.Sum512(data)

	return base64.StdEncoding.EncodeToString(sum[:])
}

// newTestUpdater builds an Updater rooted in a temporary directory.
func newTestUpdater(t *testing.T, feedURL, current string) (*Updater, *pending.FileRepository, string) {
	t.Helper()

	dir := t.TempDir()
	executable := filepath.Join(dir, "app-shell-under-test")
	require.NoError(t, os.WriteFile(executable, []byte("old build"), 0o755))

	repo := pending.NewFileRepository(filepath.Join(dir, "pending.json"))

	u, err := New(&Options{
		FeedURL:        feedURL,
		CurrentVersion: current,
		ExecutablePath: executable,
		DownloadDir:    filepath.Join(dir, "downloads"),
		Repository:     repo,
		Restart: func(context.Context, string) error {
			return nil
		},
	})
	require.NoError(t, err)

	return u, repo, executable
}

// TestCheckForUpdates_DownloadsNewerRelease walks the full happy path.
func TestCheckForUpdates_DownloadsNewerRelease(t *testing.T) {
	t.Parallel()

	artifact := []byte("new build contents")
	rel := &domain.Release{Version: "1.1.0", Artifact: "app-shell", Checksum: checksumOf(artifact)}
	ts := feed(t, rel, artifact)

	u, repo, _ := newTestUpdater(t, ts.URL+"/releases/", "1.0.0")
	events := new(recorder)

	require.NoError(t, u.CheckForUpdates(context.Background(), events))
	require.Equal(t, []string{"1.1.0"}, events.available)
	require.Equal(t, []string{"1.1.0"}, events.downloaded)
	require.NotEmpty(t, events.progress)
	require.InDelta(t, 100.0, events.progress[len(events.progress)-1], 0.001)

	record, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.1.0", record.Release.Version)

	contents, err := os.ReadFile(record.Path)
	require.NoError(t, err)
	require.Equal(t, artifact, contents)

	// A second check reuses the verified download.
	events = new(recorder)
	require.NoError(t, u.CheckForUpdates(context.Background(), events))
	require.Equal(t, []string{"1.1.0"}, events.downloaded)
	require.Empty(t, events.progress)
}

// TestCheckForUpdates_UpToDate emits nothing when the feed is not newer.
func TestCheckForUpdates_UpToDate(t *testing.T) {
	t.Parallel()

	artifact := []byte("same build")
	rel := &domain.Release{Version: "1.0.0", Artifact: "app-shell", Checksum: checksumOf(artifact)}
	ts := feed(t, rel, artifact)

	u, repo, _ := newTestUpdater(t, ts.URL+"/releases", "1.0.0")
	events := new(recorder)

	require.NoError(t, u.CheckForUpdates(context.Background(), events))
	require.Empty(t, events.available)
	require.Empty(t, events.downloaded)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, pending.ErrNotFound)
}

// TestCheckForUpdates_ChecksumMismatch rejects a corrupted download.
func TestCheckForUpdates_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	rel := &domain.Release{Version: "2.0.0", Artifact: "app-shell", Checksum: checksumOf([]byte("expected"))}
	ts := feed(t, rel, []byte("tampered"))

	u, repo, _ := newTestUpdater(t, ts.URL+"/releases/", "1.0.0")
	events := new(recorder)

	err := u.CheckForUpdates(context.Background(), events)
	require.ErrorIs(t, err, errChecksumMismatch)
	require.Equal(t, []string{"2.0.0"}, events.available)
	require.Empty(t, events.downloaded)

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, pending.ErrNotFound)
}

// TestCheckForUpdates_BadStatus surfaces feed errors.
func TestCheckForUpdates_BadStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	u, _, _ := newTestUpdater(t, ts.URL, "1.0.0")

	err := u.CheckForUpdates(context.Background(), new(recorder))
	require.ErrorIs(t, err, errBadHTTPStatus)
}

// TestQuitAndInstall replaces the executable and restarts it.
func TestQuitAndInstall(t *testing.T) {
	t.Parallel()

	artifact := []byte("installed build")
	rel := &domain.Release{Version: "3.0.0", Artifact: "app-shell", Checksum: checksumOf(artifact)}
	ts := feed(t, rel, artifact)

	u, repo, executable := newTestUpdater(t, ts.URL+"/releases/", "2.9.9")

	var restarted string

	u.restart = func(_ context.Context, path string) error {
		restarted = path
		return nil
	}

	require.ErrorIs(t, u.QuitAndInstall(context.Background()), errNoPendingUpdate)
	require.NoError(t, u.CheckForUpdates(context.Background(), new(recorder)))
	require.NoError(t, u.QuitAndInstall(context.Background()))

	contents, err := os.ReadFile(executable)
	require.NoError(t, err)
	require.Equal(t, artifact, contents)
	require.Equal(t, executable, restarted)

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, pending.ErrNotFound)
}

// TestNew_RequiresFeed rejects empty options.
func TestNew_RequiresFeed(t *testing.T) {
	t.Parallel()

	_, err := New(&Options{})
	require.ErrorIs(t, err, errFeedNotConfigured)

	_, err = New(nil)
	require.ErrorIs(t, err, errFeedNotConfigured)
}

// TestGetFileChecksum hashes file contents with SHA-512.
func TestGetFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	got, err := GetFileChecksum(path)
	require.NoError(t, err)

	want := sha512.Sum512([]byte("abc"))
	require.Equal(t, want[:], got)
}
