package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sync"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/electron-release/internal/domain/release"
	"github.com/oshokin/electron-release/internal/logger"
	"github.com/oshokin/electron-release/internal/repository/pending"
)

var (
	errFeedNotConfigured = errors.New("feed URL is not configured")
	errBadHTTPStatus     = errors.New("unexpected http status")
	errChecksumMismatch  = errors.New("checksum mismatch")
	errNoArtifact        = errors.New("release has no artifact")
	errNoPendingUpdate   = errors.New("no downloaded update to install")

	// ErrCheckInProgress is returned when a check is requested while another runs.
	ErrCheckInProgress = errors.New("update check already in progress")
)

// Options configures an Updater.
type Options struct {
	// FeedURL is the base URL serving FeedFilename and the artifacts.
	FeedURL string
	// CurrentVersion is the running build version.
	CurrentVersion string
	// ExecutablePath is the file replaced on install. Defaults to os.Executable.
	ExecutablePath string
	// DownloadDir receives downloaded artifacts. Defaults to a directory under os.TempDir.
	DownloadDir string
	// Timeout bounds each feed request.
	Timeout time.Duration
	// HTTPClient defaults to a client with Timeout.
	HTTPClient *http.Client
	// Repository records the verified download.
	Repository pending.Repository
	// Restart starts the installed executable. Defaults to launching it detached.
	Restart func(ctx context.Context, executable string) error
}

// Updater checks for, downloads and installs new releases.
type Updater struct {
	feedURL        *url.URL
	currentVersion string
	executablePath string
	downloadDir    string
	client         *http.Client
	repo           pending.Repository
	restart        func(ctx context.Context, executable string) error

	// mu guards checking.
	mu       sync.Mutex
	checking bool
}

// New validates opts and returns an Updater.
func New(opts *Options) (*Updater, error) {
	if opts == nil || opts.FeedURL == "" {
		return nil, errFeedNotConfigured
	}

	feedURL, err := url.Parse(opts.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed URL: %w", err)
	}

	executablePath := opts.ExecutablePath
	if executablePath == "" {
		if executablePath, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
	}

	downloadDir := opts.DownloadDir
	if downloadDir == "" {
		downloadDir = filepath.Join(os.TempDir(), downloadDirName)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	restart := opts.Restart
	if restart == nil {
		restart = startDetached
	}

	return &Updater{
		feedURL:        feedURL,
		currentVersion: opts.CurrentVersion,
		executablePath: executablePath,
		downloadDir:    downloadDir,
		client:         client,
		repo:           opts.Repository,
		restart:        restart,
	}, nil
}

// CheckForUpdates fetches the feed and, when it lists a newer release,
// downloads and verifies it, reporting each stage to events.
func (u *Updater) CheckForUpdates(ctx context.Context, events Events) error {
	ctx = logger.WithName(ctx, "updater")

	u.mu.Lock()
	if u.checking {
		u.mu.Unlock()
		return ErrCheckInProgress
	}

	u.checking = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.checking = false
		u.mu.Unlock()
	}()

	logger.InfoKV(ctx, "Checking for updates", "feed", u.feedURL.String(), "current", u.currentVersion)

	rel, err := u.fetchRelease(ctx)
	if err != nil {
		return fmt.Errorf("fetch release feed: %w", err)
	}

	if !rel.NewerThan(u.currentVersion) {
		logger.InfoKV(ctx, "No update available", "latest", rel.Version)
		return nil
	}

	logger.InfoKV(ctx, "Update available", "version", rel.Version)
	events.UpdateAvailable(ctx, rel.Clone())

	if u.alreadyDownloaded(ctx, rel) {
		logger.Info(ctx, "Update was downloaded earlier, skipping download")
		events.UpdateDownloaded(ctx, rel.Clone())

		return nil
	}

	downloaded, err := u.download(ctx, rel, events)
	if err != nil {
		return fmt.Errorf("download update: %w", err)
	}

	if u.repo != nil {
		record := &domain.Pending{
			Release:      rel.Clone(),
			Path:         downloaded,
			DownloadedAt: time.Now(),
		}

		if err = u.repo.Save(ctx, record); err != nil {
			return fmt.Errorf("record pending update: %w", err)
		}
	}

	logger.InfoKV(ctx, "Update downloaded", "version", rel.Version, "path", downloaded)
	events.UpdateDownloaded(ctx, rel.Clone())

	return nil
}

// QuitAndInstall installs the downloaded release over the executable and starts it.
// The caller is expected to shut down once it returns nil.
func (u *Updater) QuitAndInstall(ctx context.Context) error {
	ctx = logger.WithName(ctx, "updater")

	if u.repo == nil {
		return errNoPendingUpdate
	}

	record, err := u.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return errNoPendingUpdate
		}

		return err
	}

	checksum, err := record.Release.ChecksumBytes()
	if err != nil {
		return err
	}

	logger.Info(ctx, "Terminating other instances before installing")

	if err = terminateProcessByName(filepath.Base(u.executablePath)); err != nil {
		return fmt.Errorf("terminate running instances: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(record.Path))
	if err != nil {
		return fmt.Errorf("read downloaded update: %w", err)
	}

	logger.InfoKV(ctx, "Applying update", "version", record.Release.Version, "target", u.executablePath)

	options := goupdate.Options{
		TargetPath: u.executablePath,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	u.cleanup(ctx, record)

	logger.InfoKV(ctx, "Restarting", "executable", u.executablePath)

	return u.restart(ctx, u.executablePath)
}

// fetchRelease downloads and decodes the feed descriptor.
func (u *Updater) fetchRelease(ctx context.Context) (*domain.Release, error) {
	response, err := u.get(ctx, FeedFilename)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var rel domain.Release
	if err = yaml.Unmarshal(data, &rel); err != nil {
		return nil, fmt.Errorf("decode %s: %w", FeedFilename, err)
	}

	if rel.Artifact == "" {
		return nil, errNoArtifact
	}

	return &rel, nil
}

// download stores the artifact in the download directory and verifies it.
func (u *Updater) download(ctx context.Context, rel *domain.Release, events Events) (string, error) {
	want, err := rel.ChecksumBytes()
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(u.downloadDir, 0o700); err != nil {
		return "", err
	}

	response, err := u.get(ctx, rel.Artifact)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	target := filepath.Join(u.downloadDir, filepath.Base(rel.Artifact)+"-"+rel.Version)

	out, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return "", err
	}

	hasher := DefaultChecksumFunction.New()
	body := &progressReader{
		ctx:     ctx,
		reader:  response.Body,
		events:  events,
		total:   response.ContentLength,
		lastPct: -1,
	}

	_, err = io.Copy(io.MultiWriter(out, hasher), body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(target)
		return "", err
	}

	if !bytes.Equal(hasher.Sum(nil), want) {
		_ = os.Remove(target)
		return "", fmt.Errorf("%s: %w", rel.Artifact, errChecksumMismatch)
	}

	return target, nil
}

// alreadyDownloaded reports whether the pending record holds a verified copy of rel.
func (u *Updater) alreadyDownloaded(ctx context.Context, rel *domain.Release) bool {
	if u.repo == nil {
		return false
	}

	record, err := u.repo.Load(ctx)
	if err != nil || record.Release.Version != rel.Version || record.Release.Checksum != rel.Checksum {
		return false
	}

	want, err := rel.ChecksumBytes()
	if err != nil {
		return false
	}

	got, err := GetFileChecksum(record.Path)
	if err != nil {
		return false
	}

	return bytes.Equal(want, got)
}

// get fetches a file relative to the feed URL.
func (u *Updater) get(ctx context.Context, fileName string) (*http.Response, error) {
	fileURL := *u.feedURL
	// Use path.Join to normalize duplicate slashes when composing the URL path.
	fileURL.Path = path.Join(fileURL.Path, fileName)
	finalURL := fileURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return response, nil
}

// cleanup forgets the installed record and removes leftovers.
func (u *Updater) cleanup(ctx context.Context, record *domain.Pending) {
	if err := u.repo.Clear(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to clear pending update", "error", err)
	}

	_ = os.Remove(record.Path)

	oldFileName := filepath.Join(filepath.Dir(u.executablePath), "."+filepath.Base(u.executablePath)+".old")
	if _, err := os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}
}

// startDetached launches executable without tying it to ctx, so it outlives the shell.
func startDetached(_ context.Context, executable string) error {
	//nolint:gosec,noctx // The path is our own executable; the child must survive shutdown.
	return exec.Command(executable).Start()
}
