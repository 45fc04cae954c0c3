package pending

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/electron-release/internal/domain/release"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	p, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, p)
}

// TestFileRepository_SaveLoadClear ensures Save followed by Load returns equal data and Clear removes it.
func TestFileRepository_SaveLoadClear(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "pending.json")
	repo := NewFileRepository(file)
	ctx := context.Background()

	want := &domain.Pending{
		Release: &domain.Release{
			Version:  "1.4.0",
			Artifact: "app-shell",
			Checksum: "c3VtCg==",
		},
		Path:         "/tmp/app-shell-update/app-shell",
		DownloadedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want.Release, got.Release)
	require.Equal(t, want.Path, got.Path)
	require.True(t, want.DownloadedAt.Equal(got.DownloadedAt))

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))

	_, err = os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepository_Corrupt reports undecodable files.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
