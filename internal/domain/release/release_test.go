package release

import (
	"crypto/sha512"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNewerThan compares semver and falls back to string inequality.
func TestNewerThan(t *testing.T) {
	t.Parallel()

	cases := []struct {
		remote, local string
		want          bool
	}{
		{remote: "1.2.0", local: "1.1.9", want: true},
		{remote: "v1.2.0", local: "1.2.0", want: false},
		{remote: "1.2.0", local: "1.10.0", want: false},
		{remote: "2.0.0-beta.2", local: "2.0.0-beta.1", want: true},
		{remote: "nightly-2", local: "nightly-1", want: true},
		{remote: "nightly-1", local: "nightly-1", want: false},
	}

	for _, tc := range cases {
		r := &Release{Version: tc.remote}
		require.Equal(t, tc.want, r.NewerThan(tc.local), "%s vs %s", tc.remote, tc.local)
	}
}

// TestChecksumBytes decodes valid checksums and rejects missing ones.
func TestChecksumBytes(t *testing.T) {
	t.Parallel()

	sum := sha512.Sum512([]byte("artifact"))
	r := &Release{Checksum: base64.StdEncoding.EncodeToString(sum[:])}

	got, err := r.ChecksumBytes()
	require.NoError(t, err)
	require.Equal(t, sum[:], got)

	_, err = (&Release{}).ChecksumBytes()
	require.Error(t, err)

	_, err = (&Release{Checksum: "%%%"}).ChecksumBytes()
	require.Error(t, err)
}

// TestPendingClone verifies that Clone returns a deep copy and handles nil safely.
func TestPendingClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Pending)(nil).Clone())

	p := &Pending{
		Release:      &Release{Version: "1.0.0"},
		Path:         "/tmp/app",
		DownloadedAt: time.Unix(100, 0),
	}

	c := p.Clone()
	require.Equal(t, p, c)
	require.NotSame(t, p.Release, c.Release)

	c.Release.Version = "2.0.0"
	require.Equal(t, "1.0.0", p.Release.Version)
}
