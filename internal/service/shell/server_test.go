package shell

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/electron-release/internal/platform"
)

// newTestServer serves a content directory through a Server.
func newTestServer(t *testing.T, b *Bridge) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.html"), []byte("<h1>shell</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	srv := NewServer(context.Background(), b, dir, "main.html")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.CloseWindows()
		ts.Close()
	})

	return ts
}

// get fetches a URL and returns its body.
func get(t *testing.T, url string) string {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

// TestServer_Content serves the index page at the root and other files by name.
func TestServer_Content(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, NewBridge("1.0.0", platform.Linux, nil, func() {}))

	require.Equal(t, "<h1>shell</h1>", get(t, ts.URL+"/"))
	require.Equal(t, "console.log(1)", get(t, ts.URL+"/app.js"))
}

// TestServer_IPC exchanges messages with a window over a WebSocket.
func TestServer_IPC(t *testing.T) {
	t.Parallel()

	checker := new(fakeChecker)
	q := new(quitCounter)
	b := NewBridge("2.0.0", platform.Linux, checker, q.quit)
	ts := newTestServer(t, b)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + IPCPath

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	_ = resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Window creation triggers the scripted update flow.
	var got []string

	for range 3 {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))

		got = append(got, msg.Channel)
	}

	require.Equal(t, []string{ChannelUpdateAvailable, ChannelDownloadProgress, ChannelUpdateDownloaded}, got)

	require.NoError(t, conn.WriteJSON(Message{Channel: ChannelAppVersion}))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, ChannelAppVersion, reply.Channel)
	require.JSONEq(t, `{"version":"2.0.0"}`, string(reply.Payload))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	require.Eventually(t, func() bool {
		return q.count() == 1 && b.Windows() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
