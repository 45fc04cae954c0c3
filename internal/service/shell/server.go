package shell

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oshokin/electron-release/internal/logger"
)

const (
	// IPCPath is the WebSocket endpoint a window connects to.
	IPCPath = "/ipc"

	// writeTimeout bounds a single IPC write.
	writeTimeout = 5 * time.Second
)

// Server serves window content and IPC connections.
type Server struct {
	//nolint:containedctx // Lifetime of the app, shared by every window.
	ctx        context.Context
	bridge     *Bridge
	contentDir string
	indexFile  string
	upgrader   websocket.Upgrader
	nextID     atomic.Uint64

	// mu guards open.
	mu   sync.Mutex
	open map[*wsWindow]struct{}
}

// NewServer creates a Server. ctx bounds the lifetime of update checks
// started by window connections.
func NewServer(ctx context.Context, bridge *Bridge, contentDir, indexFile string) *Server {
	return &Server{
		ctx:        ctx,
		bridge:     bridge,
		contentDir: contentDir,
		indexFile:  indexFile,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		open: make(map[*wsWindow]struct{}),
	}
}

// CloseWindows closes every open IPC connection.
func (s *Server) CloseWindows() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for win := range s.open {
		_ = win.close()
	}
}

// Handler returns the HTTP handler of the shell.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(IPCPath, s.serveIPC)
	mux.Handle("/", s.contentHandler())

	return mux
}

// contentHandler serves files from the content directory and the index page at "/".
func (s *Server) contentHandler() http.Handler {
	files := http.FileServer(http.Dir(s.contentDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(s.contentDir, filepath.Clean("/"+s.indexFile)))
			return
		}

		files.ServeHTTP(w, r)
	})
}

// serveIPC upgrades the request and pumps messages until the window goes away.
func (s *Server) serveIPC(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnKV(s.ctx, "IPC upgrade failed", "error", err)
		return
	}

	win := &wsWindow{
		id:   "window-" + strconv.FormatUint(s.nextID.Add(1), 10),
		conn: conn,
	}

	ctx := logger.WithKV(s.ctx, "window", win.id)

	s.mu.Lock()
	s.open[win] = struct{}{}
	s.mu.Unlock()

	s.bridge.Open(s.ctx, win)

	defer func() {
		s.mu.Lock()
		delete(s.open, win)
		s.mu.Unlock()

		s.bridge.Close(ctx, win)
		_ = conn.Close()
	}()

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.DebugKV(ctx, "IPC read ended", "error", err)
			}

			return
		}

		if err = s.bridge.Handle(ctx, win, msg); err != nil {
			logger.WarnKV(ctx, "IPC request failed", "channel", msg.Channel, "error", err)
		}
	}
}

// wsWindow is a Window backed by a WebSocket connection.
type wsWindow struct {
	id   string
	conn *websocket.Conn
	// mu serializes writes; gorilla/websocket allows one concurrent writer.
	mu sync.Mutex
}

// ID implements Window.
func (w *wsWindow) ID() string {
	return w.id
}

// Send implements Window.
func (w *wsWindow) Send(_ context.Context, msg Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return w.conn.WriteJSON(msg)
}

// close sends a close frame and closes the connection.
func (w *wsWindow) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline)

	return w.conn.Close()
}
