// Package remote serves additional UIs over WebSocket connections.
//
// Each connection gets its own UI in the directory with its own
// top-level interpreter, usually MI. Text messages from the client are
// command lines; everything the UI prints is sent back as text messages,
// one record per message. Connected UIs receive every notification the
// terminal UI receives.
//
// The directory is not safe for concurrent use, so connection goroutines
// never touch it. They queue work that the command loop runs with
// Process when Ready fires.
package remote

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
)

// ErrClosed is returned to connections that arrive after Close.
var ErrClosed = errors.New("remote server closed")

// Options configures a Server.
type Options struct {
	// Interpreter is the top-level interpreter of each connection's UI.
	// Defaults to interp.MI.
	Interpreter string

	// Engine executes CLI commands for the connection UIs.
	Engine interp.Engine

	Logger *zap.Logger
}

// Server accepts UI connections for a directory.
type Server struct {
	dir      *interp.Directory
	opts     Options
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	tasks  *queue.Queue
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

// NewServer creates a server that adds UIs to dir.
func NewServer(dir *interp.Directory, opts Options) *Server {
	if opts.Interpreter == "" {
		opts.Interpreter = interp.MI
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		dir:    dir,
		opts:   opts,
		logger: opts.Logger.Named("remote"),
		tasks:  queue.New(),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Handler returns the server's routes. GET /ui upgrades to a UI
// connection and GET /healthz answers 204.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ui", s.serveUI)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Ready is signalled when work is queued for Process.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Process runs the queued work and returns how many tasks ran. Call it
// from the goroutine that owns the directory.
func (s *Server) Process() int {
	n := 0
	for {
		task, ok := s.next()
		if !ok {
			return n
		}
		task()
		n++
	}
}

// Close stops accepting work. Connections waiting to attach are refused.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

func (s *Server) post(task func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.tasks.Add(task)
	s.mu.Unlock()
	s.signal()
	return true
}

// cleanup queues task even after Close, so UIs that were attached are
// still removed by the next Process.
func (s *Server) cleanup(task func()) {
	s.mu.Lock()
	s.tasks.Add(task)
	s.mu.Unlock()
	s.signal()
}

func (s *Server) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Server) next() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks.Length() == 0 {
		return nil, false
	}
	return s.tasks.Remove().(func()), true
}

type attachResult struct {
	ui  *interp.UI
	err error
}

func (s *Server) serveUI(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	defer ws.Close()
	c := &conn{ws: ws, addr: r.RemoteAddr}

	// abandoned is guarded by s.mu. Once set, the attach task removes
	// the UI it created itself.
	attached := make(chan attachResult, 1)
	abandoned := false
	if !s.post(func() {
		ui, err := s.attach(c)
		s.mu.Lock()
		keep := !abandoned
		if keep {
			attached <- attachResult{ui, err}
		}
		s.mu.Unlock()
		if !keep && ui != nil {
			s.detach(c, ui)
		}
	}) {
		c.close(websocket.CloseGoingAway, ErrClosed.Error())
		return
	}
	var res attachResult
	select {
	case res = <-attached:
	case <-s.done:
		s.mu.Lock()
		select {
		case res = <-attached:
		default:
			abandoned = true
		}
		s.mu.Unlock()
		if res.ui != nil {
			s.cleanup(func() { s.detach(c, res.ui) })
		}
		c.close(websocket.CloseGoingAway, ErrClosed.Error())
		return
	}
	if res.err != nil {
		c.close(websocket.CloseInternalServerErr, res.err.Error())
		return
	}
	ui := res.ui
	defer s.cleanup(func() { s.detach(c, ui) })

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			s.logger.Debug("connection ended", zap.String("ui", ui.ID()), zap.Error(err))
			return
		}
		for _, line := range strings.Split(strings.TrimRight(string(msg), "\r\n"), "\n") {
			line = strings.TrimSuffix(line, "\r")
			if !s.post(func() { s.exec(c, ui, line) }) {
				return
			}
		}
	}
}

func (s *Server) attach(c *conn) (*interp.UI, error) {
	ui := s.dir.NewUI(
		interp.WithStreams(strings.NewReader(""), c, c),
		interp.WithEngine(s.opts.Engine),
	)
	if err := ui.SetTopLevel(s.opts.Interpreter); err != nil {
		if rerr := s.dir.RemoveUI(ui); rerr != nil {
			s.logger.Warn("remove ui", zap.Error(rerr))
		}
		return nil, err
	}
	ui.PreCommandLoop()
	s.logger.Info("ui attached",
		zap.String("ui", ui.ID()),
		zap.String("remote", c.addr),
		zap.String("interp", s.opts.Interpreter),
	)
	return ui, nil
}

func (s *Server) detach(c *conn, ui *interp.UI) {
	c.quit = true
	if err := s.dir.RemoveUI(ui); err != nil {
		s.logger.Warn("remove ui", zap.String("ui", ui.ID()), zap.Error(err))
	}
	s.logger.Info("ui detached", zap.String("ui", ui.ID()), zap.String("remote", c.addr))
}

func (s *Server) exec(c *conn, ui *interp.UI, line string) {
	if c.quit {
		return
	}
	err := ui.ExecCurrent(line)
	if errors.Is(err, interp.ErrQuit) {
		c.quit = true
		c.close(websocket.CloseNormalClosure, "quit")
		return
	}
	if err != nil {
		s.logger.Debug("command failed", zap.String("ui", ui.ID()), zap.String("command", line), zap.Error(err))
	}
	ui.DisplayPrompt()
}

// conn is a UI's output stream. Write is only called from the goroutine
// running Process.
type conn struct {
	ws   *websocket.Conn
	addr string

	// quit is set once the UI must not run more commands.
	quit bool
}

// Write sends p as one text message.
func (c *conn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// close sends a close frame. The reason is cut to fit a control frame.
func (c *conn) close(code int, reason string) {
	if len(reason) > 120 {
		reason = reason[:120]
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
