package remote

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dbgfront/internal/frontend/console"
	"github.com/dshills/dbgfront/internal/frontend/mi"
	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/uiout"
)

var engine = interp.EngineFunc(func(_ *interp.UI, out uiout.Out, cmd string) error {
	switch {
	case strings.HasPrefix(cmd, "echo "):
		out.Text(strings.TrimPrefix(cmd, "echo "))
		return nil
	case cmd == "quit":
		return interp.ErrQuit
	}
	return errors.New("undefined command")
})

type fixture struct {
	dir *interp.Directory
	srv *Server
	url string
}

// newIdleFixture starts a server whose queued work only runs when the
// test calls Process.
func newIdleFixture(t *testing.T, interpreter string) *fixture {
	t.Helper()
	reg := interp.NewRegistry()
	console.Register(reg)
	mi.Register(reg)
	fx := &fixture{dir: interp.NewDirectory(reg)}
	fx.srv = NewServer(fx.dir, Options{Interpreter: interpreter, Engine: engine})

	hs := httptest.NewServer(fx.srv.Handler())
	fx.url = "ws" + strings.TrimPrefix(hs.URL, "http") + "/ui"
	t.Cleanup(func() {
		fx.srv.Close()
		hs.Close()
	})
	return fx
}

// newFixture starts a server and a goroutine that plays the command loop.
func newFixture(t *testing.T, interpreter string) *fixture {
	t.Helper()
	fx := newIdleFixture(t, interpreter)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-fx.srv.Ready():
				fx.srv.Process()
			}
		}
	}()
	t.Cleanup(func() { close(stop) })
	return fx
}

func (fx *fixture) queued() int {
	fx.srv.mu.Lock()
	defer fx.srv.mu.Unlock()
	return fx.srv.tasks.Length()
}

// do runs fn on the loop goroutine and waits for it.
func (fx *fixture) do(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, fx.srv.post(func() {
		fn()
		close(done)
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not run the task")
	}
}

func (fx *fixture) uiCount(t *testing.T) int {
	var n int
	fx.do(t, func() { n = len(fx.dir.UIs()) })
	return n
}

// countUIs is uiCount for use off the test goroutine and after Close.
// It returns -1 if the loop does not answer.
func (fx *fixture) countUIs() int {
	ch := make(chan int, 1)
	fx.srv.cleanup(func() { ch <- len(fx.dir.UIs()) })
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		return -1
	}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readUntil reads messages until their concatenation contains want.
func readUntil(t *testing.T, ws *websocket.Conn, want string) string {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got strings.Builder
	for !strings.Contains(got.String(), want) {
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err, "read so far: %q", got.String())
		got.Write(msg)
	}
	return got.String()
}

func TestConnectionGetsItsOwnUI(t *testing.T) {
	fx := newFixture(t, interp.MI3)
	a := dial(t, fx.url)
	require.Contains(t, readUntil(t, a, "(gdb) \n"), `=version,mi="3"`)
	b := dial(t, fx.url)
	readUntil(t, b, "(gdb) \n")
	require.Equal(t, 2, fx.uiCount(t))

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("7echo hi")))
	require.Equal(t, "~\"hi\"\n7^done\n(gdb) \n", readUntil(t, a, "(gdb) \n"))
}

func TestNotificationsReachEveryConnection(t *testing.T) {
	fx := newFixture(t, interp.MI)
	a := dial(t, fx.url)
	readUntil(t, a, "(gdb) \n")
	b := dial(t, fx.url)
	readUntil(t, b, "(gdb) \n")

	fx.do(t, func() { fx.dir.NotifyExited(0) })
	require.Contains(t, readUntil(t, a, "exited-normally"), `*stopped,reason="exited-normally"`)
	require.Contains(t, readUntil(t, b, "exited-normally"), `*stopped,reason="exited-normally"`)
}

func TestDisconnectRemovesUI(t *testing.T) {
	fx := newFixture(t, interp.MI)
	ws := dial(t, fx.url)
	readUntil(t, ws, "(gdb) \n")
	require.Equal(t, 1, fx.uiCount(t))

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return fx.countUIs() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestQuitClosesConnection(t *testing.T) {
	fx := newFixture(t, interp.MI)
	ws := dial(t, fx.url)
	readUntil(t, ws, "(gdb) \n")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("-gdb-exit")))
	require.Contains(t, readUntil(t, ws, "^exit"), "^exit\n")
	_, _, err := ws.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "err = %v", err)
}

func TestUnknownInterpreterRefused(t *testing.T) {
	fx := newFixture(t, "nope")
	ws := dial(t, fx.url)
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "err = %v", err)
	require.Equal(t, 0, fx.uiCount(t))
}

func TestHealthz(t *testing.T) {
	fx := newFixture(t, interp.MI)
	resp, err := http.Get("http" + strings.TrimSuffix(strings.TrimPrefix(fx.url, "ws"), "/ui") + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClosedServerRefusesWork(t *testing.T) {
	fx := newFixture(t, interp.MI)
	fx.srv.Close()
	require.False(t, fx.srv.post(func() {}))

	ws := dial(t, fx.url)
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err = %v", err)
}

func TestCloseBeforeAttachLeavesNoUI(t *testing.T) {
	fx := newIdleFixture(t, interp.MI)
	ws := dial(t, fx.url)
	require.Eventually(t, func() bool { return fx.queued() == 1 }, 2*time.Second, 10*time.Millisecond)

	fx.srv.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err = %v", err)

	// the attach runs after the connection gave up on it
	fx.srv.Process()
	require.Empty(t, fx.dir.UIs())
}

func TestCloseKeepsDetachingConnectedUIs(t *testing.T) {
	fx := newFixture(t, interp.MI)
	ws := dial(t, fx.url)
	readUntil(t, ws, "(gdb) \n")
	require.Equal(t, 1, fx.uiCount(t))

	fx.srv.Close()
	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return fx.countUIs() == 0 }, 2*time.Second, 10*time.Millisecond)
}
