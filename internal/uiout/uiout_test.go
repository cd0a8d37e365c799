package uiout

import (
	"bytes"
	"errors"
	"testing"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a\\b", `"a\\b"`},
		{"line\n", `"line\n"`},
		{"tab\t", `"tab\t"`},
		{"\x01", `"\001"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMI_EmitNested(t *testing.T) {
	var buf bytes.Buffer
	m := NewMI(&buf, 3)

	m.Field("reason", "breakpoint-hit")
	m.FieldInt("bkptno", 1)
	m.BeginTuple("frame")
	m.Field("func", "main")
	m.BeginList("args")
	m.EndList()
	m.EndTuple()
	m.Field("thread-id", "1")
	m.Emit("*stopped")

	want := `*stopped,reason="breakpoint-hit",bkptno="1",frame={func="main",args=[]},thread-id="1"` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	if m.Pending() != "" {
		t.Errorf("pending not reset: %q", m.Pending())
	}
}

func TestMI_EmitEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewMI(&buf, 2)
	m.Emit("^done")
	if got := buf.String(); got != "^done\n" {
		t.Errorf("got %q", got)
	}
}

func TestMI_TextIsConsoleStream(t *testing.T) {
	var buf bytes.Buffer
	m := NewMI(&buf, 4)
	m.Text("hello\n")
	m.Stream('&', "warn")
	want := "~\"hello\\n\"\n&\"warn\"\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCLI_FieldsAsText(t *testing.T) {
	var buf bytes.Buffer
	c := NewCLI(&buf)
	c.Text("Thread ")
	c.Field("id", "1.2")
	c.BeginTuple("frame")
	c.Text(" at ")
	c.FieldInt("line", 42)
	c.EndTuple()
	if got := buf.String(); got != "Thread 1.2 at 42" {
		t.Errorf("got %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestCLI_FlushReportsStickyError(t *testing.T) {
	c := NewCLI(failingWriter{})
	c.Text("a")
	c.Text("b")
	if err := c.Flush(); err == nil {
		t.Fatal("expected write error")
	}
	if err := c.Flush(); err != nil {
		t.Errorf("error should be cleared after Flush, got %v", err)
	}
}

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closeBuffer) Close() error {
	c.closed = true
	return nil
}

func TestStreams_Redirect(t *testing.T) {
	tests := []struct {
		name          string
		redirect      bool
		debugRedirect bool
		wantTermOut   string
		wantTermErr   string
		wantLog       string
	}{
		{"tee both", false, false, "outdbg", "", "outdbg"},
		{"redirect output", true, false, "dbg", "", "outdbg"},
		{"redirect debug", false, true, "out", "", "outdbg"},
		{"redirect all", true, true, "", "", "outdbg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var term bytes.Buffer
			var errw bytes.Buffer
			log := &closeBuffer{}
			s := NewStreams(&term, &errw)
			s.Log = &term
			s.termLog = &term

			if err := s.Redirect(log, tt.redirect, tt.debugRedirect); err != nil {
				t.Fatalf("Redirect: %v", err)
			}
			s.Out.Write([]byte("out"))
			s.Log.Write([]byte("dbg"))

			if term.String() != tt.wantTermOut {
				t.Errorf("terminal = %q, want %q", term.String(), tt.wantTermOut)
			}
			if errw.String() != tt.wantTermErr {
				t.Errorf("stderr = %q, want %q", errw.String(), tt.wantTermErr)
			}
			if log.String() != tt.wantLog {
				t.Errorf("log = %q, want %q", log.String(), tt.wantLog)
			}
			if !s.Logging() {
				t.Error("Logging() = false while redirected")
			}

			if err := s.Redirect(nil, false, false); err != nil {
				t.Fatalf("end logging: %v", err)
			}
			if !log.closed {
				t.Error("log file not closed when logging ended")
			}
			if s.Out != &term || s.Logging() {
				t.Error("terminal writers not restored")
			}
		})
	}
}
