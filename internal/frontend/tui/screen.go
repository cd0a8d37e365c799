package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

var (
	headerStyle = tcell.StyleDefault.Reverse(true)
	paneStyle   = tcell.StyleDefault
	promptStyle = tcell.StyleDefault.Bold(true)
)

// headerStyleFor returns the header style for a #rrggbb background.
func headerStyleFor(hex string) (tcell.Style, error) {
	if hex == "" {
		return headerStyle, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.StyleDefault, fmt.Errorf("header color %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	bg := tcell.NewRGBColor(int32(r), int32(g), int32(b))
	fg := tcell.ColorWhite
	if l, _, _ := c.Lab(); l > 0.6 {
		fg = tcell.ColorBlack
	}
	return tcell.StyleDefault.Background(bg).Foreground(fg), nil
}

// draw repaints the whole screen. It does nothing while suspended.
// The command line always gets the last row; the header and the pane
// only appear when there is room for them.
func (t *Interpreter) draw() {
	s := t.screen
	if s == nil || t.suspended {
		return
	}
	s.Clear()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	if h > 1 {
		header := t.location
		if header == "" {
			header = "[No Source Available]"
		}
		fillRow(s, 0, w, t.header)
		putString(s, 0, 0, w, header, t.header)
	}

	rows := max(h-2, 0)
	lines := t.Lines()
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		putString(s, 0, 1+i, w, line, paneStyle)
	}

	x := putString(s, 0, h-1, w, Prompt, promptStyle)
	x = putString(s, x, h-1, w, string(t.input), paneStyle)
	s.ShowCursor(x, h-1)
	s.Show()
}

func fillRow(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

// putString writes str from column x one grapheme cluster per cell,
// clipped at w, and returns the column after the last cluster written.
// Wide clusters take two columns and are dropped if they would not fit.
func putString(s tcell.Screen, x, y, w int, str string, style tcell.Style) int {
	g := uniseg.NewGraphemes(str)
	for g.Next() {
		width := g.Width()
		if width == 0 {
			continue
		}
		if x+width > w {
			break
		}
		runes := g.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
	return x
}

// HandleEvent applies a terminal event to the command line. It returns
// the line and true when Enter completes a command.
func (t *Interpreter) HandleEvent(ev tcell.Event) (string, bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEnter:
			line := string(t.input)
			t.input = t.input[:0]
			t.draw()
			return line, true, nil
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if n := len(t.input); n > 0 {
				t.input = t.input[:n-1]
			}
		case tcell.KeyCtrlU:
			t.input = t.input[:0]
		case tcell.KeyCtrlC:
			return "", false, ErrInterrupt
		case tcell.KeyCtrlD:
			if len(t.input) == 0 {
				return "", false, ErrQuit
			}
		case tcell.KeyRune:
			t.input = append(t.input, ev.Rune())
		}
		t.draw()
	case *tcell.EventResize:
		t.screen.Sync()
		t.draw()
	case *tcell.EventInterrupt:
		return "", false, ErrWoken
	}
	return "", false, nil
}

// Wake makes a blocked ReadCommand return ErrWoken so the caller can
// deliver pending events. It may be called from any goroutine while the
// screen is open.
func (t *Interpreter) Wake() error {
	s := t.screen
	if s == nil {
		return ErrNotInitialized
	}
	return s.PostEvent(tcell.NewEventInterrupt(nil))
}

// ReadCommand waits for the user to enter a command line.
func (t *Interpreter) ReadCommand() (string, error) {
	if t.screen == nil {
		return "", ErrNotInitialized
	}
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return "", ErrQuit
		}
		line, done, err := t.HandleEvent(ev)
		if err != nil || done {
			return line, err
		}
	}
}
