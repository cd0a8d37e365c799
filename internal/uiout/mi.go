package uiout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MI renders machine-interface records. Fields accumulate into a pending
// result body until Emit writes it behind a record prefix such as "^done"
// or "*stopped". Text is written immediately as a console stream record.
type MI struct {
	out     stickyWriter
	body    strings.Builder
	levels  []miLevel
	version int
}

type miLevel struct {
	fields int
}

// NewMI creates an MI sink for the given protocol version writing to w.
func NewMI(w io.Writer, version int) *MI {
	m := &MI{out: stickyWriter{w: w}, version: version}
	m.levels = []miLevel{{}}
	return m
}

// Version returns the MI protocol version the sink renders.
func (m *MI) Version() int { return m.version }

func (m *MI) separator() {
	top := &m.levels[len(m.levels)-1]
	if top.fields > 0 {
		m.body.WriteByte(',')
	}
	top.fields++
}

func (m *MI) name(name string) {
	if name != "" {
		m.body.WriteString(name)
		m.body.WriteByte('=')
	}
}

// Field appends name="value" to the pending body. An empty name
// writes the bare value, as list elements do.
func (m *MI) Field(name, value string) {
	m.separator()
	m.name(name)
	m.body.WriteString(Quote(value))
}

// FieldInt appends value as a quoted decimal.
func (m *MI) FieldInt(name string, value int) {
	m.Field(name, strconv.Itoa(value))
}

// BeginTuple opens a {...} tuple.
func (m *MI) BeginTuple(name string) {
	m.separator()
	m.name(name)
	m.body.WriteByte('{')
	m.levels = append(m.levels, miLevel{})
}

// EndTuple closes the innermost tuple.
func (m *MI) EndTuple() {
	m.pop()
	m.body.WriteByte('}')
}

// BeginList opens a [...] list.
func (m *MI) BeginList(name string) {
	m.separator()
	m.name(name)
	m.body.WriteByte('[')
	m.levels = append(m.levels, miLevel{})
}

// EndList closes the innermost list.
func (m *MI) EndList() {
	m.pop()
	m.body.WriteByte(']')
}

func (m *MI) pop() {
	if len(m.levels) > 1 {
		m.levels = m.levels[:len(m.levels)-1]
	}
}

// Text writes s as a console stream record (~"...").
func (m *MI) Text(s string) {
	m.Stream('~', s)
}

// Stream writes s as a stream record with the given prefix:
// '~' console, '@' target, '&' log.
func (m *MI) Stream(prefix byte, s string) {
	if s == "" {
		return
	}
	m.out.WriteString(string(prefix) + Quote(s) + "\n")
}

// Emit writes the pending body behind prefix and resets the body.
func (m *MI) Emit(prefix string) {
	line := prefix
	if m.body.Len() > 0 {
		line += "," + m.body.String()
	}
	m.out.WriteString(line + "\n")
	m.Reset()
}

// Emitf writes a record without touching the pending body.
func (m *MI) Emitf(format string, args ...any) {
	m.out.WriteString(fmt.Sprintf(format, args...) + "\n")
}

// Pending returns the result body accumulated since the last Emit.
func (m *MI) Pending() string { return m.body.String() }

// Reset discards the pending body.
func (m *MI) Reset() {
	m.body.Reset()
	m.levels = m.levels[:1]
	m.levels[0] = miLevel{}
}

// Flush returns the first write error since the last Flush.
func (m *MI) Flush() error {
	if f, ok := m.out.w.(interface{ Flush() error }); ok && m.out.err == nil {
		m.out.err = f.Flush()
	}
	return m.out.takeErr()
}

// SetWriter redirects later records to w.
func (m *MI) SetWriter(w io.Writer) { m.out.w = w }

// Writer returns the current destination.
func (m *MI) Writer() io.Writer { return m.out.w }

// Quote returns s as a C string literal, the escaping MI uses for values.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
