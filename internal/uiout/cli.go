package uiout

import (
	"io"
	"strconv"
)

// CLI renders fields for a human reader. Field names are dropped and
// values are written as-is; tuples and lists add no punctuation.
type CLI struct {
	out stickyWriter
}

// NewCLI creates a CLI sink writing to w.
func NewCLI(w io.Writer) *CLI {
	return &CLI{out: stickyWriter{w: w}}
}

// Field writes value. The name is dropped.
func (c *CLI) Field(_, value string) { c.out.WriteString(value) }

// FieldInt writes value in decimal.
func (c *CLI) FieldInt(_ string, value int) { c.out.WriteString(strconv.Itoa(value)) }

// BeginTuple does nothing; CLI output has no tuple syntax.
func (c *CLI) BeginTuple(string) {}

// EndTuple does nothing.
func (c *CLI) EndTuple() {}

// BeginList does nothing.
func (c *CLI) BeginList(string) {}

// EndList does nothing.
func (c *CLI) EndList() {}

// Text writes s unchanged.
func (c *CLI) Text(s string) { c.out.WriteString(s) }

// Flush returns the first write error since the last Flush.
func (c *CLI) Flush() error {
	if f, ok := c.out.w.(interface{ Flush() error }); ok && c.out.err == nil {
		c.out.err = f.Flush()
	}
	return c.out.takeErr()
}

// SetWriter redirects later output to w.
func (c *CLI) SetWriter(w io.Writer) { c.out.w = w }

// Writer returns the current destination.
func (c *CLI) Writer() io.Writer { return c.out.w }
