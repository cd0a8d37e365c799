// Package uiout provides the structured output sinks interpreters use to
// report command results, and the stream set they redirect when session
// logging starts or stops.
//
// An Out receives a result as a sequence of named fields, optionally grouped
// into tuples and lists. How that sequence is rendered depends on the sink:
// CLI prints field values as plain text for a human, MI renders the
// name="value" syntax of the machine interface.
package uiout

import "io"

// Out is a structured output sink.
type Out interface {
	// Field emits a named string field.
	Field(name, value string)

	// FieldInt emits a named integer field.
	FieldInt(name string, value int)

	// BeginTuple opens a named group of fields.
	BeginTuple(name string)

	// EndTuple closes the innermost tuple.
	EndTuple()

	// BeginList opens a named list.
	BeginList(name string)

	// EndList closes the innermost list.
	EndList()

	// Text emits free-form text meant for a human reader.
	Text(s string)

	// Flush writes any buffered output and returns the first write error
	// seen since the previous Flush.
	Flush() error

	// SetWriter changes the destination of subsequent output.
	SetWriter(w io.Writer)

	// Writer returns the current destination.
	Writer() io.Writer
}

// stickyWriter remembers the first write error.
type stickyWriter struct {
	w   io.Writer
	err error
}

// WriteString writes str unless an earlier write failed.
func (s *stickyWriter) WriteString(str string) {
	if s.err != nil || s.w == nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (s *stickyWriter) takeErr() error {
	err := s.err
	s.err = nil
	return err
}
