package uiout

import "io"

// Streams is the set of writers an interpreter prints through: normal
// output, errors, and debug log output. Redirect points them at a session
// log file, either exclusively or teed with the terminal.
type Streams struct {
	Out io.Writer
	Err io.Writer
	Log io.Writer

	termOut io.Writer
	termErr io.Writer
	termLog io.Writer
	logfile io.Writer
}

// NewStreams creates a stream set on the terminal writers. Debug log
// output goes to errw.
func NewStreams(out, errw io.Writer) *Streams {
	return &Streams{
		Out:     out,
		Err:     errw,
		Log:     errw,
		termOut: out,
		termErr: errw,
		termLog: errw,
	}
}

// Redirect starts session logging to logfile. When loggingRedirect is set,
// normal and error output go only to the log; otherwise they are teed to
// the terminal and the log. debugRedirect does the same for debug output.
// A nil logfile ends logging and restores the terminal writers.
//
// The stream set takes ownership of logfile: it is closed when logging
// ends or a new log file replaces it, if it implements io.Closer.
func (s *Streams) Redirect(logfile io.Writer, loggingRedirect, debugRedirect bool) error {
	err := s.closeLog()
	if logfile == nil {
		s.Out, s.Err, s.Log = s.termOut, s.termErr, s.termLog
		return err
	}
	s.logfile = logfile
	s.Out = pick(loggingRedirect, logfile, s.termOut)
	s.Err = pick(loggingRedirect, logfile, s.termErr)
	s.Log = pick(debugRedirect, logfile, s.termLog)
	return err
}

// Logging reports whether a log file is attached.
func (s *Streams) Logging() bool { return s.logfile != nil }

// Terminal returns the terminal output writer, ignoring any redirection.
func (s *Streams) Terminal() io.Writer { return s.termOut }

func (s *Streams) closeLog() error {
	lf := s.logfile
	s.logfile = nil
	if c, ok := lf.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func pick(redirect bool, logfile, term io.Writer) io.Writer {
	if redirect {
		return logfile
	}
	return io.MultiWriter(term, logfile)
}
