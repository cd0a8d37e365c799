package command

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/interp"
	"github.com/dshills/dbgfront/internal/logging"
)

// session holds the "set logging" state of one UI.
type session struct {
	file          string
	redirect      bool
	debugRedirect bool
	enabled       bool
}

func (t *Table) session(id string) *session {
	s, ok := t.sessions[id]
	if !ok {
		s = &session{
			file:          t.opts.LogFile,
			redirect:      t.opts.Redirect,
			debugRedirect: t.opts.DebugRedirect,
		}
		t.sessions[id] = s
	}
	return s
}

// ForgetUI drops the logging state kept for ui.
func (t *Table) ForgetUI(ui *interp.UI) {
	delete(t.sessions, ui.ID())
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "yes", "enable":
		return true, nil
	case "off", "0", "no", "disable":
		return false, nil
	}
	return false, errors.New("\"on\" or \"off\" expected.")
}

// setLogging handles "set logging on|off|enabled|file|redirect|debugredirect".
func setLogging(c *Context) error {
	s := c.Table.session(c.UI.ID())
	opt, value := split(c.Args)
	switch opt {
	case "on":
		return startLogging(c, s)
	case "off":
		return stopLogging(c, s)
	case "enabled":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		if on {
			return startLogging(c, s)
		}
		return stopLogging(c, s)
	case "file":
		if value == "" {
			return errors.New("Argument required (filename to set it to.).")
		}
		s.file = value
		return nil
	case "redirect", "debugredirect":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		if opt == "redirect" {
			s.redirect = on
		} else {
			s.debugRedirect = on
		}
		if s.enabled {
			// reopen the log with the new flags
			if err := stopLogging(c, s); err != nil {
				return err
			}
			return startLogging(c, s)
		}
		return nil
	case "":
		return errors.New("\"set logging\" must be followed by a subcommand.")
	}
	return fmt.Errorf("Undefined set logging command: \"%s\".", opt)
}

func startLogging(c *Context, s *session) error {
	if s.enabled {
		if err := c.UI.SetLogging(nil, false, false); err != nil {
			c.Table.logger.Warn("end previous log", zap.Error(err))
		}
		s.enabled = false
	}
	w := logging.OpenLogFile(s.file, c.Table.opts.Rotate)
	if s.redirect {
		c.Printf("Redirecting output to %s.\n", s.file)
	} else {
		c.Printf("Copying output to %s.\n", s.file)
	}
	if s.debugRedirect {
		c.Printf("Redirecting debug output to %s.\n", s.file)
	} else {
		c.Printf("Copying debug output to %s.\n", s.file)
	}
	if err := c.UI.SetLogging(w, s.redirect, s.debugRedirect); err != nil {
		w.Close()
		return err
	}
	s.enabled = true
	return nil
}

func stopLogging(c *Context, s *session) error {
	if !s.enabled {
		return nil
	}
	s.enabled = false
	if err := c.UI.SetLogging(nil, false, false); err != nil {
		return err
	}
	c.Printf("Done logging to %s.\n", s.file)
	return nil
}

func showLogging(c *Context) error {
	s := c.Table.session(c.UI.ID())
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	c.Printf("logging debugredirect:  The logging output mode is %s.\n", onOff(s.debugRedirect))
	c.Printf("logging enabled:  Logging is %s.\n", onOff(s.enabled))
	c.Printf("logging file:  The current logfile is \"%s\".\n", s.file)
	c.Printf("logging redirect:  The logging output mode is %s.\n", onOff(s.redirect))
	return nil
}
