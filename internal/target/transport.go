package target

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// MaxContentLength bounds the size of a single message body.
const MaxContentLength = 10 * 1024 * 1024

// ErrMissingLength is returned for a message without a Content-Length header.
var ErrMissingLength = errors.New("missing Content-Length header")

// Transport moves framed message bodies to and from an adapter.
type Transport interface {
	Send(body []byte) error
	Receive() ([]byte, error)
	Close() error
}

// stream frames messages over any reader and writer pair.
type stream struct {
	r      *bufio.Reader
	w      io.Writer
	mu     sync.Mutex
	closer func() error
}

// NewTransport frames messages over rwc.
func NewTransport(rwc io.ReadWriteCloser) Transport {
	return &stream{r: bufio.NewReader(rwc), w: rwc, closer: rwc.Close}
}

// Dial connects to an adapter listening on address.
func Dial(address string) (Transport, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return NewTransport(conn), nil
}

// Spawn starts the adapter command line argv and talks to it over its
// standard input and output.
func Spawn(argv []string) (Transport, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty adapter command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return &stream{
		r: bufio.NewReader(stdout),
		w: stdin,
		closer: func() error {
			stdin.Close()
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			_ = cmd.Wait()
			return nil
		},
	}, nil
}

// Send writes body with a Content-Length header.
func (s *stream) Send(body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Receive reads the next framed message.
func (s *stream) Receive() ([]byte, error) {
	length := -1
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid content length: %w", err)
			}
			if n < 0 || n > MaxContentLength {
				return nil, fmt.Errorf("content length %d out of range", n)
			}
			length = n
		}
	}
	if length < 0 {
		return nil, ErrMissingLength
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(s.r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Close closes the underlying connection.
func (s *stream) Close() error {
	return s.closer()
}
