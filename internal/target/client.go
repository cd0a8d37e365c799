package target

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// ErrClosed is returned for requests on a closed client.
var ErrClosed = errors.New("adapter connection closed")

// RequestError is a failed response from the adapter.
type RequestError struct {
	Command string
	Message string
}

// Error implements error.
func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Command)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Client sends requests to an adapter and queues the events it sends.
// Requests may be made from any goroutine. Events are read with Next
// after Ready fires.
type Client struct {
	transport Transport
	logger    *zap.Logger
	seq       atomic.Int64

	mu      sync.Mutex
	pending map[int]chan *Response
	events  *queue.Queue
	err     error

	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient starts reading from t.
func NewClient(t Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		transport: t,
		logger:    logger.Named("dap"),
		pending:   make(map[int]chan *Response),
		events:    queue.New(),
		ready:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	for {
		body, err := c.transport.Receive()
		if err != nil {
			c.fail(err)
			return
		}
		if ce := c.logger.Check(zap.DebugLevel, "recv"); ce != nil {
			ce.Write(zap.ByteString("msg", pretty.Ugly(body)))
		}
		switch gjson.GetBytes(body, "type").String() {
		case "response":
			c.handleResponse(body)
		case "event":
			c.handleEvent(body)
		default:
			c.logger.Debug("ignoring message", zap.ByteString("msg", body))
		}
	}
}

func (c *Client) handleResponse(body []byte) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("bad response", zap.Error(err))
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.RequestSeq]
	delete(c.pending, resp.RequestSeq)
	c.mu.Unlock()
	if ok {
		ch <- &resp
	}
}

func (c *Client) handleEvent(body []byte) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		c.logger.Warn("bad event", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.events.Add(ev)
	c.mu.Unlock()
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// fail records the first read error and releases waiting requests.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		c.err = ErrClosed
	default:
		c.err = err
	}
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Err returns the error that stopped the reader, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Ready is signalled when events may be available.
func (c *Client) Ready() <-chan struct{} { return c.ready }

// Next removes and returns the oldest queued event.
func (c *Client) Next() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events.Length() == 0 {
		return Event{}, false
	}
	return c.events.Remove().(Event), true
}

// Request sends command with args and waits for the response. A
// successful response body is decoded into result when it is non-nil.
func (c *Client) Request(ctx context.Context, command string, args, result any) error {
	seq := int(c.seq.Add(1))
	msg, err := sjson.SetBytes([]byte(`{"type":"request"}`), "seq", seq)
	if err == nil {
		msg, err = sjson.SetBytes(msg, "command", command)
	}
	if err == nil && args != nil {
		msg, err = sjson.SetBytes(msg, "arguments", args)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", command, err)
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return c.err
	}
	c.pending[seq] = ch
	c.mu.Unlock()

	c.logger.Debug("send", zap.ByteString("msg", msg))
	if err := c.transport.Send(msg); err != nil {
		c.forget(seq)
		return fmt.Errorf("send %s: %w", command, err)
	}

	select {
	case <-ctx.Done():
		c.forget(seq)
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return c.Err()
		}
		if !resp.Success {
			return &RequestError{Command: command, Message: resp.Message}
		}
		if result != nil && len(resp.Body) > 0 {
			if err := json.Unmarshal(resp.Body, result); err != nil {
				return fmt.Errorf("decode %s response: %w", command, err)
			}
		}
		return nil
	}
}

func (c *Client) forget(seq int) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

// Close closes the transport and stops the reader.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.transport.Close()
	})
	return err
}
