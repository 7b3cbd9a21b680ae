// Package testing provides test doubles for the transport package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/akiramusic/lavamon/internal/errors"
	"github.com/akiramusic/lavamon/internal/transport"
)

// FakeConn is a scripted websocket connection. Messages queued with
// QueueMessage are returned in order; after the queue drains, ReadMessage
// blocks until FailWith or Close.
type FakeConn struct {
	mu       sync.Mutex
	messages chan fakeRead
	closed   bool
	Closed   chan struct{}
}

type fakeRead struct {
	data []byte
	err  error
}

// NewFakeConn creates an open fake connection.
func NewFakeConn() *FakeConn {
	return &FakeConn{
		messages: make(chan fakeRead, 64),
		Closed:   make(chan struct{}),
	}
}

// QueueMessage makes the given payload available to the next ReadMessage.
func (c *FakeConn) QueueMessage(data []byte) {
	c.messages <- fakeRead{data: data}
}

// FailWith ends the read stream with the given error.
func (c *FakeConn) FailWith(err error) {
	c.messages <- fakeRead{err: err}
}

func (c *FakeConn) ReadMessage() ([]byte, error) {
	select {
	case r := <-c.messages:
		return r.data, r.err
	case <-c.Closed:
		return nil, errors.New(errors.ErrTransport, "connection closed", "")
	}
}

func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Closed)
	}
	return nil
}

// FakeDialer hands out scripted connections, or fails while Failing is set.
type FakeDialer struct {
	mu      sync.Mutex
	conns   []*FakeConn
	Failing bool
	Calls   int
}

// NewFakeDialer creates a dialer that fails until a connection is queued.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{Failing: true}
}

// QueueConn makes the next Dial succeed with the given connection.
func (d *FakeDialer) QueueConn(conn *FakeConn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns = append(d.conns, conn)
	d.Failing = false
}

// SetFailing toggles whether Dial fails.
func (d *FakeDialer) SetFailing(failing bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Failing = failing
}

func (d *FakeDialer) Dial(ctx context.Context) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls++
	if d.Failing || len(d.conns) == 0 {
		return nil, errors.New(errors.ErrTransport, "dial refused", "")
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	if len(d.conns) == 0 {
		d.Failing = true
	}
	return conn, nil
}

// DialCalls returns how many times Dial was invoked.
func (d *FakeDialer) DialCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Calls
}

// FakePoller serves canned payloads over the polling interface.
type FakePoller struct {
	mu         sync.Mutex
	StatsBody  []byte
	InfoBody   []byte
	Version    string
	RoundTrip  time.Duration
	Failing    bool
	StatsCalls int
}

// NewFakePoller creates a poller that fails by default.
func NewFakePoller() *FakePoller {
	return &FakePoller{Failing: true, Version: "4.0.8"}
}

// ServeStats makes subsequent fetches succeed with the given payload.
func (p *FakePoller) ServeStats(body []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StatsBody = body
	p.Failing = false
}

// SetFailing toggles whether fetches fail.
func (p *FakePoller) SetFailing(failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Failing = failing
}

func (p *FakePoller) FetchStats(ctx context.Context) ([]byte, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StatsCalls++
	if p.Failing {
		return nil, 0, errors.New(errors.ErrTransport, "stats unavailable", "")
	}
	return p.StatsBody, p.RoundTrip, nil
}

func (p *FakePoller) FetchInfo(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Failing || p.InfoBody == nil {
		return nil, errors.New(errors.ErrTransport, "info unavailable", "")
	}
	return p.InfoBody, nil
}

func (p *FakePoller) FetchVersion(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Failing {
		return "", errors.New(errors.ErrTransport, "version unavailable", "")
	}
	return p.Version, nil
}

// FetchStatsCalls returns how many times FetchStats was invoked.
func (p *FakePoller) FetchStatsCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.StatsCalls
}
