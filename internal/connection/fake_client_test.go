package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// fakeClient is an in-memory Client driven by the test.
type fakeClient struct {
	connectErr error
	gate       chan struct{} // when set, Connect blocks until it is closed

	mu       sync.Mutex
	messages chan TimestampedMessage
	err      error
	closed   bool
	ended    bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{messages: make(chan TimestampedMessage, 100)}
}

func (c *fakeClient) Connect(ctx context.Context) error {
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrAlreadyClosed
	}
	return c.connectErr
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.endLocked(nil)
	return nil
}

func (c *fakeClient) Messages() <-chan TimestampedMessage { return c.messages }

func (c *fakeClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.ended
}

// push simulates a server frame.
func (c *fakeClient) push(payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return
	}
	c.messages <- TimestampedMessage{Data: []byte(payload), ReceivedAt: time.Now()}
}

// drop simulates the server ending the connection; err nil means a graceful close.
func (c *fakeClient) drop(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(err)
}

func (c *fakeClient) endLocked(err error) {
	if c.ended {
		return
	}
	c.ended = true
	c.err = err
	close(c.messages)
}

// fakeDialer hands out fakeClients and records every attempt.
type fakeDialer struct {
	mu      sync.Mutex
	clients []*fakeClient
	prepare func(n int, c *fakeClient) // optional per-attempt setup, n starts at 1
	urls    []string
}

func (d *fakeDialer) factory(cfg ClientConfig, _ *slog.Logger) Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := newFakeClient()
	if d.prepare != nil {
		d.prepare(len(d.clients)+1, c)
	}
	d.clients = append(d.clients, c)
	d.urls = append(d.urls, cfg.URL)
	return c
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

func (d *fakeDialer) client(i int) *fakeClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[i]
}

var errReset = errors.New("connection reset by peer")
