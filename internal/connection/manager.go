package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"k8s.io/utils/clock"
)

// Manager owns the single live-feed connection.
type Manager interface {
	// Connect starts a connection attempt unless one is already Connecting or Open.
	// It never blocks on the network and never reports failure; failures show up
	// as the state machine cycling through Closed and back.
	Connect()

	// Disconnect closes the current transport, if any.
	Disconnect()

	// OnMessage registers a consumer and returns its idempotent disposer.
	OnMessage(h Handler) (dispose func())

	// State returns the current lifecycle state.
	State() State

	// Stats returns current connection statistics.
	Stats() ManagerStats

	// Close tears the manager down for good: pending reconnects are cancelled,
	// the transport is closed and background goroutines are awaited.
	Close(ctx context.Context) error
}

// ManagerOption configures a Manager.
type ManagerOption func(*manager)

// WithClock sets the clock reconnect delays are scheduled on.
func WithClock(c clock.WithDelayedExecution) ManagerOption {
	return func(m *manager) {
		m.clock = c
	}
}

// WithClientFactory sets how transports are built.
func WithClientFactory(f ClientFactory) ManagerOption {
	return func(m *manager) {
		m.newClient = f
	}
}

type consumer struct {
	id uint64
	fn Handler
}

// manager implements the Manager interface.
type manager struct {
	cfg       ManagerConfig
	url       string
	logger    *slog.Logger
	clock     clock.WithDelayedExecution
	newClient ClientFactory

	mu            sync.Mutex
	state         State
	client        Client
	cancelAttempt context.CancelFunc
	timer         clock.Timer
	failures      int
	stopped       bool // explicit Disconnect with StopOnDisconnect
	closed        bool
	wg            sync.WaitGroup

	handlersMu sync.RWMutex
	handlers   []consumer
	nextID     uint64

	attempts atomic.Int64
	opens    atomic.Int64
	closes   atomic.Int64
	messages atomic.Int64
	panics   atomic.Int64
}

// NewManager creates a new Connection Manager in the Idle state.
func NewManager(cfg ManagerConfig, logger *slog.Logger, opts ...ManagerOption) (Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	url, err := cfg.Endpoint.URL()
	if err != nil {
		return nil, fmt.Errorf("feed endpoint: %w", err)
	}

	if cfg.Reconnect == nil {
		cfg.Reconnect = FixedDelay(DefaultReconnectDelay)
	}

	m := &manager{
		cfg:       cfg,
		url:       url,
		logger:    logger,
		clock:     clock.RealClock{},
		newClient: NewClient,
		state:     StateIdle,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Connect starts a connection attempt.
func (m *manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		m.logger.Debug("connect ignored, manager closed")
		return
	}
	m.stopped = false
	m.connectLocked()
}

// connectLocked must be called with m.mu held.
func (m *manager) connectLocked() {
	if m.state == StateConnecting || m.state == StateOpen {
		m.logger.Debug("connect ignored, connection already in progress", "state", m.state)
		return
	}

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	cfg := m.cfg.Client
	cfg.URL = m.url
	client := m.newClient(cfg, m.logger.With("url", m.url))

	ctx, cancel := context.WithCancel(context.Background())
	m.client = client
	m.cancelAttempt = cancel
	m.state = StateConnecting
	m.attempts.Add(1)

	m.logger.Info("connecting to live feed",
		"url", m.url,
		"attempt", m.failures+1,
	)

	m.wg.Add(1)
	go m.run(ctx, client)
}

// run drives one transport from dial to closure.
func (m *manager) run(ctx context.Context, client Client) {
	defer m.wg.Done()

	if err := client.Connect(ctx); err != nil {
		m.logger.Warn("live feed connection failed", "url", m.url, "error", err)
		m.handleClosed(client, err)
		return
	}

	if !m.markOpen(client) {
		client.Close()
		return
	}

	for msg := range client.Messages() {
		m.dispatch(msg)
	}

	m.handleClosed(client, client.Err())
}

func (m *manager) markOpen(client Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != client {
		return false
	}

	m.state = StateOpen
	m.failures = 0
	m.opens.Add(1)
	m.logger.Info("live feed connected", "url", m.url)
	return true
}

// handleClosed moves to Closed and schedules the next attempt per the policy.
func (m *manager) handleClosed(client Client, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != client {
		return
	}

	client.Close()
	if m.cancelAttempt != nil {
		m.cancelAttempt()
		m.cancelAttempt = nil
	}
	m.client = nil
	m.state = StateClosed
	m.closes.Add(1)

	if cause != nil {
		m.logger.Warn("live feed closed", "url", m.url, "error", cause)
	} else {
		m.logger.Info("live feed closed", "url", m.url)
	}

	if m.closed {
		return
	}
	if m.stopped {
		m.logger.Info("reconnect suppressed after disconnect")
		return
	}

	m.failures++
	delay, ok := m.cfg.Reconnect(m.failures)
	if !ok {
		m.logger.Error("giving up on live feed", "url", m.url, "attempts", m.failures)
		return
	}

	m.logger.Info("scheduling reconnect", "delay", delay, "attempt", m.failures)
	m.timer = m.clock.AfterFunc(delay, m.reconnect)
}

// reconnect runs when the reconnect delay elapses.
func (m *manager) reconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timer = nil
	if m.closed || m.stopped {
		return
	}
	m.connectLocked()
}

// Disconnect closes the current transport.
func (m *manager) Disconnect() {
	m.mu.Lock()
	client := m.client
	cancel := m.cancelAttempt
	if m.cfg.StopOnDisconnect {
		m.stopped = true
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
	}
	m.mu.Unlock()

	if client == nil {
		m.logger.Debug("disconnect ignored, no active transport")
		return
	}

	m.logger.Info("disconnecting live feed", "url", m.url)
	if cancel != nil {
		cancel()
	}
	if err := client.Close(); err != nil {
		m.logger.Debug("transport close error", "error", err)
	}
}

// OnMessage registers h and returns a disposer removing exactly h.
func (m *manager) OnMessage(h Handler) func() {
	if h == nil {
		return func() {}
	}

	m.handlersMu.Lock()
	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, consumer{id: id, fn: h})
	m.handlersMu.Unlock()

	return func() {
		m.removeHandler(id)
	}
}

func (m *manager) removeHandler(id uint64) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()

	for i, c := range m.handlers {
		if c.id == id {
			// Copy so snapshots taken by in-flight dispatches stay intact.
			next := make([]consumer, 0, len(m.handlers)-1)
			next = append(next, m.handlers[:i]...)
			m.handlers = append(next, m.handlers[i+1:]...)
			return
		}
	}
}

// dispatch delivers one payload to a snapshot of the registered consumers.
func (m *manager) dispatch(msg TimestampedMessage) {
	m.handlersMu.RLock()
	snapshot := make([]consumer, len(m.handlers))
	copy(snapshot, m.handlers)
	m.handlersMu.RUnlock()

	m.messages.Add(1)
	payload := string(msg.Data)
	for _, c := range snapshot {
		m.deliver(c, payload)
	}
}

func (m *manager) deliver(c consumer, payload string) {
	defer func() {
		if r := recover(); r != nil {
			m.panics.Add(1)
			m.logger.Error("feed consumer panicked", "consumer", c.id, "panic", r)
		}
	}()
	c.fn(payload)
}

// State returns the current lifecycle state.
func (m *manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.mu.Lock()
	state := m.state
	failures := m.failures
	pending := m.timer != nil
	m.mu.Unlock()

	m.handlersMu.RLock()
	consumers := len(m.handlers)
	m.handlersMu.RUnlock()

	return ManagerStats{
		State:               state,
		URL:                 m.url,
		Attempts:            m.attempts.Load(),
		Opens:               m.opens.Load(),
		Closes:              m.closes.Load(),
		Messages:            m.messages.Load(),
		ConsumerPanics:      m.panics.Load(),
		Consumers:           consumers,
		ConsecutiveFailures: failures,
		ReconnectPending:    pending,
	}
}

// Close gracefully shuts down.
func (m *manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	client := m.client
	cancel := m.cancelAttempt
	m.mu.Unlock()

	m.logger.Info("stopping connection manager")

	if cancel != nil {
		cancel()
	}
	if client != nil {
		client.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("connection manager stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, forcing close")
		return ErrShutdownTimedOut
	}
}
