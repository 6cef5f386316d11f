package feed

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"k8s.io/utils/clock"
)

// DefaultHistory is how many messages a Log keeps by default.
const DefaultHistory = 200

// Log records feed messages, keeping the newest ones.
type Log struct {
	mu      sync.Mutex
	entries *lru.Cache // uuid.UUID -> Message, oldest first
	clock   clock.PassiveClock
	sink    *Queue[Message]
	logger  *slog.Logger
	total   int64
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithClock sets the clock receipt times are read from.
func WithClock(c clock.PassiveClock) LogOption {
	return func(l *Log) {
		l.clock = c
	}
}

// WithSink forwards every recorded message to q.
func WithSink(q *Queue[Message]) LogOption {
	return func(l *Log) {
		l.sink = q
	}
}

// NewLog creates a Log holding at most size messages.
func NewLog(size int, logger *slog.Logger, opts ...LogOption) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultHistory
	}

	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create history: %w", err)
	}

	l := &Log{
		entries: entries,
		clock:   clock.RealClock{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Handle records a raw payload. It has the connection.Handler signature.
func (l *Log) Handle(payload string) {
	l.Record(payload)
}

// Record stamps payload with a fresh ID and receipt time and stores it.
func (l *Log) Record(payload string) Message {
	msg := Message{
		ID:         uuid.New(),
		Payload:    payload,
		ReceivedAt: l.clock.Now(),
	}

	l.mu.Lock()
	l.entries.Add(msg.ID, msg)
	l.total++
	l.mu.Unlock()

	if l.sink != nil && !l.sink.Send(msg) {
		l.logger.Debug("feed sink closed, message kept in history only", "id", msg.ID)
	}

	return msg
}

// Recent returns up to n of the newest messages, oldest first. n <= 0 returns all.
func (l *Log) Recent(n int) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := l.entries.Keys()
	if n > 0 && n < len(keys) {
		keys = keys[len(keys)-n:]
	}

	out := make([]Message, 0, len(keys))
	for _, k := range keys {
		if v, ok := l.entries.Peek(k); ok {
			out = append(out, v.(Message))
		}
	}
	return out
}

// Lookup returns the message with the given ID if it is still retained.
func (l *Log) Lookup(id uuid.UUID) (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.entries.Peek(id)
	if !ok {
		return Message{}, false
	}
	return v.(Message), true
}

// Len returns the number of retained messages.
func (l *Log) Len() int {
	return l.entries.Len()
}

// Total returns how many messages were ever recorded.
func (l *Log) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Clear drops all retained messages.
func (l *Log) Clear() {
	l.entries.Purge()
}
