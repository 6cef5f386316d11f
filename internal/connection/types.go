package connection

import (
	"errors"
	"net/http"
	"time"
)

// Errors
var (
	ErrStaleConnection  = errors.New("connection stale (no ping)")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrNoFeedHost       = errors.New("feed host could not be determined")
	ErrUnknownStrategy  = errors.New("unknown reconnect strategy")
	ErrInvalidPageURL   = errors.New("invalid page url")
	ErrShutdownTimedOut = errors.New("connection manager shutdown timed out")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Handler consumes one raw feed payload.
type Handler func(payload string)

// State is the lifecycle state of the managed connection.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., ws://localhost:8000/api/v1/ws)
	Header           http.Header   // Extra handshake headers
	HandshakeTimeout time.Duration // Max time for the opening handshake
	PingInterval     time.Duration // How often a keepalive ping is sent
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for control frames
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	Endpoint  Endpoint        // Where the feed lives
	Client    ClientConfig    // Per-transport settings; URL is filled from Endpoint
	Reconnect ReconnectPolicy // nil = FixedDelay(DefaultReconnectDelay)

	// StopOnDisconnect makes an explicit Disconnect suppress reconnects until the
	// next explicit Connect. When false, the close caused by Disconnect is treated
	// like any other closure and a reconnect is scheduled.
	StopOnDisconnect bool
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Endpoint:  Endpoint{Path: DefaultFeedPath},
		Client:    DefaultClientConfig(),
		Reconnect: FixedDelay(DefaultReconnectDelay),
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	State               State
	URL                 string
	Attempts            int64 // Transport attempts started
	Opens               int64 // Attempts that reached Open
	Closes              int64 // Closures observed (graceful or not)
	Messages            int64 // Payloads dispatched
	ConsumerPanics      int64 // Consumer invocations that panicked
	Consumers           int   // Currently registered consumers
	ConsecutiveFailures int   // Closures since the last successful open
	ReconnectPending    bool
}
