package feed

import (
	"time"

	"github.com/google/uuid"
)

// Message is a feed payload as seen by the dashboard.
type Message struct {
	ID         uuid.UUID
	Payload    string
	ReceivedAt time.Time
}
