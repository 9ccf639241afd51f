package record

import (
	"time"

	"github.com/google/uuid"
)

// Event is one behavioral event pending upload.
//
// ID is the opaque, store-assigned row identity (zero until persisted).
// Duplicate-insert detection keys on ID, never on content.
type Event struct {
	ID              int64
	ProjectToken    string
	CustomerIDKey   string
	CustomerIDValue Value
	EventType       string
	Timestamp       float64 // unix epoch seconds
	Properties      []Property
}

// CustomerUpdate is one customer identity/attribute update pending upload.
// Same shape as Event minus the event type.
type CustomerUpdate struct {
	ID              int64
	ProjectToken    string
	CustomerIDKey   string
	CustomerIDValue Value
	Timestamp       float64 // unix epoch seconds
	Properties      []Property
}

// Identity is the durable per-install customer identifier. Exactly one
// exists per store; it correlates records before and after a registered
// identity is attached.
type Identity struct {
	Cookie uuid.UUID
}

// NewIdentity constructs an identity with a freshly generated cookie.
func NewIdentity() Identity {
	return Identity{Cookie: uuid.Must(uuid.NewRandom())}
}

// nowUnix returns the current wall time as unix epoch seconds.
func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
