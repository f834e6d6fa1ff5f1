// Package events publishes domain events for dashboards and other
// consumers.
package events

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subjects and stream.
const (
	SubjectPrefix = "golfcam.events"
	SubjectAll    = SubjectPrefix + ".>"
	StreamName    = "GOLFCAM_EVENTS"
)

// Actions.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionAssigned   = "assigned"
	ActionUnassigned = "unassigned"
	ActionReset      = "reset"
	ActionImported   = "imported"
	ActionRebuilt    = "rebuilt"
)

// KindFleet is the kind of events that concern every collection.
const KindFleet = "fleet"

// Event is a change notification.
type Event struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Action   string    `json:"action"`
	EntityID string    `json:"entityId,omitempty"`
	Data     any       `json:"data,omitempty"`
	Time     time.Time `json:"time"`
}

// New returns an Event with a fresh id and the current time.
func New(kind, action, entityID string, data any) Event {
	return Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		Action:   action,
		EntityID: entityID,
		Data:     data,
		Time:     time.Now().UTC(),
	}
}

// Subject returns the NATS subject the event is published on.
func (e Event) Subject() string {
	return SubjectPrefix + "." + e.Kind + "." + e.Action
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout publishes to every publisher and returns the first error.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Emit publishes e and logs a failure. Event delivery never fails the
// operation that produced it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("[Events] publish %s failed: %v", e.Subject(), err)
	}
}

// Memory keeps published events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of the published events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
