package activity

import (
	"context"
	"sync"
	"time"
)

// Event represents a system activity event.
type Event struct {
	// Timestamp of the event
	Timestamp time.Time
	// Activity that was performed during the event
	Activity Activity
	// ID of the event (can be empty, meaning that it wasn't yet generated)
	ID uint64
	// InitiatorID is the ID of an object that initiated the event (e.g., a user)
	InitiatorID string
	// TargetID is the ID of an object that was effected by the event (e.g., a user whose metadata changed)
	TargetID string
	// Meta of the event, e.g. the path of an updated metadata entry
	Meta map[string]any
}

// Copy the event
func (e *Event) Copy() *Event {
	meta := make(map[string]any, len(e.Meta))
	for key, value := range e.Meta {
		meta[key] = value
	}

	return &Event{
		Timestamp:   e.Timestamp,
		Activity:    e.Activity,
		ID:          e.ID,
		InitiatorID: e.InitiatorID,
		TargetID:    e.TargetID,
		Meta:        meta,
	}
}

// Store provides an interface to store or stream events.
type Store interface {
	// Save an event in the store
	Save(ctx context.Context, event *Event) (*Event, error)
	// Get returns "limit" number of events affecting the given user from the "offset" index ordered descending or ascending by a timestamp
	Get(ctx context.Context, userID string, offset, limit int, descending bool) ([]*Event, error)
	// Close the sink flushing events if necessary
	Close(ctx context.Context) error
}

// NoopEventStore implements the Store interface storing data in-memory
type NoopEventStore struct {
	mu     sync.Mutex
	nextID uint64
	events []*Event
}

// Save assigns the next in-memory ID to the event and keeps it
func (store *NoopEventStore) Save(_ context.Context, event *Event) (*Event, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.events == nil {
		store.events = make([]*Event, 0)
	}
	event.ID = store.nextID
	store.nextID++
	store.events = append(store.events, event)
	return event, nil
}

// Get returns a list of ALL events that affect the given userID without taking offset, limit and order into consideration
func (store *NoopEventStore) Get(_ context.Context, userID string, offset, limit int, descending bool) ([]*Event, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	events := make([]*Event, 0)
	for _, event := range store.events {
		if event.TargetID == userID {
			events = append(events, event)
		}
	}
	return events, nil
}

// Close cleans up the event list
func (store *NoopEventStore) Close(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.events = make([]*Event, 0)
	return nil
}
