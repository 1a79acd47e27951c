// Package session drives a single game session: it turns player intents
// into dispatched actions, runs the world and monster turns that follow,
// and fans state updates out to connected clients.
package session

import (
	"fmt"
	"sync"
)

// Outbox routes push calls to a buffered channel, bridging the session to
// a client connection.
type Outbox struct {
	id     string
	events chan []byte
	mu     sync.Mutex
	closed bool
}

// NewOutbox creates an Outbox for the given client id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns an Outbox with an open events channel.
func NewOutbox(id string, bufferSize int) *Outbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Outbox{
		id:     id,
		events: make(chan []byte, bufferSize),
	}
}

// ID returns the client identifier.
func (o *Outbox) ID() string {
	return o.id
}

// Push sends data to the events channel.
//
// Precondition: data must be a non-nil byte slice.
// Postcondition: Data is enqueued, or an error is returned if the outbox is closed or full.
func (o *Outbox) Push(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox %s is closed", o.id)
	}
	select {
	case o.events <- data:
		return nil
	default:
		return fmt.Errorf("outbox %s buffer full", o.id)
	}
}

// Events returns the read-only events channel. The connection's writer
// goroutine drains it.
func (o *Outbox) Events() <-chan []byte {
	return o.events
}

// Close marks the outbox as closed and closes the events channel.
//
// Postcondition: The events channel is closed. Further Push calls return an error.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.events)
	}
	return nil
}

// IsClosed reports whether the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
