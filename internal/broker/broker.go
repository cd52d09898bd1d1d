package broker

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventKind names the change being broadcast.
type EventKind string

const (
	// TransactionsChanged fires after every successful store write.
	TransactionsChanged EventKind = "transactions.changed"
	// ModeChanged fires when the tracking mode flag is rewritten.
	ModeChanged EventKind = "mode.changed"
)

// Event is the data sent to subscribers when tracked state changes.
type Event struct {
	Kind   EventKind
	Detail string
}

// EventBroker handles the subscription and broadcasting of change events so
// multiple surfaces stay in sync without polling the storage medium.
type EventBroker struct {
	subscribers []chan Event
	mu          sync.Mutex
}

// NewEventBroker initializes a new EventBroker.
func NewEventBroker() *EventBroker {
	return &EventBroker{}
}

// Subscribe adds a new subscriber to the broker.
func (b *EventBroker) Subscribe() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 8)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBroker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, subscriber := range b.subscribers {
		if subscriber == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Broadcast sends the event to all subscribers. Sends are non-blocking: a
// subscriber that stopped draining its channel misses events rather than
// stalling the writer.
func (b *EventBroker) Broadcast(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subscriber := range b.subscribers {
		select {
		case subscriber <- event:
		default:
			logrus.Warnf("event subscriber channel full, dropping %s", event.Kind)
		}
	}
}
