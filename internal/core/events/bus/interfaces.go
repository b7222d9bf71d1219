package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// - Type-based fan-out: handlers subscribe by Event.Type.
// - Synchronous delivery: Publish calls handlers in the caller goroutine.
// - Error aggregation: handler errors are joined and returned from Publish.
// - A handler subscribed to WildcardType receives every event.
type EventBus interface {
	// Publish delivers the event synchronously to all active subscribers.
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type and returns a
	// Subscription handle that can be used to cancel later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// GetMetrics returns a snapshot of delivery counters.
	GetMetrics() Metrics
}

// WildcardType subscribes a handler to every event type.
const WildcardType = "*"

// Event is an immutable message transported by the bus.
type Event struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Data   any       `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, src string, data any) Event {
	return Event{Type: typ, Source: src, Time: time.Now(), Data: data}
}

type (
	// EventHandler is invoked per delivered event. Returned errors are
	// aggregated by Publish.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Metrics counts bus activity.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
