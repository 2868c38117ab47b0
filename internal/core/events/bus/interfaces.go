package bus

// EventBus is an in-process pub/sub bus for simulation feedback signals.
//
// Key characteristics:
//   - Type-based fan-out: handlers subscribe by Event.Type string, or to every
//     type with Wildcard.
//   - Synchronous, ordered delivery: Publish calls handlers in the caller
//     goroutine, in subscription order, so a tick replays identically.
//   - Error aggregation: handler errors are joined and returned from Publish.
//   - Safe for concurrent use; handlers must not block.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type and to
	// wildcard subscribers. Handler errors are joined.
	Publish(event Event) error
	// PublishBatch publishes events sequentially and aggregates errors.
	PublishBatch(events ...Event) error
	// Subscribe registers a handler for an event type (or Wildcard).
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is a no-op.
	Unsubscribe(Subscription) error

	GetMetrics() EventBusMetrics
}

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// Event is an immutable feedback message. Tick replaces wall-clock time so
// that two runs of the same scenario produce identical event streams.
type Event struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Tick   uint64 `json:"tick"`
	Data   any    `json:"data,omitempty"`
}

// NewEvent creates an Event.
func NewEvent(typ, src string, tick uint64, data any) Event {
	return Event{Type: typ, Source: src, Tick: tick, Data: data}
}

type (
	// EventHandler is invoked per delivered event.
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

// EventBusMetrics is a minimal set of delivery counters.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
