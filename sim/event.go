package sim

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec float64

// An Event is something that happens at a given simulated time.
type Event interface {
	// Time returns when the event happens.
	Time() VTimeInSec

	// Handler returns the handler that owns the event.
	Handler() Handler

	// IsSecondary tells if the event runs after all the primary events of
	// the same time.
	IsSecondary() bool
}

// EventBase is embedded by events to carry the time and the handler.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a primary event.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true for secondary events.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler reacts to events. An event is only handled by the handler that
// scheduled it, and may only change that handler's state.
type Handler interface {
	Handle(e Event) error
}
