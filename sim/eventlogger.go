package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook for engines that writes every event it is about to
// handle into a logger, one line per event. Times are printed in
// microseconds.
type EventLogger struct {
	LogHookBase

	only  map[string]bool
	count uint64
}

// NewEventLogger returns an EventLogger that writes into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Only restricts the log to the events handled by the named components.
func (h *EventLogger) Only(names ...string) *EventLogger {
	if h.only == nil {
		h.only = make(map[string]bool)
	}

	for _, n := range names {
		h.only[n] = true
	}

	return h
}

// Count returns the number of events logged so far.
func (h *EventLogger) Count() uint64 {
	return h.count
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	name := ""
	if comp, ok := evt.Handler().(Named); ok {
		name = comp.Name()
	}

	if h.only != nil && !h.only[name] {
		return
	}

	h.count++

	if name == "" {
		h.Logger.Printf("%.3fus, %s", float64(evt.Time())*1e6,
			reflect.TypeOf(evt))
		return
	}

	h.Logger.Printf("%.3fus, %s -> %s", float64(evt.Time())*1e6,
		reflect.TypeOf(evt), name)
}
