package sim

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events to run in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is notified once the engine has run out of events.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine drives a discrete-event simulation. Events run in time order.
// The engine is hookable so that loggers and monitors can see each event
// before and after it is handled.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run handles events until none are left or a handler fails.
	Run() error

	// Pause blocks the engine before its next event.
	Pause()

	// Continue releases a paused engine.
	Continue()

	// RegisterSimulationEndHandler adds a handler for Finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished notifies the simulation end handlers.
	Finished()
}
