package soc

import "github.com/sarchlab/gemdroid/sim"

// Hook positions shared by the agents that own frames.
var (
	// HookPosFrameDisplayed marks a frame that met its deadline.
	HookPosFrameDisplayed = &sim.HookPos{Name: "Frame Displayed"}

	// HookPosFrameDropped marks a frame that missed its deadline.
	HookPosFrameDropped = &sim.HookPos{Name: "Frame Dropped"}

	// HookPosDeadlock marks a transaction that was force-committed.
	HookPosDeadlock = &sim.HookPos{Name: "Deadlock"}

	// HookPosIPRequestDone marks an IP finishing its part of a frame.
	HookPosIPRequestDone = &sim.HookPos{Name: "IP Request Done"}
)

// FrameEvent is the hook item of frame displays, frame drops, deadlocks, and
// finished IP requests.
type FrameEvent struct {
	// Tick is the reference tick at which the event happened.
	Tick uint64

	Agent    IPType
	AgentID  int
	FrameNum int
	FlowID   int

	// Cause names the largest stall category of a dropped frame. It is empty
	// for other events.
	Cause string

	// Addr is the address of a force-committed transaction.
	Addr uint64
}
