// Package power models how components save power: a three-state machine with
// wake latencies, and voltage/frequency tables with the knobs that step
// through them.
package power

import "fmt"

// State is the power state of a component.
type State int

// The power states, from the most to the least awake.
const (
	Active State = iota
	LowPower
	Idle
	numStates
)

func (s State) String() string {
	switch s {
	case Active:
		return "Active"
	case LowPower:
		return "LowPower"
	case Idle:
		return "Idle"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Timing holds the thresholds and latencies of a class of components, in
// cycles of the component's own clock.
type Timing struct {
	LowPowerEnter uint64
	IdleEnter     uint64
	LowPowerExit  uint64
	IdleExit      uint64
	EnableIdle    bool
}

// CoreTiming is used by the CPU cores. Cores never go deeper than LowPower.
var CoreTiming = Timing{
	LowPowerEnter: 200_000,
	IdleEnter:     1_128_900,
	LowPowerExit:  54_600,
	IdleExit:      2_634_600,
	EnableIdle:    false,
}

// DeviceTiming is used by I/O devices.
var DeviceTiming = Timing{
	LowPowerEnter: 97_800,
	IdleEnter:     97_800,
	LowPowerExit:  109_200,
	IdleExit:      109_200,
	EnableIdle:    true,
}

// AcceleratorTiming is used by codecs, the image processor, and the GPU.
var AcceleratorTiming = DeviceTiming

// Counters accumulates cycles per power state.
type Counters [numStates]uint64

// Sub returns the cycles accumulated since an earlier snapshot.
func (c Counters) Sub(earlier Counters) Counters {
	var d Counters
	for i := range c {
		d[i] = c[i] - earlier[i]
	}

	return d
}

// Of returns the cycles spent in a state.
func (c Counters) Of(s State) uint64 {
	return c[s]
}

// StateMachine tracks the power state of one component.
type StateMachine struct {
	timing       Timing
	state        State
	idleCycles   uint64
	cyclesToWake uint64
	cycles       Counters
	onActive     func()
}

// NewStateMachine creates a state machine in the given initial state. The
// onActive callback fires every time the component becomes Active, and may
// be nil.
func NewStateMachine(
	timing Timing,
	initial State,
	onActive func(),
) *StateMachine {
	return &StateMachine{
		timing:   timing,
		state:    initial,
		onActive: onActive,
	}
}

// State returns the current state.
func (m *StateMachine) State() State {
	return m.state
}

// IsActive tells if the component is Active.
func (m *StateMachine) IsActive() bool {
	return m.state == Active
}

// IsWaking tells if a wake-up is in progress.
func (m *StateMachine) IsWaking() bool {
	return m.cyclesToWake > 0
}

// CyclesToWake returns the remaining wake latency.
func (m *StateMachine) CyclesToWake() uint64 {
	return m.cyclesToWake
}

// IdleCycles returns the consecutive cycles without work.
func (m *StateMachine) IdleCycles() uint64 {
	return m.idleCycles
}

// AddIdle records cycles in which the component had nothing to do.
func (m *StateMachine) AddIdle(n uint64) {
	m.idleCycles += n
}

// ResetIdle records that the component did useful work.
func (m *StateMachine) ResetIdle() {
	m.idleCycles = 0
}

// Cycles returns the cycles spent in each state so far.
func (m *StateMachine) Cycles() Counters {
	return m.cycles
}

// Tick advances the machine by one cycle of the component and returns true if
// the component may work in this cycle.
func (m *StateMachine) Tick() bool {
	m.cycles[m.state]++

	if m.state == LowPower {
		m.idleCycles++
	}

	if m.cyclesToWake > 0 {
		m.cyclesToWake--
		if m.cyclesToWake == 0 {
			m.Activate()
		}

		return false
	}

	if m.downgrade() {
		return false
	}

	return m.state == Active
}

func (m *StateMachine) downgrade() bool {
	switch m.state {
	case Active:
		if m.idleCycles >= m.timing.LowPowerEnter {
			m.state = LowPower
			m.idleCycles = 0

			return true
		}
	case LowPower:
		if m.timing.EnableIdle && m.idleCycles >= m.timing.IdleEnter {
			m.state = Idle
			m.idleCycles = 0

			return true
		}
	}

	return false
}

// Wake starts a wake-up if the component sleeps. It has no effect on an
// Active component or one that is already waking up.
func (m *StateMachine) Wake() {
	if m.cyclesToWake > 0 {
		return
	}

	switch m.state {
	case LowPower:
		m.cyclesToWake = m.timing.LowPowerExit
	case Idle:
		m.cyclesToWake = m.timing.IdleExit
	default:
		return
	}

	if m.cyclesToWake == 0 {
		m.Activate()
	}
}

// Activate forces the component into the Active state.
func (m *StateMachine) Activate() {
	m.state = Active
	m.cyclesToWake = 0
	m.idleCycles = 0

	if m.onActive != nil {
		m.onActive()
	}
}
