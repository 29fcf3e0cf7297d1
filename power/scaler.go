package power

// InteractiveHold is the number of DVFS epochs during which the interactive
// governor refuses to lower a frequency it has just raised to the maximum.
const InteractiveHold = 5

// A Scaler holds the operating point of one component and moves it around the
// component's VF table.
type Scaler struct {
	table       VFTable
	index       int
	optimal     int
	interactive bool
	holdCounter int
}

// NewScaler creates a Scaler starting at the point closest to freqGHz.
func NewScaler(table VFTable, freqGHz float64, optimal int) *Scaler {
	return &Scaler{
		table:   table,
		index:   table.IndexOf(freqGHz),
		optimal: table.clamp(optimal),
	}
}

// SetInteractive turns on the hold-at-max behavior of the interactive
// governor.
func (s *Scaler) SetInteractive(on bool) {
	s.interactive = on
}

// Table returns the VF table.
func (s *Scaler) Table() VFTable {
	return s.table
}

// Index returns the current index.
func (s *Scaler) Index() int {
	return s.index
}

// Optimal returns the index of the most energy-efficient point.
func (s *Scaler) Optimal() int {
	return s.optimal
}

// Point returns the current operating point.
func (s *Scaler) Point() VFPoint {
	return s.table.At(s.index)
}

// FreqGHz returns the current frequency.
func (s *Scaler) FreqGHz() float64 {
	return s.Point().FreqGHz
}

// SetIndex moves to the given index, clamped into the table.
func (s *Scaler) SetIndex(i int) {
	s.index = s.table.clamp(i)
}

// SetFreq snaps to the point closest to freqGHz.
func (s *Scaler) SetFreq(freqGHz float64) {
	s.index = s.table.IndexOf(freqGHz)
}

// Inc raises the frequency by a number of steps.
func (s *Scaler) Inc(steps int) {
	s.SetIndex(s.index + steps)
}

// Dec lowers the frequency by a number of steps. Under the interactive
// governor, a recent jump to the maximum blocks the decrease.
func (s *Scaler) Dec(steps int) {
	if s.interactive && s.holdCounter > 0 {
		return
	}

	if s.index > steps-1 {
		s.index -= steps
	}
}

// SetMax jumps to the fastest point.
func (s *Scaler) SetMax() {
	s.index = s.table.MaxIndex()

	if s.interactive {
		s.holdCounter = InteractiveHold
	}
}

// SetOptimal jumps to the most energy-efficient point.
func (s *Scaler) SetOptimal() {
	s.index = s.optimal
}

// SetForPower picks the first point whose power fits the budget.
func (s *Scaler) SetForPower(budget float64) {
	s.index = s.table.IndexForPower(budget)
}

// Epoch is called once per DVFS period.
func (s *Scaler) Epoch() {
	if s.interactive && s.holdCounter > 0 {
		s.holdCounter--
	}
}

// TimeEst scales an execution time measured at oldFreq to newFreq.
func TimeEst(oldTime, oldFreq, newFreq float64) float64 {
	return oldTime * oldFreq / newFreq
}
