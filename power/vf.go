package power

import "math"

// VFPoint is one operating point of a component.
type VFPoint struct {
	Volt    float64
	FreqGHz float64

	// Static is the leakage power in watts at this point.
	Static float64

	// Dynamic is the power in watts when fully busy at this point.
	Dynamic float64
}

// VFTable lists the operating points of a component in ascending frequency.
type VFTable struct {
	points []VFPoint
}

var coreVolts = []float64{
	0.925, 0.9485714286, 0.9721428571, 0.9957142857, 1.0192857143,
	1.0428571429, 1.0664285714, 1.09, 1.1135714286, 1.1371428571,
	1.1607142857, 1.1842857143, 1.255,
}

var coreFreqs = []float64{
	0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2, 1.4, 1.6, 1.8,
}

var ipVolts = []float64{0.835, 0.872, 0.909, 0.946, 0.983, 1.02, 1.057}

var ipFreqs = []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

// The number of operating points of each table.
const (
	NumCoreStates = 13
	NumIPStates   = 7
)

// Core power constants.
const (
	CoreCapacitance = 1.0
	CoreStaticPower = 0.35
)

// NewCoreVFTable builds the 13-point table of the CPU cores.
func NewCoreVFTable() VFTable {
	t := VFTable{}
	for i, v := range coreVolts {
		f := coreFreqs[i]
		t.points = append(t.points, VFPoint{
			Volt:    v,
			FreqGHz: f,
			Static:  CoreStaticPower,
			Dynamic: CoreCapacitance * v * v * f,
		})
	}

	return t
}

// NewIPVFTable builds the 7-point table of an IP block whose switched
// capacitance is capacitance. Static power of IPs does not depend on the
// operating point and is kept out of the table.
func NewIPVFTable(capacitance float64) VFTable {
	t := VFTable{}
	for i, v := range ipVolts {
		f := ipFreqs[i]
		t.points = append(t.points, VFPoint{
			Volt:    v,
			FreqGHz: f,
			Dynamic: capacitance * v * v * f,
		})
	}

	return t
}

// Len returns the number of points.
func (t VFTable) Len() int {
	return len(t.points)
}

// MaxIndex returns the index of the fastest point.
func (t VFTable) MaxIndex() int {
	return len(t.points) - 1
}

// At returns the i-th point. The index is clamped into the table.
func (t VFTable) At(i int) VFPoint {
	return t.points[t.clamp(i)]
}

func (t VFTable) clamp(i int) int {
	if i < 0 {
		return 0
	}

	if i > t.MaxIndex() {
		return t.MaxIndex()
	}

	return i
}

// IndexOf returns the index of the point closest to the given frequency.
func (t VFTable) IndexOf(freqGHz float64) int {
	best := 0
	bestDiff := math.Inf(1)

	for i, p := range t.points {
		d := math.Abs(p.FreqGHz - freqGHz)
		if d < bestDiff {
			best = i
			bestDiff = d
		}
	}

	return best
}

// Contains tells if the frequency is one of the points, up to rounding.
func (t VFTable) Contains(freqGHz float64) bool {
	return math.Abs(t.At(t.IndexOf(freqGHz)).FreqGHz-freqGHz) < 1e-6
}

// IndexForPower returns the first point whose full power stays under the
// budget, or the fastest point if none does.
func (t VFTable) IndexForPower(budget float64) int {
	for i, p := range t.points {
		if p.Static+p.Dynamic < budget {
			return i
		}
	}

	return t.MaxIndex()
}
