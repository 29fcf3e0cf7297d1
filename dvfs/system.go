package dvfs

import (
	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

// System is what the governors control.
type System struct {
	app   soc.AppID
	cores []Core
	ips   []IP
	mem   Memory
	flows *flow.Table
	chars *flow.IPChars
}

// flow returns the IP types of the first flow of the foreground app.
func (s *System) flow() []soc.IPType {
	return s.flows.IPsInFlow(s.app, 0)
}

// ip returns the first block of a type, or nil.
func (s *System) ip(t soc.IPType) IP {
	for _, b := range s.ips {
		if b.Type() == t {
			return b
		}
	}

	return nil
}

// isScalable tells if the governors may move the clock of an IP type.
func isScalable(t soc.IPType) bool {
	return t.IsAccelerator() || t == soc.GPU
}

// A target names an operating point, either by rule or by frequency in GHz.
type target float64

const (
	keep     target = 0
	pointMax target = -1
	pointOpt target = -2
)

func (t target) apply(s *power.Scaler) {
	switch t {
	case keep:
	case pointMax:
		s.SetMax()
	case pointOpt:
		s.SetOptimal()
	default:
		s.SetFreq(float64(t))
	}
}

func (t target) applyMem(m Memory) {
	switch t {
	case keep:
	case pointMax:
		m.SetMax()
	case pointOpt:
		m.SetOptimal()
	default:
		m.SetFreq(float64(t))
	}
}

// setAll moves every core, every scalable IP, and the memory.
func (s *System) setAll(core, ip, mem target) {
	for _, c := range s.cores {
		core.apply(c.Scaler())
	}

	for _, b := range s.ips {
		if isScalable(b.Type()) {
			ip.apply(b.Scaler())
		}
	}

	mem.applyMem(s.mem)
}
