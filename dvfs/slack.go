package dvfs

import (
	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/soc"
)

// fixedPriority hands the slack of the last frame out in a fixed order:
// the memory first, then the stages of the first flow in flow order. Each
// one takes what it can and passes the rest on.
type fixedPriority struct{}

func (fixedPriority) Init(s *System) {
	s.setAll(pointOpt, pointOpt, pointOpt)
}

func (fixedPriority) Update(s *System, ep Epoch) {
	slack := ep.Slack
	s.scaleMemory(ep, &slack, mem.MinFreqGHz)

	for _, t := range s.flow() {
		if ep.Last[t].EnergyMJ == 0 {
			continue
		}

		switch {
		case t == soc.CPU:
			slack = s.scaleCore(ep, slack)
		case isScalable(t):
			slack = s.scaleIP(ep, t, slack)
		}
	}
}

// coreOracle lets core 0 alone follow the slack.
type coreOracle struct{}

func (coreOracle) Init(s *System) {
	s.setAll(pointMax, pointMax, 0.9)
}

func (coreOracle) Update(s *System, ep Epoch) {
	for _, t := range s.flow() {
		if t == soc.CPU && ep.Last[t].EnergyMJ != 0 {
			s.scaleCore(ep, ep.Slack)
		}
	}
}

// scaleCore moves core 0 to the frequency the slack allows and returns the
// slack left.
func (s *System) scaleCore(ep Epoch, slack float64) float64 {
	c := s.cores[0]
	scaled := s.memScaledTimeCPU(ep, ep.LastMemFreq, s.mem.FreqGHz())

	freq, left := c.FreqForSlackOptimal(ep.Last[soc.CPU].TimeMs, scaled, slack)
	c.Scaler().SetFreq(freq)

	return left
}

// scaleIP moves the block of an IP type to the frequency the slack allows
// and returns the slack left.
func (s *System) scaleIP(ep Epoch, t soc.IPType, slack float64) float64 {
	b := s.ip(t)
	if b == nil {
		return slack
	}

	scaled := s.memScaledTime(ep, t, s.availBW(ep, 0), b.Scaler().Index())

	freq, left := b.FreqForSlackOptimal(ep.Last[t].TimeMs, scaled, slack)
	b.Scaler().SetFreq(freq)

	return left
}
