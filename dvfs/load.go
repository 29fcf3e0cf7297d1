package dvfs

import (
	"math"

	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/soc"
)

// Load thresholds of the utilization-driven governors.
const (
	highLoad    = 0.6
	coreLowLoad = 0.2
	ipLowLoad   = 0.3

	memScaleCoreLoad = 0.1
	memScaleIPHigh   = 0.5
	memScaleIPLow    = 0.1
)

// loadBased follows the utilization of every component, the way the
// ondemand, interactive, building, and powercap governors do.
type loadBased struct {
	governor soc.Governor
}

func (p loadBased) Init(s *System) {
	if p.governor == soc.GovernorPowercap {
		return
	}

	s.setAll(pointMax, pointMax, 0.9)
}

func (p loadBased) Update(s *System, ep Epoch) {
	for _, c := range s.cores {
		load := c.LoadInLastEpoch(ep.Last[soc.CPU].TimeMs)

		switch {
		case load > highLoad:
			switch p.governor {
			case soc.GovernorBuilding:
				c.Scaler().Inc(2)
			case soc.GovernorPowercap:
				c.SetMaxAllowedFreq(ep.PowerBudget)
			default:
				c.Scaler().SetMax()
			}
		case load < coreLowLoad:
			c.Scaler().Dec(1)
		}
	}

	for _, b := range s.ips {
		t := b.Type()
		if !isScalable(t) || ep.Last[t].EnergyMJ == 0 {
			continue
		}

		load := b.LoadInLastEpoch(ep.Last[t].TimeMs)
		if math.IsNaN(load) {
			continue
		}

		switch {
		case load > highLoad:
			switch p.governor {
			case soc.GovernorBuilding:
				b.Scaler().Inc(1)
			case soc.GovernorPowercap:
				b.SetMaxAllowedFreq(ep.PowerBudget)
			default:
				b.Scaler().SetMax()
			}
		case load < ipLowLoad:
			b.Scaler().Dec(1)
		}
	}
}

// memScale drives the cores and the IPs to either end of their range by load
// and lets the memory absorb the slack.
type memScale struct{}

func (memScale) Init(*System) {}

func (memScale) Update(s *System, ep Epoch) {
	for _, c := range s.cores {
		if c.LoadInLastEpoch(ep.Last[soc.CPU].TimeMs) >= memScaleCoreLoad {
			c.Scaler().SetMax()
		} else {
			c.Scaler().SetIndex(0)
		}
	}

	for _, b := range s.ips {
		t := b.Type()
		if !isScalable(t) {
			continue
		}

		load := b.LoadInLastEpoch(ep.Last[t].TimeMs)

		switch {
		case load > memScaleIPHigh:
			b.Scaler().SetMax()
		case load < memScaleIPLow:
			b.Scaler().SetIndex(0)
		}
	}

	slack := ep.Slack
	s.scaleMemory(ep, &slack, mem.MinFreqGHz)
}
