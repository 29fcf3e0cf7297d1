package platform

import (
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// sampleMicroSecPower adds the power of the last microsecond to the frame
// every agent is working on.
func (p *Platform) sampleMicroSecPower() {
	for i, c := range p.cores {
		w := c.PowerIn1us()
		p.timing[soc.CPU][i].addPower(w)
	}

	for _, b := range p.blocks {
		w := b.PowerIn1us()
		p.timing[b.Type()][b.ID()].addPower(w)
	}
}

// sampleMilliSecPower adds up the power of the SoC in the last millisecond
// and charges the energy to the components.
func (p *Platform) sampleMilliSecPower() {
	s := PowerSample{
		TimeMs:     p.timeMs(),
		Platform:   platformIdleW + platformActivityW*p.sw.Activity() + screenW,
		MemFreqGHz: p.memory.FreqGHz(),
	}

	for i, c := range p.cores {
		w := c.PowerIn1ms()
		s.Core += w
		p.stats.CoreEnergyMJ[i] += w
	}

	if len(p.cores) > 0 {
		s.CoreFreqGHz = p.cores[0].FreqGHz()
	}

	for _, b := range p.blocks {
		w := b.PowerIn1ms()
		p.stats.IPEnergyMJ[b.Type()] += w

		switch {
		case b == p.gpuDC:
			s.IP += w
		case b.Type() == soc.GPU:
			s.GPU += w
		case b.Type().IsDevice():
			s.Device += w
		default:
			s.IP += w
		}
	}

	s.SA = p.sw.PowerIn1ms()
	s.Memory = p.memory.PowerIn(soc.TicksPerMilliSec)
	s.Total = s.Core + s.Device + s.IP + s.GPU + s.SA + s.Memory + s.Platform

	p.stats.PlatformEnergyMJ += s.Platform + s.SA
	p.stats.MemEnergyMJ += s.Memory
	p.stats.LastPowerW = s.Total
	p.powerInLastEpoch = s.Total

	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPowerSampled,
		Item:   s,
	})
}
