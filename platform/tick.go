package platform

import (
	"math"

	"github.com/sarchlab/gemdroid/dvfs"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Tick advances the platform by one microsecond of reference ticks. It
// returns false once the platform is done.
func (p *Platform) Tick() bool {
	for i := uint64(0); i < soc.TicksPerMicroSec; i++ {
		if p.IsDone() {
			return false
		}

		p.step()
	}

	return !p.IsDone()
}

// step runs one reference tick. The bookkeeping comes first, then every
// component whose clock has a cycle due: the cores, the IP blocks, the GPU
// with its display controller, and last the switch with the memory.
func (p *Platform) step() {
	p.ticks++
	p.stats.Ticks = p.ticks

	if p.ticks-p.msLast >= soc.TicksPerMilliSec {
		p.stats.MilliSecs++
		p.sampleMilliSecPower()
		p.memory.ResetAppReqs()
		p.msLast = p.ticks
	}

	if p.ticks-p.usLast >= soc.TicksPerMicroSec {
		p.sampleMicroSecPower()
		p.usLast = p.ticks
	}

	if p.ticks-p.slackLast >= slackPeriod {
		p.checkSlack()
		p.slackLast = p.ticks
	}

	if p.dvfsPeriod > 0 && p.ticks-p.dvfsLast >= p.dvfsPeriod {
		p.updateDVFS()
		p.dvfsLast = p.ticks
	}

	for i, c := range p.cores {
		if p.due(p.coreLast[i], p.coreMult[i]) {
			c.Tick()
			p.coreLast[i] = p.ticks
		}
	}

	for i, b := range p.ticked {
		if p.due(p.blockLast[i], p.blockMult[i]) {
			b.Tick()
			p.blockLast[i] = p.ticks
		}
	}

	if p.gpu != nil && p.due(p.gpuLast, p.gpuMult) {
		p.gpu.Tick()
		p.gpuDC.Tick()
		p.gpuLast = p.ticks
	}

	if p.due(p.memLast, p.memMult) {
		p.sw.Tick()
		p.memory.Tick(p.ticks)
		p.memLast = p.ticks
	}
}

func (p *Platform) due(last uint64, mult float64) bool {
	return float64(p.ticks-last) >= mult
}

// checkSlack counts the display intervals and the ones the foreground app
// missed.
func (p *Platform) checkSlack() {
	slack := p.Slack(0)

	p.stats.FramesToBeShown++
	if slack < -safetyNetMs {
		p.stats.FramesMissed++
	}

	p.stats.LastSlack = slack

	second := math.NaN()
	if p.AppOf(0).HasSecondFlow() {
		second = p.Slack(1)
	}

	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosSlackSampled,
		Item: SlackSample{
			TimeMs:          p.timeMs(),
			Slack:           slack,
			SecondSlack:     second,
			FramesToBeShown: p.stats.FramesToBeShown,
			FramesMissed:    p.stats.FramesMissed,
		},
	})
}

// updateDVFS hands the measurements of the period to the governor and picks
// up the clocks it chose.
func (p *Platform) updateDVFS() {
	memStats := p.memory.Stats()

	p.governor.Update(dvfs.Epoch{
		Slack:       p.Slack(0),
		PowerBudget: p.CoordinatedPower(),
		PeriodTicks: p.dvfsPeriod,
		LastMemFreq: p.lastMemFreq,
		Last:        p.last,
		AppMemReqs:  memStats.AppReqs,
	})

	p.stats.DVFSUpdates = p.governor.Updates()
	p.stats.BWAttainedByCPU = bandwidthAttained(
		memStats.TypeReqs[soc.CPU], p.last[soc.CPU].TimeMs)

	p.updateMultipliers()
	p.memory.ResetTypeReqs()
}

// bandwidthAttained returns the GB/s that reqs cache lines make over a frame
// of timeMs.
func bandwidthAttained(reqs uint64, timeMs float64) float64 {
	if timeMs == 0 {
		return 0
	}

	return float64(reqs) * soc.CacheLineSize / 1e6 / timeMs
}

func (p *Platform) timeMs() float64 {
	return float64(p.ticks) / float64(soc.TicksPerMilliSec)
}
