// Package platform puts the SoC together. It owns the cores, the IP blocks,
// the switch, the memory, and the governor, drives all of them from the
// 10 GHz reference clock, and keeps the per-frame timing and the power
// accounting the governors rely on.
package platform

import (
	"log"
	"math"

	"github.com/sarchlab/gemdroid/core"
	"github.com/sarchlab/gemdroid/dvfs"
	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/ip"
	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// maxInstances leaves room for the display controller that serves the GPU
// next to the regular instances.
const maxInstances = soc.MaxIPInstances + 1

// Periods of the platform bookkeeping, in reference ticks.
const (
	slackPeriod = 16 * soc.TicksPerMilliSec

	// safetyNetMs is how late a frame may be before it counts as missed.
	safetyNetMs = 1.0

	// powerCapW is the power budget of the powercap governor.
	powerCapW = 7.0

	platformIdleW     = 0.3
	platformActivityW = 0.2
	screenW           = 0.3
)

// Hook positions of the platform.
var (
	// HookPosPowerSampled is invoked at the end of every millisecond. The
	// item is a PowerSample.
	HookPosPowerSampled = &sim.HookPos{Name: "Power Sampled"}

	// HookPosSlackSampled is invoked every 16 ms. The item is a
	// SlackSample.
	HookPosSlackSampled = &sim.HookPos{Name: "Slack Sampled"}
)

// PowerSample is the power of the SoC in one millisecond, in watts.
type PowerSample struct {
	TimeMs      float64
	Core        float64
	Device      float64
	IP          float64
	GPU         float64
	SA          float64
	Memory      float64
	Platform    float64
	Total       float64
	MemFreqGHz  float64
	CoreFreqGHz float64
}

// SlackSample is the slack of the foreground app at a display interval.
type SlackSample struct {
	TimeMs float64

	// Slack is the frame deadline minus the time the first flow took, in
	// milliseconds. SecondSlack covers the second flow and is NaN if the app
	// has only one.
	Slack       float64
	SecondSlack float64

	FramesToBeShown uint64
	FramesMissed    uint64
}

// frameTiming follows the frame an agent is working on.
type frameTiming struct {
	started    bool
	startTick  uint64
	powerSum   float64
	powerCount int
}

func (t *frameTiming) addPower(w float64) {
	if !t.started {
		return
	}

	t.powerSum += w
	t.powerCount++
}

func (t *frameTiming) avgPower() float64 {
	if t.powerCount == 0 {
		return 0
	}

	return t.powerSum / float64(t.powerCount)
}

// Platform is the whole SoC.
type Platform struct {
	*sim.TickingComponent

	cores    []*core.Comp
	apps     []soc.AppID
	ips      [soc.NumIPTypes][]*ip.Block
	blocks   []*ip.Block
	ticked   []*ip.Block
	gpu      *ip.Block
	gpuDC    *ip.Block
	dma      *ip.Block
	sw       *sa.Comp
	memory   *mem.Memory
	governor *dvfs.Controller
	flows    *flow.Table

	numInstances int
	dvfsPeriod   uint64
	maxTicks     uint64

	ticks     uint64
	coreMult  []float64
	coreLast  []uint64
	blockMult []float64
	blockLast []uint64
	gpuMult   float64
	gpuLast   uint64
	memMult   float64
	memLast   uint64

	msLast    uint64
	usLast    uint64
	slackLast uint64
	dvfsLast  uint64

	timing           [soc.NumIPTypes][maxInstances]frameTiming
	last             [soc.NumIPTypes]dvfs.Frame
	lastMemFreq      float64
	powerInLastEpoch float64

	stats Stats
}

// Run replays the traces until they end or the tick limit is reached.
func (p *Platform) Run() error {
	p.TickLater()

	if err := p.Engine.Run(); err != nil {
		return err
	}

	p.Engine.Finished()

	return nil
}

// Now returns the current reference tick.
func (p *Platform) Now() uint64 {
	return p.ticks
}

// Cores returns the CPU cores.
func (p *Platform) Cores() []*core.Comp {
	return p.cores
}

// Blocks returns every IP block in tick order.
func (p *Platform) Blocks() []*ip.Block {
	return p.blocks
}

// Block returns an instance of an IP type, or nil.
func (p *Platform) Block(t soc.IPType, id int) *ip.Block {
	if !t.Valid() || id < 0 || id >= len(p.ips[t]) {
		return nil
	}

	return p.ips[t][id]
}

// Switch returns the switch/arbiter.
func (p *Platform) Switch() *sa.Comp {
	return p.sw
}

// Memory returns the main memory.
func (p *Platform) Memory() *mem.Memory {
	return p.memory
}

// Governor returns the DVFS controller.
func (p *Platform) Governor() *dvfs.Controller {
	return p.governor
}

// AppOf returns the application that runs on a core.
func (p *Platform) AppOf(coreID int) soc.AppID {
	if coreID < 0 || coreID >= len(p.apps) {
		return soc.OtherApp
	}

	return p.apps[coreID]
}

// LastFrame returns what was measured about the last frame an IP type
// finished.
func (p *Platform) LastFrame(t soc.IPType) dvfs.Frame {
	return p.last[t]
}

// CoordinatedPower returns the power left under the cap after the last
// millisecond.
func (p *Platform) CoordinatedPower() float64 {
	return powerCapW - p.powerInLastEpoch
}

// Slack returns the frame deadline minus the time that a flow of the
// foreground app took in its last frame.
func (p *Platform) Slack(flowIdx int) float64 {
	total := 0.0
	for _, t := range p.flows.IPsInFlow(p.AppOf(0), flowIdx) {
		total += p.last[t].TimeMs
	}

	return soc.FPSDeadlineMs - total
}

// IsDone tells if every trace has been replayed or the tick limit is
// reached.
func (p *Platform) IsDone() bool {
	if p.maxTicks > 0 && p.ticks >= p.maxTicks {
		return true
	}

	for _, c := range p.cores {
		if !c.IsDone() {
			return false
		}
	}

	return p.gpu == nil || p.gpu.TraceEnded()
}

// EnqueueIPReq hands a request to the IP instance that serves it. Frames
// written by the GPU go to the display controller of the GPU.
func (p *Platform) EnqueueIPReq(req sa.Request) bool {
	switch {
	case req.Target == soc.DC && req.Sender == soc.GPU && p.gpuDC != nil:
		return p.gpuDC.EnqueueIPReq(req)
	case req.Target == soc.DMA && p.dma != nil:
		return p.dma.EnqueueIPReq(req)
	}

	b := p.Block(req.Target, 0)
	if b == nil {
		log.Panicf("%s: no IP block serves %s", p.Name(), req)
	}

	return b.EnqueueIPReq(req)
}

// MemCoreResponse delivers a memory response to a core.
func (p *Platform) MemCoreResponse(coreID int, addr uint64, isRead bool) bool {
	if coreID < 0 || coreID >= len(p.cores) {
		log.Panicf("%s: response for unknown core %d", p.Name(), coreID)
	}

	return p.cores[coreID].MemResponse(addr, isRead)
}

// MemIPResponse delivers a memory response to an IP block.
func (p *Platform) MemIPResponse(
	t soc.IPType,
	id int,
	addr uint64,
	isRead bool,
) bool {
	b := p.Block(t, id)
	if b == nil {
		log.Panicf("%s: response for unknown IP %s_%d", p.Name(), t, id)
	}

	b.MemResponse(addr, isRead)

	return true
}

// MarkIPRequestStarted records that an agent started working on a frame.
func (p *Platform) MarkIPRequestStarted(
	coreID int,
	t soc.IPType,
	id int,
	frameNum int,
) {
	ft := p.frameTiming(t, id)
	ft.started = true
	ft.startTick = p.ticks
}

// MarkIPRequestCompleted records that an agent finished a frame. The time,
// the average power, and the clock of the frame become the measurement the
// governors use for the agent type. A completion without a start is
// ignored.
func (p *Platform) MarkIPRequestCompleted(
	coreID int,
	t soc.IPType,
	id int,
	frameNum int,
	flowID int,
) {
	ft := p.frameTiming(t, id)
	if !ft.started {
		return
	}

	took := p.ticks - ft.startTick
	ft.started = false
	p.stats.CyclesPerFrame[t][id] = took

	timeMs := float64(took) / float64(soc.TicksPerMilliSec)
	pwr := ft.avgPower()

	var freq float64
	if t == soc.CPU {
		freq = p.cores[coreID].FreqGHz()
	} else if b := p.Block(t, id); b != nil {
		freq = b.FreqGHz()
	}

	p.lastMemFreq = p.memory.FreqGHz()
	p.last[t] = dvfs.Frame{
		TimeMs:   timeMs,
		EnergyMJ: pwr * timeMs,
		FreqGHz:  freq,
	}

	ft.powerSum = 0
	ft.powerCount = 0
}

func (p *Platform) frameTiming(t soc.IPType, id int) *frameTiming {
	if !t.Valid() || id < 0 || id >= maxInstances {
		log.Panicf("%s: no frame timing for %s_%d", p.Name(), t, id)
	}

	return &p.timing[t][id]
}

func multiplier(freqGHz float64) float64 {
	if freqGHz <= 0 || math.IsNaN(freqGHz) {
		log.Panicf("invalid clock %f GHz", freqGHz)
	}

	return sim.Freq(freqGHz * float64(sim.GHz)).Multiplier(soc.RefFreq)
}

// updateMultipliers turns the clocks of the components into the number of
// reference ticks between two of their cycles.
func (p *Platform) updateMultipliers() {
	for i, c := range p.cores {
		p.coreMult[i] = multiplier(c.FreqGHz())
	}

	for i, b := range p.ticked {
		p.blockMult[i] = multiplier(b.FreqGHz())
	}

	if p.gpu != nil {
		p.gpuMult = multiplier(p.gpu.FreqGHz())
	}

	p.memMult = multiplier(p.memory.FreqGHz())
}
