// Package core models the CPU cores of the SoC. A core replays an
// instruction trace through a reorder buffer, sends its loads and stores to
// the switch, calls the IP blocks on frame boundaries, and keeps the display
// and audio deadlines of the application it runs.
package core

import (
	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// Limits of the core.
const (
	// MaxTransactions bounds the number of entries in the reorder buffer.
	MaxTransactions = 100

	// ROBSize bounds how many instructions may retire ahead of a stalled
	// head.
	ROBSize = 32

	// DeadlockPeriod is the number of cycles a load or store may wait at the
	// head before it is forced to commit.
	DeadlockPeriod = 100_000
)

// Switch is the switch as seen by a core.
type Switch interface {
	EnqueueCoreMemRequest(coreID int, addr uint64, isRead bool) bool
	IsIPReqLimitReached(ip soc.IPType) bool
	EnqueueCoreIPRequest(req sa.Request)
}

// Platform keeps the per-frame timing of the agents.
type Platform interface {
	MarkIPRequestStarted(coreID int, ip soc.IPType, id int, frameNum int)
	MarkIPRequestCompleted(
		coreID int,
		ip soc.IPType,
		id int,
		frameNum int,
		flowID int,
	)

	// Now returns the current reference tick.
	Now() uint64
}

// Stats holds the counters of a core.
type Stats struct {
	Cycles          uint64
	IdleCycles      uint64
	InstsCommitted  uint64
	MemReqs         uint64
	IPReqs          uint64
	TraceLines      uint64
	MalformedLines  uint64
	OrphanResponses uint64
	Deadlocks       uint64

	IdleStallCycles  uint64
	FPSStallCycles   uint64
	AudioStallCycles uint64
	ROBFullStalls    uint64
	MemFullStalls    uint64
	IPFullStalls     uint64

	FramesDisplayed    uint64
	FramesDropped      uint64
	DroppedByROB       uint64
	DroppedByMem       uint64
	DroppedByIP        uint64
	AudioFramesPlayed  uint64
	AudioFramesDropped uint64

	IPCallsInTrace [soc.NumIPTypes]uint64

	PowerCycles power.Counters
}

// frameStalls counts the stalls of the frame being prepared.
type frameStalls struct {
	rob uint64
	mem uint64
	ip  uint64
}

// profile measures how memory-bound the start of a frame is.
type profile struct {
	on        bool
	startTick uint64
	startCyc  uint64
	robFull   uint64
	memFull   uint64
	active    uint64
}

// Comp is a CPU core.
type Comp struct {
	*sim.ComponentBase

	id         int
	sw         Switch
	platform   Platform
	flows      *flow.Table
	app        soc.AppID
	appType    soc.AppType
	governor   soc.Governor
	issueWidth int
	inOrder    bool

	reader        *trace.Reader
	lookahead     *trace.Reader
	ended         bool
	needLookahead bool
	idleRatio     float64
	readFBLine    bool

	psm    *power.StateMachine
	scaler *power.Scaler

	rob         []entry
	oooExecuted int64
	ticks       uint64

	idleStalls  uint64
	fpsStalls   float64
	audStalls   float64
	lastDCTick  uint64
	lastSNDTick uint64
	deferred    *sa.Request

	frameNum    [soc.NumIPTypes]int
	frames      int
	audioFrames int
	thisFrame   frameStalls
	prof        profile

	instsUs    uint64
	instsMs    uint64
	instsEpoch uint64
	robFullUs  uint64
	robFullMs  uint64
	usMark     power.Counters
	msMark     power.Counters
	lastPower  float64

	stats Stats
}

// ID returns the core number.
func (c *Comp) ID() int {
	return c.id
}

// App returns the application the core runs.
func (c *Comp) App() soc.AppID {
	return c.app
}

// AppType returns what bounds the progress of the core.
func (c *Comp) AppType() soc.AppType {
	return c.appType
}

// IssueWidth returns the number of commit lanes.
func (c *Comp) IssueWidth() int {
	return c.issueWidth
}

// PowerState returns the power state of the core.
func (c *Comp) PowerState() power.State {
	return c.psm.State()
}

// TraceEnded tells if the core has read its whole trace.
func (c *Comp) TraceEnded() bool {
	return c.ended
}

// IsDone tells if the trace has ended and every transaction has retired.
func (c *Comp) IsDone() bool {
	return c.ended && len(c.rob) == 0
}

// ROBOccupancy returns the number of entries in the reorder buffer.
func (c *Comp) ROBOccupancy() int {
	return len(c.rob)
}

// IdleRatio returns the ratio used to turn traced wait times into idle
// stalls.
func (c *Comp) IdleRatio() float64 {
	return c.idleRatio
}

// Stats returns a snapshot of the counters.
func (c *Comp) Stats() Stats {
	s := c.stats
	s.PowerCycles = c.psm.Cycles()

	return s
}

// Tick runs one cycle of the core. It returns true if the core made
// progress.
func (c *Comp) Tick() bool {
	c.ticks++
	c.stats.Cycles++

	if c.ticks%DeadlockPeriod == 0 {
		c.checkDeadlock()
	}

	waking := c.psm.IsWaking()
	c.psm.Tick()

	if waking {
		return false
	}

	if c.idleStalls > 0 {
		c.idleStalls--
		c.stats.IdleStallCycles++

		return false
	}

	if c.fpsStalls > 0 {
		c.waitForFrameSlot()
		return false
	}

	if c.audStalls > 0 {
		c.waitForAudioSlot()
		return false
	}

	c.updateProfile()

	if !c.psm.IsActive() {
		if !c.IsDone() {
			c.psm.Wake()
		}

		return false
	}

	committed := c.stats.InstsCommitted

	if c.inOrder {
		c.inOrderProcess()
	} else {
		c.process()
	}

	progress := c.stats.InstsCommitted > committed

	if !c.ended && c.oooExecuted < ROBSize && len(c.rob) < MaxTransactions {
		c.readLine()
		progress = true
	}

	return progress
}

// onActive runs every time the core finishes waking up.
func (c *Comp) onActive() {
	switch c.governor {
	case soc.GovernorInteractive:
		c.scaler.SetMax()
	case soc.GovernorPowercap:
		c.scaler.SetOptimal()
	}

	if c.platform != nil {
		c.platform.MarkIPRequestStarted(c.id, soc.CPU, c.id, 0)
	}
}

func (c *Comp) idle() {
	c.stats.IdleCycles++
	c.psm.AddIdle(1)
}

func (c *Comp) countCommit() {
	c.stats.InstsCommitted++
	c.instsUs++
	c.instsMs++
	c.instsEpoch++
}

func (c *Comp) countROBFull() {
	c.stats.ROBFullStalls++
	c.thisFrame.rob++
	c.robFullUs++
	c.robFullMs++

	if c.prof.on {
		c.prof.robFull++
	}
}

func (c *Comp) countMemFull() {
	c.stats.MemFullStalls++
	c.thisFrame.mem++

	if c.prof.on {
		c.prof.memFull++
	}
}

func (c *Comp) now() uint64 {
	if c.platform == nil {
		return 0
	}

	return c.platform.Now()
}
