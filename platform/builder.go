package platform

import (
	"errors"
	"fmt"

	"github.com/sarchlab/gemdroid/core"
	"github.com/sarchlab/gemdroid/dvfs"
	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/ip"
	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// ErrNoCoreTrace is returned when a platform is built without any CPU
// trace.
var ErrNoCoreTrace = errors.New("at least one CPU trace is required")

// A CoreTrace is the trace that one core replays. The name of the trace
// tells which app it was captured from. The lookahead reader reads the same
// trace independently.
type CoreTrace struct {
	Name      string
	Reader    *trace.Reader
	Lookahead *trace.Reader
}

// Builder can build platforms.
type Builder struct {
	engine        sim.Engine
	coreTraces    []CoreTrace
	gpuTrace      *trace.Reader
	governor      soc.Governor
	timing        soc.GovernorTiming
	coreFreqGHz   float64
	devFreqGHz    float64
	ipFreqGHz     float64
	memFreqGHz    float64
	issueWidth    int
	inOrder       bool
	enableIdle    bool
	numInstances  int
	perfectMemory bool
	memChannels   int
	memLatencyNs  float64
	memQueueDepth int
	flows         *flow.Table
	chars         *flow.IPChars
	maxTicks      uint64
}

// MakeBuilder creates a builder with the default parameters of the SoC.
func MakeBuilder() Builder {
	return Builder{
		governor:      soc.GovernorOndemand,
		timing:        soc.Timing1ms,
		coreFreqGHz:   0.9,
		devFreqGHz:    0.4,
		ipFreqGHz:     0.3,
		memFreqGHz:    0.5,
		issueWidth:    1,
		numInstances:  1,
		memChannels:   1,
		memLatencyNs:  50,
		memQueueDepth: 32,
	}
}

// WithEngine sets the engine that schedules the ticks of the platform.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithCoreTraces sets the traces of the cores, one core per trace.
func (b Builder) WithCoreTraces(traces ...CoreTrace) Builder {
	b.coreTraces = traces
	return b
}

// WithGPUTrace enables the GPU and the display controller it renders into.
func (b Builder) WithGPUTrace(r *trace.Reader) Builder {
	b.gpuTrace = r
	return b
}

// WithGovernor sets the frequency governor.
func (b Builder) WithGovernor(g soc.Governor) Builder {
	b.governor = g
	return b
}

// WithGovernorTiming sets how often the governor runs.
func (b Builder) WithGovernorTiming(t soc.GovernorTiming) Builder {
	b.timing = t
	return b
}

// WithCoreFreqGHz sets the initial clock of the cores.
func (b Builder) WithCoreFreqGHz(f float64) Builder {
	b.coreFreqGHz = f
	return b
}

// WithDevFreqGHz sets the clock of the I/O devices.
func (b Builder) WithDevFreqGHz(f float64) Builder {
	b.devFreqGHz = f
	return b
}

// WithIPFreqGHz sets the initial clock of the accelerators and the GPU.
func (b Builder) WithIPFreqGHz(f float64) Builder {
	b.ipFreqGHz = f
	return b
}

// WithMemFreqGHz sets the initial clock of the memory.
func (b Builder) WithMemFreqGHz(f float64) Builder {
	b.memFreqGHz = f
	return b
}

// WithIssueWidth sets the commit lanes of each core.
func (b Builder) WithIssueWidth(n int) Builder {
	b.issueWidth = n
	return b
}

// WithInOrder makes the cores commit in order.
func (b Builder) WithInOrder(inOrder bool) Builder {
	b.inOrder = inOrder
	return b
}

// WithCoreIdleState lets idle cores drop to the Idle power state.
func (b Builder) WithCoreIdleState(enable bool) Builder {
	b.enableIdle = enable
	return b
}

// WithNumIPInstances sets the number of instances of each IP type.
func (b Builder) WithNumIPInstances(n int) Builder {
	b.numInstances = n
	return b
}

// WithPerfectMemory makes the memory answer every request at once.
func (b Builder) WithPerfectMemory(perfect bool) Builder {
	b.perfectMemory = perfect
	return b
}

// WithMemChannels sets the number of DRAM channels.
func (b Builder) WithMemChannels(n int) Builder {
	b.memChannels = n
	return b
}

// WithMemLatencyNs sets the access latency of the DRAM.
func (b Builder) WithMemLatencyNs(ns float64) Builder {
	b.memLatencyNs = ns
	return b
}

// WithMemQueueDepth sets the transaction queue depth of each DRAM channel.
func (b Builder) WithMemQueueDepth(n int) Builder {
	b.memQueueDepth = n
	return b
}

// WithFlowTable sets the flows of the apps.
func (b Builder) WithFlowTable(t *flow.Table) Builder {
	b.flows = t
	return b
}

// WithIPChars sets the characterization of the IPs.
func (b Builder) WithIPChars(c *flow.IPChars) Builder {
	b.chars = c
	return b
}

// WithMaxTicks stops the platform after the given number of reference
// ticks. Zero runs until every trace ends.
func (b Builder) WithMaxTicks(n uint64) Builder {
	b.maxTicks = n
	return b
}

// Build creates the platform.
func (b Builder) Build(name string) (*Platform, error) {
	if len(b.coreTraces) == 0 {
		return nil, ErrNoCoreTrace
	}

	if len(b.coreTraces) > soc.MaxCPUs {
		return nil, fmt.Errorf("%d CPU traces given, at most %d supported",
			len(b.coreTraces), soc.MaxCPUs)
	}

	if b.numInstances < 1 || b.numInstances > soc.MaxIPInstances {
		return nil, fmt.Errorf("%d IP instances requested, 1 to %d supported",
			b.numInstances, soc.MaxIPInstances)
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	p := &Platform{
		flows:        b.flows,
		numInstances: b.numInstances,
		maxTicks:     b.maxTicks,
	}
	p.TickingComponent = sim.NewTickingComponent(name, engine, sim.MHz, p)

	if p.flows == nil {
		p.flows = flow.MakeBuilder().Build()
	}

	chars := b.chars
	if chars == nil {
		chars = flow.DefaultIPChars()
	}

	b.buildMemory(p, name)
	b.buildCores(p, name, chars)
	b.buildBlocks(p, name, chars)

	if err := b.buildGovernor(p, chars); err != nil {
		return nil, err
	}

	p.coreMult = make([]float64, len(p.cores))
	p.coreLast = make([]uint64, len(p.cores))
	p.blockMult = make([]float64, len(p.ticked))
	p.blockLast = make([]uint64, len(p.ticked))
	p.updateMultipliers()

	return p, nil
}

func (b Builder) buildMemory(p *Platform, name string) {
	mb := mem.MakeBuilder().
		WithNumChannels(b.memChannels).
		WithQueueDepth(b.memQueueDepth).
		WithLatencyNs(b.memLatencyNs).
		WithFreqGHz(b.memFreqGHz)
	if b.perfectMemory {
		mb = mb.WithPerfectMemory()
	}

	p.memory = mb.Build(name + ".Memory")
	p.lastMemFreq = p.memory.FreqGHz()

	p.sw = sa.MakeBuilder().
		WithMemory(p.memory).
		WithPlatform(p).
		WithFlowTable(p.flows).
		WithPerfectMemory(b.perfectMemory).
		Build(name + ".SA")

	p.memory.SetResponseSink(p.sw)
}

func (b Builder) buildCores(p *Platform, name string, chars *flow.IPChars) {
	table := power.NewCoreVFTable()
	opt := table.At(chars.OptimalIndex[soc.CPU]).FreqGHz

	for i, t := range b.coreTraces {
		app := soc.AppIDFromTrace(t.Name)

		c := core.MakeBuilder().
			WithID(i).
			WithSwitch(p.sw).
			WithPlatform(p).
			WithFlowTable(p.flows).
			WithApp(app).
			WithAppType(soc.AppTypeFromTrace(t.Name)).
			WithGovernor(b.governor).
			WithFreqGHz(b.coreFreqGHz).
			WithOptimalFreqGHz(opt).
			WithIssueWidth(b.issueWidth).
			WithInOrder(b.inOrder).
			WithIdleState(b.enableIdle).
			WithTrace(t.Reader, t.Lookahead).
			Build(fmt.Sprintf("%s.Core[%d]", name, i))

		p.cores = append(p.cores, c)
		p.apps = append(p.apps, app)
	}
}

func (b Builder) buildBlocks(p *Platform, name string, chars *flow.IPChars) {
	for _, t := range soc.AllIPs() {
		for j := 0; j < b.numInstances; j++ {
			blk := b.buildBlock(p, name, chars, t, j, nil)
			p.ticked = append(p.ticked, blk)
		}
	}

	dma := b.buildBlock(p, name, chars, soc.DMA, 0, nil)
	p.dma = dma
	p.ticked = append(p.ticked, dma)

	if b.gpuTrace == nil {
		return
	}

	p.gpu = b.buildBlock(p, name, chars, soc.GPU, 0, b.gpuTrace)
	p.gpuDC = b.buildBlock(p, name, chars, soc.DC, b.numInstances, nil)
}

func (b Builder) buildBlock(
	p *Platform,
	name string,
	chars *flow.IPChars,
	t soc.IPType,
	id int,
	gpuTrace *trace.Reader,
) *ip.Block {
	freq := b.ipFreqGHz
	if t.IsDevice() {
		freq = b.devFreqGHz
	}

	table := power.NewIPVFTable(ip.ParamsOf(t).Capacitance())
	opt := table.At(chars.OptimalIndex[t]).FreqGHz

	blk := ip.MakeBuilder().
		WithType(t).
		WithID(id).
		WithSwitch(p.sw).
		WithPlatform(p).
		WithGovernor(b.governor).
		WithFreqGHz(freq).
		WithOptimalFreqGHz(opt).
		WithTrace(gpuTrace).
		Build(fmt.Sprintf("%s.%s[%d]", name, t, id))

	p.ips[t] = append(p.ips[t], blk)
	p.blocks = append(p.blocks, blk)

	return blk
}

func (b Builder) buildGovernor(p *Platform, chars *flow.IPChars) error {
	cores := make([]dvfs.Core, 0, len(p.cores))
	for _, c := range p.cores {
		cores = append(cores, c)
	}

	ips := make([]dvfs.IP, 0, len(p.blocks))
	for _, blk := range p.blocks {
		ips = append(ips, blk)
	}

	ctrl, err := dvfs.MakeBuilder().
		WithGovernor(b.governor).
		WithApp(p.apps[0]).
		WithCores(cores...).
		WithIPs(ips...).
		WithMemory(p.memory).
		WithFlowTable(p.flows).
		WithIPChars(chars).
		Build()
	if err != nil {
		return fmt.Errorf("building the governor: %w", err)
	}

	ctrl.Init()
	p.governor = ctrl

	if ctrl.Enabled() {
		p.dvfsPeriod = b.timing.Period()
	}

	return nil
}
