package core

import (
	"log"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// Builder can build CPU cores.
type Builder struct {
	id         int
	sw         Switch
	platform   Platform
	flows      *flow.Table
	app        soc.AppID
	appType    soc.AppType
	governor   soc.Governor
	freqGHz    float64
	optFreqGHz float64
	issueWidth int
	inOrder    bool
	enableIdle bool
	reader     *trace.Reader
	lookahead  *trace.Reader
}

// MakeBuilder creates a builder for a single-issue out-of-order core at
// 900 MHz.
func MakeBuilder() Builder {
	return Builder{
		app:        soc.OtherApp,
		freqGHz:    0.9,
		optFreqGHz: 0.9,
		issueWidth: 1,
	}
}

// WithID sets the core number.
func (b Builder) WithID(id int) Builder {
	b.id = id
	return b
}

// WithSwitch sets the switch that carries the traffic of the core.
func (b Builder) WithSwitch(sw Switch) Builder {
	b.sw = sw
	return b
}

// WithPlatform sets the platform that keeps the frame timing.
func (b Builder) WithPlatform(p Platform) Builder {
	b.platform = p
	return b
}

// WithFlowTable sets the flows used to resolve IP calls.
func (b Builder) WithFlowTable(t *flow.Table) Builder {
	b.flows = t
	return b
}

// WithApp sets the application that the trace was captured from.
func (b Builder) WithApp(app soc.AppID) Builder {
	b.app = app
	return b
}

// WithAppType sets what bounds the progress of the trace.
func (b Builder) WithAppType(t soc.AppType) Builder {
	b.appType = t
	return b
}

// WithGovernor sets the frequency governor in use.
func (b Builder) WithGovernor(g soc.Governor) Builder {
	b.governor = g
	return b
}

// WithFreqGHz sets the initial clock.
func (b Builder) WithFreqGHz(f float64) Builder {
	b.freqGHz = f
	return b
}

// WithOptimalFreqGHz sets the most energy-efficient clock.
func (b Builder) WithOptimalFreqGHz(f float64) Builder {
	b.optFreqGHz = f
	return b
}

// WithIssueWidth sets the number of commit lanes.
func (b Builder) WithIssueWidth(n int) Builder {
	b.issueWidth = n
	return b
}

// WithInOrder makes the core commit strictly in order.
func (b Builder) WithInOrder(inOrder bool) Builder {
	b.inOrder = inOrder
	return b
}

// WithIdleState lets the core sleep deeper than LowPower.
func (b Builder) WithIdleState(enable bool) Builder {
	b.enableIdle = enable
	return b
}

// WithTrace sets the trace to run. The lookahead reader must read the same
// trace. It is used to derive idle stalls and may be nil for core-bound
// applications.
func (b Builder) WithTrace(reader, lookahead *trace.Reader) Builder {
	b.reader = reader
	b.lookahead = lookahead

	return b
}

// Build creates the core.
func (b Builder) Build(name string) *Comp {
	if b.sw == nil {
		log.Panicf("core %s has no switch", name)
	}

	if b.reader == nil {
		log.Panicf("core %s has no trace", name)
	}

	if b.issueWidth < 1 {
		log.Panicf("core %s has issue width %d", name, b.issueWidth)
	}

	flows := b.flows
	if flows == nil {
		flows = flow.MakeBuilder().Build()
	}

	table := power.NewCoreVFTable()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		id:            b.id,
		sw:            b.sw,
		platform:      b.platform,
		flows:         flows,
		app:           b.app,
		appType:       b.appType,
		governor:      b.governor,
		issueWidth:    b.issueWidth,
		inOrder:       b.inOrder,
		reader:        b.reader,
		lookahead:     b.lookahead,
		needLookahead: true,
		scaler: power.NewScaler(table, b.freqGHz,
			table.IndexOf(b.optFreqGHz)),
		rob: make([]entry, 0, MaxTransactions),
	}

	c.scaler.SetInteractive(b.governor == soc.GovernorInteractive)

	timing := power.CoreTiming
	timing.EnableIdle = b.enableIdle
	c.psm = power.NewStateMachine(timing, power.Active, c.onActive)

	if c.appType != soc.CoreBound {
		c.updateIdleRatio()
	}

	return c
}
