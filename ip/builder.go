package ip

import (
	"log"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// Builder can build IP blocks.
type Builder struct {
	ipType     soc.IPType
	id         int
	sw         Switch
	platform   Platform
	governor   soc.Governor
	freqGHz    float64
	optFreqGHz float64
	gpuTrace   *trace.Reader
}

// MakeBuilder creates a builder for a video decoder at 300 MHz.
func MakeBuilder() Builder {
	return Builder{
		ipType:  soc.VD,
		freqGHz: 0.3,
	}
}

// WithType sets the IP type, which also decides the kind of the block.
func (b Builder) WithType(t soc.IPType) Builder {
	b.ipType = t
	return b
}

// WithID sets the instance number.
func (b Builder) WithID(id int) Builder {
	b.id = id
	return b
}

// WithSwitch sets the switch that carries the traffic of the block.
func (b Builder) WithSwitch(sw Switch) Builder {
	b.sw = sw
	return b
}

// WithPlatform sets the platform that keeps the frame timing.
func (b Builder) WithPlatform(p Platform) Builder {
	b.platform = p
	return b
}

// WithGovernor sets the frequency governor in use. Some governors change the
// frequency of an accelerator when it wakes up.
func (b Builder) WithGovernor(g soc.Governor) Builder {
	b.governor = g
	return b
}

// WithFreqGHz sets the initial clock.
func (b Builder) WithFreqGHz(f float64) Builder {
	b.freqGHz = f
	return b
}

// WithOptimalFreqGHz overrides the most energy-efficient clock of the type.
func (b Builder) WithOptimalFreqGHz(f float64) Builder {
	b.optFreqGHz = f
	return b
}

// WithTrace sets the trace of a GPU. A GPU without a trace is disabled.
func (b Builder) WithTrace(r *trace.Reader) Builder {
	b.gpuTrace = r
	return b
}

// Build creates the block.
func (b Builder) Build(name string) *Block {
	if b.sw == nil {
		log.Panicf("IP %s has no switch", name)
	}

	params := ParamsOf(b.ipType)

	opt := params.OptimalFreqGHz
	if b.optFreqGHz > 0 {
		opt = b.optFreqGHz
	}

	table := power.NewIPVFTable(params.Capacitance())

	blk := &Block{
		ComponentBase: sim.NewComponentBase(name),
		ipType:        b.ipType,
		id:            b.id,
		params:        params,
		sw:            b.sw,
		platform:      b.platform,
		governor:      b.governor,
		scaler:        power.NewScaler(table, b.freqGHz, table.IndexOf(opt)),
		flowType:      soc.NoIP,
		flowID:        NoFlow,
	}

	blk.scaler.SetInteractive(b.governor == soc.GovernorInteractive)

	initial := power.Idle
	switch params.Kind {
	case GPU:
		blk.gpu = &gpuState{reader: b.gpuTrace}
		if b.gpuTrace != nil {
			initial = power.Active
		}
	case DMA:
		initial = power.Active
	}

	blk.psm = power.NewStateMachine(params.Timing(), initial, blk.onActive)

	return blk
}
