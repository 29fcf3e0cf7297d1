package mem

import (
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Builder can build memories.
type Builder struct {
	numChannels int
	queueDepth  int
	latencyNs   float64
	freqGHz     float64
	perfect     bool
	sink        ResponseSink
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numChannels: 1,
		queueDepth:  32,
		latencyNs:   50,
		freqGHz:     0.5,
	}
}

// WithNumChannels sets the number of DRAM channels.
func (b Builder) WithNumChannels(n int) Builder {
	b.numChannels = n
	return b
}

// WithQueueDepth sets how many transactions each channel keeps in flight.
func (b Builder) WithQueueDepth(n int) Builder {
	b.queueDepth = n
	return b
}

// WithLatencyNs sets the access latency.
func (b Builder) WithLatencyNs(ns float64) Builder {
	b.latencyNs = ns
	return b
}

// WithFreqGHz sets the initial frequency.
func (b Builder) WithFreqGHz(f float64) Builder {
	b.freqGHz = f
	return b
}

// WithPerfectMemory makes the memory answer every request at once.
func (b Builder) WithPerfectMemory() Builder {
	b.perfect = true
	return b
}

// WithResponseSink sets where responses go.
func (b Builder) WithResponseSink(s ResponseSink) Builder {
	b.sink = s
	return b
}

// Build creates the memory.
func (b Builder) Build(name string) *Memory {
	latencyTicks := uint64(b.latencyNs * float64(soc.TicksPerMicroSec) / 1000)

	m := &Memory{
		ComponentBase: sim.NewComponentBase(name),
		dram: newDRAM(b.numChannels, b.queueDepth, latencyTicks,
			b.freqGHz),
		sink:          b.sink,
		perfect:       b.perfect,
		baseLatencyNs: b.latencyNs,
	}

	m.SetFreq(b.freqGHz)

	return m
}
