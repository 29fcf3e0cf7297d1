package ip

import (
	"fmt"
	"log"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

// Kind selects the way an IP block processes a request.
type Kind int

// The kinds of IP blocks.
const (
	// Device blocks move the whole request to or from memory after a fixed
	// I/O latency.
	Device Kind = iota

	// Decoder blocks expand every input line into several output lines.
	Decoder

	// Encoder blocks compress several input lines into one output line.
	Encoder

	// NoCoder blocks produce one output line per input line.
	NoCoder

	// GPU blocks run a trace of their own.
	GPU

	// DMA blocks copy lines from a source to a destination.
	DMA
)

func (k Kind) String() string {
	switch k {
	case Device:
		return "Device"
	case Decoder:
		return "Decoder"
	case Encoder:
		return "Encoder"
	case NoCoder:
		return "NoCoder"
	case GPU:
		return "GPU"
	case DMA:
		return "DMA"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsPipelined tells if the kind streams data through input and output
// buffers.
func (k Kind) IsPipelined() bool {
	return k == Decoder || k == Encoder || k == NoCoder
}

// v2fMax normalizes the dynamic power so that a fully active block at the
// fastest operating point draws exactly its per-line dynamic power.
var v2fMax = 1.057 * 1.057 * 0.8

// Params are the physical constants of one type of IP block.
type Params struct {
	Kind Kind

	// StaticPower is the leakage in watts while Active. A block in LowPower
	// leaks a third of it.
	StaticPower float64

	// DynamicPower is the power in watts of a block that is busy in every
	// cycle at the fastest operating point.
	DynamicPower float64

	OptimalFreqGHz float64

	// IOLatency is the number of cycles a device spends per cache line
	// before it touches memory.
	IOLatency int

	// ComputeLatency is the number of cycles a pipelined block spends on one
	// line of input.
	ComputeLatency int
	InBufferSize   int
	OutBufferSize  int
	CodingRatio    int
	ChunkSize      int

	// OutputOffset is the distance between the input buffer and the output
	// buffer of a pipelined block.
	OutputOffset uint64

	// CyclesPerUnit converts the clock into the highest rate of work, in
	// units per cycle, that the block can sustain.
	CyclesPerUnit float64
}

// Capacitance returns the switched capacitance used to build the VF table.
func (p Params) Capacitance() float64 {
	return p.DynamicPower / v2fMax
}

// Timing returns the power-state timing of the block.
func (p Params) Timing() power.Timing {
	if p.Kind == Device {
		return power.DeviceTiming
	}

	return power.AcceleratorTiming
}

var deviceParams = map[soc.IPType]Params{
	soc.DC: {
		StaticPower: 0.1, DynamicPower: 0.5, IOLatency: 1, CyclesPerUnit: 5,
	},
	soc.NW: {
		StaticPower: 0.05, DynamicPower: 0.2, IOLatency: 1, CyclesPerUnit: 1,
	},
	soc.SND: {
		StaticPower: 0.05, DynamicPower: 0, IOLatency: 1, CyclesPerUnit: 1,
	},
	soc.MIC: {
		StaticPower: 0.05, DynamicPower: 0, IOLatency: 1, CyclesPerUnit: 1,
	},
	soc.CAM: {
		StaticPower: 0.1, DynamicPower: 1, IOLatency: 1, CyclesPerUnit: 1,
	},
	soc.MMCIn: {
		StaticPower: 0.05, DynamicPower: 0.3, IOLatency: 10, CyclesPerUnit: 10,
	},
	soc.MMCOut: {
		StaticPower: 0.05, DynamicPower: 0.3, IOLatency: 10, CyclesPerUnit: 10,
	},
}

var accelParams = map[soc.IPType]Params{
	soc.VD: {
		Kind:           Decoder,
		StaticPower:    0.1,
		DynamicPower:   1,
		OptimalFreqGHz: 0.3,
		ComputeLatency: 12,
		InBufferSize:   24,
		OutBufferSize:  64,
		CodingRatio:    soc.VideoCodingRatio,
		ChunkSize:      1,
		OutputOffset:   soc.FrameSize,
		CyclesPerUnit:  12,
	},
	soc.AD: {
		Kind:           Decoder,
		StaticPower:    0.05,
		DynamicPower:   0.75,
		OptimalFreqGHz: 0.4,
		ComputeLatency: 12,
		InBufferSize:   24,
		OutBufferSize:  64,
		CodingRatio:    soc.AudioCodingRatio,
		ChunkSize:      1,
		OutputOffset:   soc.AudioFrameSize,
		CyclesPerUnit:  44 * 12,
	},
	soc.VE: {
		Kind:           Encoder,
		StaticPower:    0.1,
		DynamicPower:   1.5,
		OptimalFreqGHz: 0.3,
		ComputeLatency: 18,
		InBufferSize:   24,
		OutBufferSize:  64,
		CodingRatio:    soc.VideoCodingRatio,
		ChunkSize:      16,
		OutputOffset:   soc.FrameSize,
		CyclesPerUnit:  18.0 / soc.VideoCodingRatio,
	},
	soc.AE: {
		Kind:           Encoder,
		StaticPower:    0.05,
		DynamicPower:   0.75,
		OptimalFreqGHz: 0.4,
		ComputeLatency: 8,
		InBufferSize:   24,
		OutBufferSize:  64,
		CodingRatio:    soc.AudioCodingRatio,
		ChunkSize:      16,
		OutputOffset:   soc.AudioFrameSize,
		CyclesPerUnit:  44.0 * 8 / soc.AudioCodingRatio,
	},
	soc.IMG: {
		Kind:           NoCoder,
		StaticPower:    0.1,
		DynamicPower:   1.5,
		OptimalFreqGHz: 0.3,
		ComputeLatency: 16,
		InBufferSize:   16,
		OutBufferSize:  32,
		CodingRatio:    1,
		ChunkSize:      16,
		OutputOffset:   soc.FrameSize,
		CyclesPerUnit:  16,
	},
	soc.GPU: {
		Kind:           GPU,
		StaticPower:    0.35,
		DynamicPower:   4,
		OptimalFreqGHz: 0.2,
		CyclesPerUnit:  4,
	},
	soc.DMA: {
		Kind:          DMA,
		CyclesPerUnit: 1,
	},
}

// ParamsOf returns the constants of an IP type. It panics for types that are
// not IP blocks.
func ParamsOf(t soc.IPType) Params {
	if p, ok := deviceParams[t]; ok {
		p.Kind = Device
		p.OptimalFreqGHz = 0.4

		return p
	}

	if p, ok := accelParams[t]; ok {
		return p
	}

	log.Panicf("%s is not an IP block", t)

	return Params{}
}
