// Package soc defines the vocabulary shared by every block of the simulated
// system-on-chip: component types, applications, governors, the physical
// address map, and the clock constants that all tick counts are based on.
package soc

import "github.com/sarchlab/gemdroid/sim"

// RefFreq is the reference clock that drives the whole platform. Every
// component ticks once every Multiplier(RefFreq) reference ticks.
const RefFreq = 10 * sim.GHz

// Tick counts of the reference clock.
const (
	TicksPerMicroSec uint64 = 10_000
	TicksPerMilliSec uint64 = 10_000_000
	TicksPerSec      uint64 = 10_000_000_000
)

// Sizes and limits of the platform.
const (
	CacheLineSize  = 64
	MaxCPUs        = 4
	MaxIPInstances = 4
	MaxFlowsInApp  = 5
	MaxIPsInFlow   = 5
)

// Frame timing.
const (
	TargetFPS = 60

	// FPSDeadlineMs is the per-frame budget in milliseconds after the safety
	// net of one millisecond is taken away.
	FPSDeadlineMs = 1000/TargetFPS - 1

	// FrameTicks is the display deadline interval in reference ticks.
	FrameTicks = TicksPerSec / TargetFPS
)

// Frame payload sizes in bytes.
const (
	FrameSize      = 4096 * 2160 * 24 / 8
	AudioFrameSize = 16384

	VideoCodingRatio = 16
	AudioCodingRatio = 8
)
