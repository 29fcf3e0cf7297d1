// Package dvfs implements the frequency governors of the SoC. A governor
// looks at what the platform measured in the last DVFS period and moves the
// operating points of the cores, the IP blocks, and the memory.
package dvfs

import (
	"errors"
	"fmt"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

// ErrUnsupportedGovernor is returned when a governor has no policy.
var ErrUnsupportedGovernor = errors.New("unsupported governor")

// Core is a CPU core as seen by the governors.
type Core interface {
	Scaler() *power.Scaler
	FreqGHz() float64
	LoadInLastEpoch(lastTimeMs float64) float64
	SetMaxAllowedFreq(budget float64)
	FreqForSlackOptimal(prevTime, scaledTime, slack float64) (float64, float64)
	ProfileFractionOfMemInst() float64
}

// IP is an IP block as seen by the governors.
type IP interface {
	Type() soc.IPType
	Scaler() *power.Scaler
	FreqGHz() float64
	LoadInLastEpoch(lastTimeMs float64) float64
	SetMaxAllowedFreq(budget float64)
	FreqForSlackOptimal(prevTime, scaledTime, slack float64) (float64, float64)
}

// Memory is the main memory as seen by the governors.
type Memory interface {
	FreqGHz() float64
	SetFreq(freqGHz float64)
	SetMax()
	SetOptimal()
	MaxBandwidth(freqGHz float64) float64
	CurrentMaxBandwidth() float64
	Bandwidth() float64
	FreqForBandwidth(bw float64) float64
}

// Frame is what the platform measured about the last frame an IP type
// finished.
type Frame struct {
	TimeMs   float64
	EnergyMJ float64
	FreqGHz  float64
}

// An Epoch carries the measurements of the DVFS period that just ended.
type Epoch struct {
	// Slack is the frame deadline minus the time the first flow of the
	// foreground app took, in milliseconds.
	Slack float64

	// PowerBudget is the power in watts left under the cap after the last
	// millisecond.
	PowerBudget float64

	PeriodTicks uint64

	// LastMemFreq is the memory frequency at the time the last frame was
	// timed.
	LastMemFreq float64

	Last       [soc.NumIPTypes]Frame
	AppMemReqs [soc.MaxCPUs]uint64
}

// A Policy decides the operating points.
type Policy interface {
	// Init sets the starting operating points.
	Init(s *System)

	// Update runs once per DVFS period.
	Update(s *System, ep Epoch)
}

// NewPolicy returns the policy that implements a governor.
func NewPolicy(g soc.Governor) (Policy, error) {
	switch g {
	case soc.GovernorDisabled:
		return fixedPoints{}, nil
	case soc.GovernorPerformance:
		return fixedPoints{core: pointMax, ip: pointMax, mem: pointMax}, nil
	case soc.GovernorPowersave:
		return fixedPoints{core: 0.5, ip: 0.2, mem: 0.5}, nil
	case soc.GovernorOptimal:
		return fixedPoints{core: pointOpt, ip: pointOpt, mem: 0.5}, nil
	case soc.GovernorOndemand, soc.GovernorInteractive, soc.GovernorBuilding,
		soc.GovernorPowercap:
		return loadBased{governor: g}, nil
	case soc.GovernorMemScale:
		return memScale{}, nil
	case soc.GovernorSlack:
		return fixedPriority{}, nil
	case soc.GovernorCoreOracle:
		return coreOracle{}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGovernor, g)
}
