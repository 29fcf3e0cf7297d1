package soc

import (
	"fmt"
	"strings"
)

// Governor selects how frequencies are chosen at run time.
type Governor int

// The governors, numbered as in the configuration files.
const (
	GovernorDisabled Governor = iota
	GovernorOndemand
	GovernorPerformance
	GovernorPowersave
	GovernorBuilding
	GovernorInteractive
	GovernorPowercap
	GovernorSlack
	GovernorSlackFarEnergy
	GovernorSlackKnapsack
	GovernorSlackMaxEnergy
	GovernorSlackMaxPower
	GovernorSlackMaxEnergyPerTime
	GovernorCoScale
	GovernorMemScale
	GovernorOptimal
	GovernorDynamicProg
	GovernorCoreOracle
	NumGovernors
)

var governorNames = [NumGovernors]string{
	"disabled", "ondemand", "performance", "powersave", "building",
	"interactive", "powercap", "slack", "slack-far-energy",
	"slack-knapsack", "slack-max-energy", "slack-max-power",
	"slack-max-energy-per-time", "coscale", "memscale", "optimal",
	"dynamic-prog", "core-oracle",
}

func (g Governor) String() string {
	if g >= 0 && g < NumGovernors {
		return governorNames[g]
	}

	return fmt.Sprintf("Governor(%d)", int(g))
}

// IsSlackBased tells if the governor belongs to the slack family that keeps
// the memory at its optimal frequency initially.
func (g Governor) IsSlackBased() bool {
	return g >= GovernorSlack && g <= GovernorDynamicProg &&
		g != GovernorOptimal
}

// ParseGovernor accepts either a governor name or its number.
func ParseGovernor(s string) (Governor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range governorNames {
		if n == s || fmt.Sprint(i) == s {
			return Governor(i), nil
		}
	}

	return -1, fmt.Errorf("unknown governor %q", s)
}

// GovernorTiming selects how often the governor runs.
type GovernorTiming int

// The governor timings.
const (
	TimingNone GovernorTiming = iota
	Timing1ms
	Timing10ms
	Timing16ms
	TimingFrameBoundaries
	TimingIPFrameBoundaries
)

// Period returns the DVFS period in reference ticks. Frame-boundary timings
// are evaluated on a 4 ms and 5 ms grid respectively.
func (t GovernorTiming) Period() uint64 {
	switch t {
	case Timing1ms:
		return TicksPerMilliSec
	case Timing10ms:
		return 10 * TicksPerMilliSec
	case Timing16ms:
		return 16 * TicksPerMilliSec
	}

	return uint64(t) * TicksPerMilliSec
}
