package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

var (
	// ErrInvalidGovernor is returned when the governor or its timing is
	// unknown.
	ErrInvalidGovernor = errors.New("invalid governor")

	// ErrInvalidValue is returned when a parameter is out of range.
	ErrInvalidValue = errors.New("invalid value")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)
}

// Validate checks the ranges of the parameters.
func (c Config) Validate() error {
	if err := c.validateGovernor(); err != nil {
		return err
	}

	if err := c.validateTraces(); err != nil {
		return err
	}

	if err := c.validateFreqs(); err != nil {
		return err
	}

	if err := c.validateSizes(); err != nil {
		return err
	}

	switch c.Recorder.Backend {
	case RecorderNone, RecorderSQLite, RecorderClickHouse:
	default:
		return invalid("recorder backend %q", c.Recorder.Backend)
	}

	return nil
}

func (c Config) validateGovernor() error {
	if _, err := soc.ParseGovernor(c.Governor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGovernor, err)
	}

	t := soc.GovernorTiming(c.GovernorTiming)
	if t < soc.TimingNone || t > soc.TimingIPFrameBoundaries {
		return fmt.Errorf("%w: timing %d", ErrInvalidGovernor, c.GovernorTiming)
	}

	return nil
}

func (c Config) validateTraces() error {
	if len(c.CPUTraces) < 1 || len(c.CPUTraces) > soc.MaxCPUs {
		return invalid("%d CPU traces, 1 to %d supported",
			len(c.CPUTraces), soc.MaxCPUs)
	}

	for i, t := range c.CPUTraces {
		if t == "" {
			return invalid("CPU trace %d is empty", i)
		}
	}

	return nil
}

func (c Config) validateFreqs() error {
	coreTable := power.NewCoreVFTable()
	if !coreTable.Contains(mhzToGHz(c.CoreFreqMHz)) {
		return invalid("core frequency %d MHz", c.CoreFreqMHz)
	}

	ipTable := power.NewIPVFTable(1)
	if !ipTable.Contains(mhzToGHz(c.IPFreqMHz)) {
		return invalid("IP frequency %d MHz", c.IPFreqMHz)
	}

	if c.DevFreqMHz <= 0 {
		return invalid("device frequency %d MHz", c.DevFreqMHz)
	}

	memFreq := mhzToGHz(c.MemFreqMHz)
	if memFreq < mem.MinFreqGHz || memFreq > mem.MaxFreqGHz ||
		c.MemFreqMHz%100 != 0 {
		return invalid("memory frequency %d MHz", c.MemFreqMHz)
	}

	return nil
}

func (c Config) validateSizes() error {
	if c.IssueWidth < 1 {
		return invalid("issue width %d", c.IssueWidth)
	}

	if c.NumIPInstances < 1 || c.NumIPInstances > soc.MaxIPInstances {
		return invalid("%d IP instances, 1 to %d supported",
			c.NumIPInstances, soc.MaxIPInstances)
	}

	if c.MemChannels < 1 {
		return invalid("%d memory channels", c.MemChannels)
	}

	if c.MemQueueDepth < 1 {
		return invalid("memory queue depth %d", c.MemQueueDepth)
	}

	if c.MemLatencyNs < 0 || math.IsNaN(c.MemLatencyNs) {
		return invalid("memory latency %f ns", c.MemLatencyNs)
	}

	return nil
}

// CoreFreqGHz returns the initial clock of the cores.
func (c Config) CoreFreqGHz() float64 { return mhzToGHz(c.CoreFreqMHz) }

// MemFreqGHz returns the initial clock of the memory.
func (c Config) MemFreqGHz() float64 { return mhzToGHz(c.MemFreqMHz) }

// DevFreqGHz returns the clock of the I/O devices.
func (c Config) DevFreqGHz() float64 { return mhzToGHz(c.DevFreqMHz) }

// IPFreqGHz returns the initial clock of the accelerators.
func (c Config) IPFreqGHz() float64 { return mhzToGHz(c.IPFreqMHz) }

func mhzToGHz(mhz int) float64 {
	return float64(mhz) / 1000
}
