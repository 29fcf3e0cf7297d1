// Package simulation sets up a complete run: the traces, the platform, the
// recorder of the statistics, the observers, and the monitor.
package simulation

import (
	"errors"

	"github.com/sarchlab/gemdroid/datarecording"
	"github.com/sarchlab/gemdroid/monitoring"
	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/trace"
	"github.com/sarchlab/gemdroid/tracing"
)

// A Simulation is a platform ready to run together with the services that
// observe it.
type Simulation struct {
	id     string
	engine sim.Engine

	platform *platform.Platform
	readers  []*trace.Reader

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	statsTracer  *tracing.StatsTracer
	bufAnalyzer  *tracing.BufferAnalyzer
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine used in the simulation.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Platform returns the simulated SoC.
func (s *Simulation) Platform() *platform.Platform {
	return s.platform
}

// DataRecorder returns the recorder of the run. It is nil when nothing is
// recorded.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// StatsTracer returns the tracer that records the periodic statistics. It is
// nil when the periodic statistics are off.
func (s *Simulation) StatsTracer() *tracing.StatsTracer {
	return s.statsTracer
}

// BufferAnalyzer returns the analyzer of the switch queues. It is nil when
// the periodic statistics are off.
func (s *Simulation) BufferAnalyzer() *tracing.BufferAnalyzer {
	return s.bufAnalyzer
}

// Monitor returns the monitor of the run. It is nil when monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run runs the platform until the traces end or the tick limit is reached.
func (s *Simulation) Run() error {
	return s.platform.Run()
}

// Summary returns the statistics of the run.
func (s *Simulation) Summary() platform.Summary {
	return s.platform.Summary()
}

// Terminate records the end of the run and releases the traces and the
// recorder.
func (s *Simulation) Terminate() error {
	var errs []error

	for _, r := range s.readers {
		errs = append(errs, r.Close())
	}

	if s.dataRecorder != nil {
		if s.bufAnalyzer != nil {
			s.bufAnalyzer.Record(s.dataRecorder)
		}

		if s.execRecorder != nil {
			s.execRecorder.End()
		}

		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
