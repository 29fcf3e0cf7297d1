package simulation

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/sarchlab/gemdroid/config"
	"github.com/sarchlab/gemdroid/datarecording"
	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/monitoring"
	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
	"github.com/sarchlab/gemdroid/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg        config.Config
	engine     sim.Engine
	logger      *log.Logger
	verboseLog  bool
	eventLogger *log.Logger
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{cfg: config.Default()}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(c config.Config) Builder {
	b.cfg = c
	return b
}

// WithEngine sets the engine. A serial engine is used by default.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithLogger logs the frame drops and the deadlocks of the run into the
// logger.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithVerboseLog also logs every frame shown and every finished IP request.
func (b Builder) WithVerboseLog() Builder {
	b.verboseLog = true
	return b
}

// WithEventLogger logs every event the engine handles into the logger.
func (b Builder) WithEventLogger(l *log.Logger) Builder {
	b.eventLogger = l
	return b
}

// Build builds the simulation. The traces stay open until the simulation is
// terminated.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     xid.New().String(),
		engine: b.engine,
	}

	if s.engine == nil {
		s.engine = sim.NewSerialEngine()
	}

	err := b.buildPlatform(s)
	if err == nil {
		err = b.buildRecorder(s)
	}

	if err != nil {
		return nil, errors.Join(err, s.Terminate())
	}

	if b.logger != nil {
		h := tracing.NewLogHook(b.logger)
		if b.verboseLog {
			h.Verbose()
		}

		tracing.CollectPlatformTrace(s.platform, h)
	}

	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	if b.cfg.MonitorPort != 0 {
		if err := b.startMonitor(s); err != nil {
			return nil, errors.Join(err, s.Terminate())
		}
	}

	return s, nil
}

func (b Builder) openTrace(s *Simulation, path string, d trace.Dialect) (
	*trace.Reader, error,
) {
	r, err := trace.Open(path, d)
	if err != nil {
		return nil, err
	}

	s.readers = append(s.readers, r)

	return r, nil
}

func (b Builder) buildPlatform(s *Simulation) error {
	pb := platform.MakeBuilder().
		WithEngine(s.engine).
		WithGovernor(b.cfg.GovernorValue()).
		WithGovernorTiming(soc.GovernorTiming(b.cfg.GovernorTiming)).
		WithCoreFreqGHz(b.cfg.CoreFreqGHz()).
		WithDevFreqGHz(b.cfg.DevFreqGHz()).
		WithIPFreqGHz(b.cfg.IPFreqGHz()).
		WithMemFreqGHz(b.cfg.MemFreqGHz()).
		WithIssueWidth(b.cfg.IssueWidth).
		WithInOrder(b.cfg.InOrder).
		WithCoreIdleState(b.cfg.EnableCoreIdle).
		WithNumIPInstances(b.cfg.NumIPInstances).
		WithPerfectMemory(b.cfg.PerfectMemory).
		WithMemChannels(b.cfg.MemChannels).
		WithMemLatencyNs(b.cfg.MemLatencyNs).
		WithMemQueueDepth(b.cfg.MemQueueDepth).
		WithMaxTicks(b.cfg.MaxTicks())

	var traces []platform.CoreTrace
	for _, path := range b.cfg.CPUTraces {
		r, err := b.openTrace(s, path, trace.CPUDialect)
		if err != nil {
			return err
		}

		lookahead, err := b.openTrace(s, path, trace.CPUDialect)
		if err != nil {
			return err
		}

		traces = append(traces, platform.CoreTrace{
			Name:      filepath.Base(path),
			Reader:    r,
			Lookahead: lookahead,
		})
	}

	pb = pb.WithCoreTraces(traces...)

	if b.cfg.GPUTrace != "" && b.cfg.GPUTrace != "none" {
		r, err := b.openTrace(s, b.cfg.GPUTrace, trace.GPUDialect)
		if err != nil {
			return err
		}

		pb = pb.WithGPUTrace(r)
	}

	if b.cfg.FlowsFile != "" {
		flows, err := flow.LoadFile(b.cfg.FlowsFile)
		if err != nil {
			return err
		}

		pb = pb.WithFlowTable(flows)
	}

	if b.cfg.IPCharsFile != "" {
		chars, err := flow.LoadIPCharsFile(b.cfg.IPCharsFile)
		if err != nil {
			return err
		}

		pb = pb.WithIPChars(chars)
	}

	p, err := pb.Build("SoC")
	if err != nil {
		return err
	}

	s.platform = p

	return nil
}

func (b Builder) buildRecorder(s *Simulation) error {
	rc := b.cfg.Recorder

	switch rc.Backend {
	case config.RecorderNone:
		return nil
	case config.RecorderSQLite:
		path := rc.Path
		if path == "" {
			path = "gemdroid_" + s.id
		}

		r, err := datarecording.New(path)
		if err != nil {
			return fmt.Errorf("creating the recorder: %w", err)
		}

		s.dataRecorder = r
	case config.RecorderClickHouse:
		w, err := datarecording.NewClickHouseWriter(datarecording.ClickHouseOptions{
			Host:     rc.ClickHouse.Host,
			Port:     rc.ClickHouse.Port,
			Database: rc.ClickHouse.Database,
			Username: rc.ClickHouse.Username,
			Password: rc.ClickHouse.Password,
		})
		if err != nil {
			return fmt.Errorf("creating the recorder: %w", err)
		}

		s.dataRecorder = w
	}

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()
	s.execRecorder.Record("Run ID", s.id)
	s.execRecorder.Record("CPU Traces", strings.Join(b.cfg.CPUTraces, ","))

	var cfg bytes.Buffer
	if err := b.cfg.Dump(&cfg); err != nil {
		return err
	}

	s.execRecorder.Record("Config", cfg.String())

	if !b.cfg.NoPeriodicStats {
		s.statsTracer = tracing.NewStatsTracer(s.dataRecorder)
		tracing.CollectPlatformTrace(s.platform, s.statsTracer)

		s.bufAnalyzer = tracing.NewBufferAnalyzer(s.engine)
		s.bufAnalyzer.Watch(s.platform.Switch().Buffers()...)
	}

	return nil
}

func (b Builder) startMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor().WithPortNumber(b.cfg.MonitorPort)
	s.monitor.RegisterPlatform(s.platform, s.engine, b.cfg.MaxMs)

	_, err := s.monitor.StartServer()

	return err
}
