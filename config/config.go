// Package config holds the parameters of a simulation run. A configuration
// starts from the defaults, is overridden by a YAML file, then by a .env file
// and the GEMDROID_* environment variables, and finally by the command line.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/gemdroid/soc"
)

// The recorder backends.
const (
	RecorderNone       = "none"
	RecorderSQLite     = "sqlite"
	RecorderClickHouse = "clickhouse"
)

// ClickHouse tells how to reach the ClickHouse server of a sweep.
type ClickHouse struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Recorder selects where the periodic statistics go.
type Recorder struct {
	Backend string `yaml:"backend"`

	// Path is the SQLite file, without the .sqlite3 suffix. Empty picks a
	// unique name.
	Path string `yaml:"path"`

	ClickHouse ClickHouse `yaml:"clickhouse"`
}

// Config is the configuration of a run.
type Config struct {
	CPUTraces []string `yaml:"cpu_traces"`
	GPUTrace  string   `yaml:"gpu_trace"`

	// Governor is a governor name or number.
	Governor       string `yaml:"governor"`
	GovernorTiming int    `yaml:"governor_timing"`

	CoreFreqMHz int  `yaml:"core_freq_mhz"`
	IssueWidth  int  `yaml:"issue_width"`
	InOrder     bool `yaml:"in_order"`

	// EnableCoreIdle lets idle cores drop to the Idle power state.
	EnableCoreIdle bool `yaml:"enable_core_idle"`

	MemFreqMHz int `yaml:"mem_freq_mhz"`
	DevFreqMHz int `yaml:"dev_freq_mhz"`
	IPFreqMHz  int `yaml:"ip_freq_mhz"`

	NumIPInstances int  `yaml:"num_ip_instances"`
	PerfectMemory  bool `yaml:"perfect_memory"`

	MemChannels   int     `yaml:"mem_channels"`
	MemLatencyNs  float64 `yaml:"mem_latency_ns"`
	MemQueueDepth int     `yaml:"mem_queue_depth"`

	// IPCharsFile and FlowsFile are the characterization and flow files. An
	// empty path uses the built-in tables.
	IPCharsFile string `yaml:"ipchars_file"`
	FlowsFile   string `yaml:"flows_file"`

	// MaxMs stops the run after the given simulated milliseconds. Zero runs
	// until the traces end.
	MaxMs uint64 `yaml:"max_ms"`

	NoPeriodicStats bool     `yaml:"no_periodic_stats"`
	Recorder        Recorder `yaml:"recorder"`

	// MonitorPort starts the monitoring server when it is not zero.
	MonitorPort int `yaml:"monitor_port"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Governor:       soc.GovernorOndemand.String(),
		GovernorTiming: int(soc.Timing1ms),
		CoreFreqMHz:    900,
		IssueWidth:     1,
		MemFreqMHz:     500,
		DevFreqMHz:     400,
		IPFreqMHz:      300,
		NumIPInstances: 1,
		MemChannels:    1,
		MemLatencyNs:   50,
		MemQueueDepth:  32,
		Recorder: Recorder{
			Backend: RecorderSQLite,
			ClickHouse: ClickHouse{
				Host:     "localhost",
				Port:     9000,
				Database: "default",
				Username: "default",
			},
		},
	}
}

// LoadFile overrides the defaults with a YAML file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return c, nil
}

// Load overrides the defaults with a YAML document. Unknown fields are
// rejected.
func Load(r io.Reader) (Config, error) {
	c := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	return c, nil
}

// Dump writes the configuration as YAML.
func (c Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return err
	}

	return enc.Close()
}

// GovernorValue returns the governor. The configuration must be valid.
func (c Config) GovernorValue() soc.Governor {
	g, _ := soc.ParseGovernor(c.Governor)
	return g
}

// MaxTicks returns the tick limit of the run.
func (c Config) MaxTicks() uint64 {
	return c.MaxMs * soc.TicksPerMilliSec
}
