package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/gemdroid/config"
	"github.com/sarchlab/gemdroid/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: "`run` replays the CPU traces, and optionally a GPU trace, on the " +
		"simulated SoC. Parameters come from the defaults, the --config " +
		"file, the .env file and the GEMDROID_* variables, and the flags, " +
		"in this order.",
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

func addRunFlags(f *pflag.FlagSet) {
	f.String("config", "", "YAML configuration file")
	f.StringSlice("env-file", nil, "env files to load instead of .env")
	f.StringSlice("cpu-trace", nil, "CPU trace, one per core")
	f.String("gpu-trace", "", "GPU trace")
	f.String("governor", "", "frequency governor, by name or number")
	f.Int("governor-timing", 0, "how often the governor runs")
	f.Int("core-freq", 0, "initial core frequency in MHz")
	f.Int("mem-freq", 0, "initial memory frequency in MHz")
	f.Int("dev-freq", 0, "device frequency in MHz")
	f.Int("ip-freq", 0, "initial accelerator frequency in MHz")
	f.Int("issue-width", 0, "commit lanes of each core")
	f.Bool("in-order", false, "commit in order")
	f.Bool("core-idle", false, "let idle cores drop to the Idle state")
	f.Int("ip-instances", 0, "instances of each IP type")
	f.Bool("perfect-memory", false, "answer every memory request at once")
	f.Int("mem-channels", 0, "DRAM channels")
	f.Float64("mem-latency-ns", 0, "DRAM access latency in ns")
	f.Int("mem-queue-depth", 0, "transaction queue depth of each channel")
	f.String("flows", "", "flow file")
	f.String("ipchars", "", "IP characterization file")
	f.Uint64("max-ms", 0, "stop after the given simulated milliseconds")
	f.Bool("no-periodic-stats", false, "do not record the per-ms samples")
	f.String("recorder", "", "where the statistics go: sqlite, clickhouse, none")
	f.String("recorder-path", "", "SQLite file, without the suffix")
	f.Int("monitor-port", 0, "start the monitoring server on the port")
	f.Bool("open-monitor", false, "open the monitor in a browser")
	f.Bool("log", false, "log frame drops and deadlocks to stderr")
	f.Bool("verbose", false, "also log every frame and IP request")
	f.Bool("log-events", false, "log every engine event to stderr")
	f.Bool("quiet", false, "do not print the summary")
}

func loadConfig(f *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()

	if path, _ := f.GetString("config"); path != "" {
		var err error

		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}

	envFiles, _ := f.GetStringSlice("env-file")
	if err := config.LoadEnv(&cfg, envFiles...); err != nil {
		return cfg, err
	}

	applyFlags(f, &cfg)

	return cfg, nil
}

func applyFlags(f *pflag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	flag := func(name string, dst *bool) {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}

	if f.Changed("cpu-trace") {
		cfg.CPUTraces, _ = f.GetStringSlice("cpu-trace")
	}

	if f.Changed("mem-latency-ns") {
		cfg.MemLatencyNs, _ = f.GetFloat64("mem-latency-ns")
	}

	if f.Changed("max-ms") {
		cfg.MaxMs, _ = f.GetUint64("max-ms")
	}

	str("gpu-trace", &cfg.GPUTrace)
	str("governor", &cfg.Governor)
	num("governor-timing", &cfg.GovernorTiming)
	num("core-freq", &cfg.CoreFreqMHz)
	num("mem-freq", &cfg.MemFreqMHz)
	num("dev-freq", &cfg.DevFreqMHz)
	num("ip-freq", &cfg.IPFreqMHz)
	num("issue-width", &cfg.IssueWidth)
	flag("in-order", &cfg.InOrder)
	flag("core-idle", &cfg.EnableCoreIdle)
	num("ip-instances", &cfg.NumIPInstances)
	flag("perfect-memory", &cfg.PerfectMemory)
	num("mem-channels", &cfg.MemChannels)
	num("mem-queue-depth", &cfg.MemQueueDepth)
	str("flows", &cfg.FlowsFile)
	str("ipchars", &cfg.IPCharsFile)
	flag("no-periodic-stats", &cfg.NoPeriodicStats)
	str("recorder", &cfg.Recorder.Backend)
	str("recorder-path", &cfg.Recorder.Path)
	num("monitor-port", &cfg.MonitorPort)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	b := simulation.MakeBuilder().WithConfig(cfg)

	if on, _ := f.GetBool("log"); on {
		b = b.WithLogger(log.New(os.Stderr, "", 0))
	}

	if verbose, _ := f.GetBool("verbose"); verbose {
		b = b.WithLogger(log.New(os.Stderr, "", 0)).WithVerboseLog()
	}

	if on, _ := f.GetBool("log-events"); on {
		b = b.WithEventLogger(log.New(os.Stderr, "", 0))
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if open, _ := f.GetBool("open-monitor"); open && s.Monitor() != nil {
		if err := s.Monitor().OpenInBrowser(); err != nil {
			log.Printf("cannot open the monitor: %v", err)
		}
	}

	runErr := s.Run()

	if quiet, _ := f.GetBool("quiet"); !quiet && runErr == nil {
		printSummary(cmd.OutOrStdout(), cfg, s.Summary())
	}

	if err := s.Terminate(); err != nil && runErr == nil {
		return err
	}

	return runErr
}
