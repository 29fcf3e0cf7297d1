package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of the environment variables read by LoadEnv.
const EnvPrefix = "GEMDROID_"

type envSetter func(c *Config, v string) error

func setString(field func(c *Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(c *Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		*field(c) = n

		return nil
	}
}

func setBool(field func(c *Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}

		*field(c) = b

		return nil
	}
}

var envSetters = map[string]envSetter{
	"CPU_TRACES": func(c *Config, v string) error {
		c.CPUTraces = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.CPUTraces = append(c.CPUTraces, t)
			}
		}

		return nil
	},
	"GPU_TRACE":       setString(func(c *Config) *string { return &c.GPUTrace }),
	"GOVERNOR":        setString(func(c *Config) *string { return &c.Governor }),
	"GOVERNOR_TIMING": setInt(func(c *Config) *int { return &c.GovernorTiming }),
	"CORE_FREQ":       setInt(func(c *Config) *int { return &c.CoreFreqMHz }),
	"MEM_FREQ":        setInt(func(c *Config) *int { return &c.MemFreqMHz }),
	"DEV_FREQ":        setInt(func(c *Config) *int { return &c.DevFreqMHz }),
	"IP_FREQ":         setInt(func(c *Config) *int { return &c.IPFreqMHz }),
	"ISSUE_WIDTH":     setInt(func(c *Config) *int { return &c.IssueWidth }),
	"IN_ORDER":        setBool(func(c *Config) *bool { return &c.InOrder }),
	"CORE_IDLE":       setBool(func(c *Config) *bool { return &c.EnableCoreIdle }),
	"IP_INSTANCES":    setInt(func(c *Config) *int { return &c.NumIPInstances }),
	"PERFECT_MEMORY":  setBool(func(c *Config) *bool { return &c.PerfectMemory }),
	"MEM_CHANNELS":    setInt(func(c *Config) *int { return &c.MemChannels }),
	"MEM_QUEUE_DEPTH": setInt(func(c *Config) *int { return &c.MemQueueDepth }),
	"MEM_LATENCY_NS": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}

		c.MemLatencyNs = f

		return nil
	},
	"IPCHARS_FILE": setString(func(c *Config) *string { return &c.IPCharsFile }),
	"FLOWS_FILE":   setString(func(c *Config) *string { return &c.FlowsFile }),
	"MAX_MS": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}

		c.MaxMs = n

		return nil
	},
	"NO_PERIODIC_STATS": setBool(func(c *Config) *bool { return &c.NoPeriodicStats }),
	"RECORDER":          setString(func(c *Config) *string { return &c.Recorder.Backend }),
	"RECORDER_PATH":     setString(func(c *Config) *string { return &c.Recorder.Path }),
	"CLICKHOUSE_HOST": setString(func(c *Config) *string {
		return &c.Recorder.ClickHouse.Host
	}),
	"CLICKHOUSE_PORT": setInt(func(c *Config) *int {
		return &c.Recorder.ClickHouse.Port
	}),
	"CLICKHOUSE_DATABASE": setString(func(c *Config) *string {
		return &c.Recorder.ClickHouse.Database
	}),
	"CLICKHOUSE_USER": setString(func(c *Config) *string {
		return &c.Recorder.ClickHouse.Username
	}),
	"CLICKHOUSE_PASSWORD": setString(func(c *Config) *string {
		return &c.Recorder.ClickHouse.Password
	}),
	"MONITOR_PORT": setInt(func(c *Config) *int { return &c.MonitorPort }),
}

// LoadEnv loads the given .env files into the process environment and then
// applies the GEMDROID_* variables to the configuration. Variables already
// set in the process win over the files. Without files, a .env file in the
// working directory is loaded if it exists.
func LoadEnv(c *Config, envFiles ...string) error {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking .env: %w", err)
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return fmt.Errorf("loading env files: %w", err)
		}
	}

	for key, set := range envSetters {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}

		if err := set(c, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
	}

	return nil
}
