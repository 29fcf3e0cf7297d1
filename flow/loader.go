package flow

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/gemdroid/soc"
)

// ErrMalformedLine is returned when a line of a flow or characterization
// file cannot be parsed.
var ErrMalformedLine = errors.New("malformed line")

// LoadFile reads a flow table from a file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening flow file: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return t, nil
}

// Load reads a flow table. Each line holds an application ID followed by the
// stages of one flow and a terminating -1. Consecutive lines of the same
// application define its flows in order. Stages may be written as numbers or
// as IP type names. Parsing stops at the first empty line. Lines starting
// with # are skipped.
func Load(r io.Reader) (*Table, error) {
	b := MakeBuilder()
	count := make(map[soc.AppID]int)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			break
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		app, stages, err := parseFlowLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		count[app]++
		if count[app] > soc.MaxFlowsInApp {
			return nil, fmt.Errorf("line %d: app %s has more than %d flows: %w",
				lineNum, app, soc.MaxFlowsInApp, ErrMalformedLine)
		}

		b = b.WithFlow(app, stages...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.Build(), nil
}

func parseFlowLine(line string) (soc.AppID, []soc.IPType, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return 0, nil, fmt.Errorf("%q: %w", line, ErrMalformedLine)
	}

	appNum, err := strconv.Atoi(tokens[0])
	if err != nil || appNum < 0 || appNum >= int(soc.NumApps) {
		return 0, nil, fmt.Errorf("bad app id %q: %w", tokens[0], ErrMalformedLine)
	}

	var stages []soc.IPType
	terminated := false

	for _, tok := range tokens[1:] {
		if tok == "-1" {
			terminated = true
			break
		}

		ip, err := parseStage(tok)
		if err != nil {
			return 0, nil, err
		}

		stages = append(stages, ip)
	}

	if !terminated {
		return 0, nil, fmt.Errorf("%q is not terminated by -1: %w",
			line, ErrMalformedLine)
	}

	if len(stages) == 0 || len(stages) > soc.MaxIPsInFlow {
		return 0, nil, fmt.Errorf("%q has %d stages: %w",
			line, len(stages), ErrMalformedLine)
	}

	return soc.AppID(appNum), stages, nil
}

func parseStage(tok string) (soc.IPType, error) {
	if n, err := strconv.Atoi(tok); err == nil {
		ip := soc.IPType(n)
		if !ip.Valid() {
			return soc.NoIP, fmt.Errorf("bad IP %q: %w", tok, ErrMalformedLine)
		}

		return ip, nil
	}

	ip, err := soc.ParseIPType(tok)
	if err != nil {
		return soc.NoIP, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return ip, nil
}
