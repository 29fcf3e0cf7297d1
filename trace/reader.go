package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned for a trace line that cannot be parsed.
var ErrMalformedToken = errors.New("malformed trace line")

// Dialect selects the line grammar.
type Dialect int

// The dialects.
const (
	// CPUDialect lines are "CPU <insts> <waitNs>", "MMU_ld <hex> <size>",
	// "MMU_st <hex> <size>", "CPUSummary a b c d", "END", and IP calls
	// "<op> <hex> <size>".
	CPUDialect Dialect = iota

	// GPUDialect lines are "GPU <insts>", "GMU_ld <addr>", "GMU_st <addr>",
	// "Rendered x y", and "END".
	GPUDialect
)

// A Reader tokenizes a trace.
type Reader struct {
	dialect Dialect
	scanner *bufio.Scanner
	closer  io.Closer
	lines   int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader, dialect Dialect) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	reader := &Reader{
		dialect: dialect,
		scanner: s,
	}

	if c, ok := r.(io.Closer); ok {
		reader.closer = c
	}

	return reader
}

// Open opens a trace file.
func Open(path string, dialect Dialect) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	return NewReader(f, dialect), nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

// Lines returns the number of lines consumed so far.
func (r *Reader) Lines() int {
	return r.lines
}

// Next returns the next token. Blank lines are skipped. At the end of the
// input it returns io.EOF. A line that cannot be parsed yields an Invalid
// token together with an error wrapping ErrMalformedToken; reading may
// continue after it.
func (r *Reader) Next() (Token, error) {
	for r.scanner.Scan() {
		r.lines++

		fields := strings.Fields(r.scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var (
			tok Token
			err error
		)

		if r.dialect == GPUDialect {
			tok, err = parseGPU(fields)
		} else {
			tok, err = parseCPU(fields)
		}

		if err != nil {
			return Token{Kind: Invalid, Op: fields[0]},
				fmt.Errorf("line %d: %w", r.lines, err)
		}

		return tok, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Token{}, err
	}

	return Token{}, io.EOF
}

func parseCPU(f []string) (Token, error) {
	tok := Token{Op: f[0]}

	switch f[0] {
	case "CPU":
		if len(f) < 3 {
			return tok, malformed(f)
		}

		tok.Kind = Compute

		insts, err1 := strconv.ParseInt(f[1], 10, 64)
		wait, err2 := strconv.ParseInt(f[2], 10, 64)

		if err := errors.Join(err1, err2); err != nil {
			return tok, fmt.Errorf("%w: %w", malformed(f), err)
		}

		tok.Insts, tok.WaitNs = insts, wait
	case "MMU_ld", "MMU_st":
		tok.Kind = Load
		if f[0] == "MMU_st" {
			tok.Kind = Store
		}

		if err := parseAddrSize(&tok, f); err != nil {
			return tok, err
		}
	case "CPUSummary":
		tok.Kind = Summary
	case "END":
		tok.Kind = End
	default:
		tok.Kind = IPCall

		if err := parseAddrSize(&tok, f); err != nil {
			return tok, err
		}
	}

	return tok, nil
}

func parseGPU(f []string) (Token, error) {
	tok := Token{Op: f[0]}

	switch f[0] {
	case "GPU":
		if len(f) < 2 {
			return tok, malformed(f)
		}

		insts, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil {
			return tok, fmt.Errorf("%w: %w", malformed(f), err)
		}

		tok.Kind = Compute
		tok.Insts = insts
	case "GMU_ld", "GMU_st":
		if len(f) < 2 {
			return tok, malformed(f)
		}

		addr, err := strconv.ParseUint(f[1], 10, 64)
		if err != nil {
			return tok, fmt.Errorf("%w: %w", malformed(f), err)
		}

		tok.Kind = Load
		if f[0] == "GMU_st" {
			tok.Kind = Store
		}

		tok.Addr = addr
	case "Rendered":
		tok.Kind = Rendered
	case "END":
		tok.Kind = End
	default:
		return tok, malformed(f)
	}

	return tok, nil
}

func parseAddrSize(tok *Token, f []string) error {
	if len(f) < 3 {
		return malformed(f)
	}

	addr, err := strconv.ParseUint(strings.TrimPrefix(f[1], "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("%w: %w", malformed(f), err)
	}

	size, err := strconv.Atoi(f[2])
	if err != nil {
		return fmt.Errorf("%w: %w", malformed(f), err)
	}

	tok.Addr = addr
	tok.Size = size

	return nil
}

func malformed(f []string) error {
	return fmt.Errorf("%q: %w", strings.Join(f, " "), ErrMalformedToken)
}
