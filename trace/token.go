// Package trace reads the instruction traces that drive the CPU cores and
// the GPU.
package trace

import (
	"fmt"
	"strings"
)

// Kind tells what a trace line asks the reader to do.
type Kind int

// The token kinds.
const (
	Invalid Kind = iota
	Compute
	Load
	Store
	IPCall
	Summary
	Rendered
	End
)

var kindNames = []string{
	"Invalid", "Compute", "Load", "Store", "IPCall", "Summary", "Rendered",
	"End",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Token is one parsed trace line.
type Token struct {
	Kind Kind

	// Op is the leading word of the line.
	Op string

	// Insts is the number of instructions of a compute token.
	Insts int64

	// WaitNs is the time the traced program slept after a compute batch.
	WaitNs int64

	Addr uint64
	Size int
}

// IP call ops carry a device tag inside the op word.
const (
	OpFrameBufferUpdate = "FB-UP"
	OpNetwork           = "NW"
	OpSoundIn           = "SND-IN"
	OpSoundOut          = "SND-OUT"
	OpCamera            = "CAM"
)

// Is tells if an IP call token carries the given tag.
func (t Token) Is(tag string) bool {
	return t.Kind == IPCall && strings.Contains(t.Op, tag)
}

// IsFrameBufferUpdate tells if the token is a frame-buffer update call.
func (t Token) IsFrameBufferUpdate() bool {
	return t.Is(OpFrameBufferUpdate)
}
