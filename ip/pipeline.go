package ip

import (
	"fmt"

	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/soc"
)

// Cause tells what a pipelined block did, or failed to do, in one cycle.
type Cause int

// The causes.
const (
	NoCause Cause = iota
	OutBufferFull
	InBufferEmpty
	DataReceived
	TrueProcessCycle
)

func (c Cause) String() string {
	switch c {
	case NoCause:
		return "None"
	case OutBufferFull:
		return "OutBufferFull"
	case InBufferEmpty:
		return "InBufferEmpty"
	case DataReceived:
		return "DataReceived"
	case TrueProcessCycle:
		return "TrueProcessCycle"
	}

	return fmt.Sprintf("Cause(%d)", int(c))
}

// iFrameInterval is the distance between two video frames that do not
// depend on the previous frame.
const iFrameInterval = 10

// pFrameReadShare is the share of a dependent video frame that is read from
// the input. The rest comes from the reference frame.
const pFrameReadShare = 0.6

// pipeline is the state of a block that streams lines through its input and
// output buffers. The buffers are counted in cache lines.
type pipeline struct {
	inBuffer  int
	outBuffer int
	reqSent   int
	processed int
	toProcess int
	skip      int

	outAddr    uint64
	dependence int
	depAddr    uint64

	lastCause Cause
}

func (b *Block) startPipeline(req sa.Request) {
	b.pipe = pipeline{
		outAddr:   soc.BaseAddr(b.ipType) + b.params.OutputOffset,
		toProcess: b.lines,
	}

	if b.ipType == soc.VD && req.FrameNum%iFrameInterval != 0 {
		reads := int(float64(b.lines)*pFrameReadShare + 0.999999)
		if reads > b.lines {
			reads = b.lines
		}

		b.pipe.dependence = b.lines - reads
		b.pipe.depAddr = soc.VDAddr + 2*soc.FrameSize
		b.reqCount = reads
	}
}

// LastCause returns what the block did in its last working cycle.
func (b *Block) LastCause() Cause {
	return b.pipe.lastCause
}

func (b *Block) tickPipeline() bool {
	if !b.busy {
		b.psm.AddIdle(1)
		return false
	}

	b.stats.WorkingCycles++

	b.sendDataOut()

	if b.pipe.dependence > 0 {
		b.requestDependentData()
	} else {
		b.requestData()
	}

	cause := NoCause
	if b.pipe.processed < b.pipe.toProcess {
		cause = b.process()
	}

	b.countCause(cause)

	if b.pipe.processed >= b.pipe.toProcess && b.pipe.outBuffer == 0 {
		b.busy = false
		b.respPending = true
		b.respond()
	}

	return true
}

func (b *Block) countCause(c Cause) {
	b.pipe.lastCause = c

	switch c {
	case OutBufferFull:
		b.stats.OutBufferFullCycles++
		b.stats.MemStalls++
	case InBufferEmpty:
		b.stats.InBufferEmptyCycles++
		b.stats.MemStalls++
	case DataReceived:
		b.stats.DataReceivedCycles++
	case TrueProcessCycle:
		b.stats.ProcessCycles++
	}
}

func (b *Block) sendDataOut() {
	if b.pipe.outBuffer == 0 {
		return
	}

	if !b.sw.EnqueueIPMemRequest(
		b.ipType, b.id, b.coreID, b.pipe.outAddr, false) {
		b.stats.MemRejected++
		return
	}

	b.pipe.outAddr += soc.CacheLineSize
	b.pipe.outBuffer--
	b.stats.MemReqs++
}

func (b *Block) requestDependentData() {
	if b.pipe.reqSent >= b.params.InBufferSize {
		return
	}

	if !b.sw.EnqueueIPMemRequest(
		b.ipType, b.id, b.coreID, b.pipe.depAddr, true) {
		b.stats.MemRejected++
		return
	}

	b.pipe.dependence--
	b.pipe.depAddr += soc.CacheLineSize
	b.pipe.reqSent++
	b.stats.MemReqs++
	b.countActivity()
}

func (b *Block) requestData() {
	if b.reqCount <= 0 || b.pipe.reqSent >= b.params.InBufferSize {
		return
	}

	if b.sendMemoryReq() {
		b.pipe.reqSent++
	}
}

// process moves one line through the compute stage.
func (b *Block) process() Cause {
	p := &b.pipe

	produced := b.params.ChunkSize
	if b.params.Kind == Decoder {
		produced = b.params.CodingRatio
	}

	if p.outBuffer+produced > b.params.OutBufferSize {
		return OutBufferFull
	}

	if p.skip > 0 {
		p.skip--
		if p.skip == 0 {
			p.processed++
			b.emit()
		}

		return TrueProcessCycle
	}

	if p.inBuffer == 0 {
		return InBufferEmpty
	}

	p.inBuffer--
	p.reqSent--
	p.skip = b.computeCycles()

	return DataReceived
}

func (b *Block) computeCycles() int {
	if b.params.Kind == Decoder {
		return b.params.ComputeLatency
	}

	c := b.params.ComputeLatency / b.params.CodingRatio
	if c < 1 {
		c = 1
	}

	return c
}

// emit adds the output of the line that was just processed. A decoder
// expands every line, while the others fill a chunk before it can be
// written out.
func (b *Block) emit() {
	p := &b.pipe

	switch b.params.Kind {
	case Decoder:
		p.outBuffer += b.params.CodingRatio
	default:
		linesPerChunk := b.params.ChunkSize * b.params.CodingRatio
		if p.processed%linesPerChunk == 0 {
			p.outBuffer += b.params.ChunkSize
		}
	}
}
