// Package ip models the fixed-function blocks of the SoC: the I/O devices,
// the codecs, the image processor, the GPU, and the DMA engine.
//
// All of them share one Block type. The Kind of a block, chosen when it is
// built, selects how it turns a request into memory traffic, while the power
// states, the request bookkeeping, and the power model are common.
package ip

import (
	"log"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Switch is the switch as seen by an IP block.
type Switch interface {
	EnqueueIPMemRequest(
		ip soc.IPType,
		id int,
		coreID int,
		addr uint64,
		isRead bool,
	) bool

	EnqueueIPResponse(
		sender soc.IPType,
		senderID int,
		coreID int,
		frameNum int,
		flowType soc.IPType,
		flowID int,
	) bool
}

// Platform keeps the per-frame timing of the blocks.
type Platform interface {
	MarkIPRequestStarted(coreID int, ip soc.IPType, id int, frameNum int)
	MarkIPRequestCompleted(
		coreID int,
		ip soc.IPType,
		id int,
		frameNum int,
		flowID int,
	)

	// Now returns the current reference tick.
	Now() uint64
}

// Stats holds the counters of a block.
type Stats struct {
	Ticks         uint64
	Calls         uint64
	MemReqs       uint64
	BusyRejects   uint64
	MemRejected   uint64
	MemStalls     uint64
	WorkingCycles uint64

	OutBufferFullCycles uint64
	InBufferEmptyCycles uint64
	DataReceivedCycles  uint64
	ProcessCycles       uint64

	TraceLines      uint64
	MalformedLines  uint64
	InstsCommitted  uint64
	FPSStallCycles  uint64
	FramesDisplayed uint64
	FramesDropped   uint64

	PowerCycles power.Counters
}

// Block is one IP block.
type Block struct {
	*sim.ComponentBase

	ipType   soc.IPType
	id       int
	params   Params
	sw       Switch
	platform Platform
	governor soc.Governor

	psm    *power.StateMachine
	scaler *power.Scaler

	busy         bool
	respPending  bool
	coreID       int
	addr         uint64
	isRead       bool
	frameNum     int
	flowType     soc.IPType
	flowID       int
	lines        int
	reqCount     int
	respCount    int
	cyclesToSkip int

	pipe pipeline
	gpu  *gpuState
	dma  dmaState

	activityUs    uint64
	activityMs    uint64
	activityEpoch uint64
	usMark        power.Counters
	msMark        power.Counters
	lastPower     float64

	stats Stats
}

// Type returns the IP type of the block.
func (b *Block) Type() soc.IPType {
	return b.ipType
}

// ID returns the instance number of the block.
func (b *Block) ID() int {
	return b.id
}

// Kind returns the kind of the block.
func (b *Block) Kind() Kind {
	return b.params.Kind
}

// Params returns the constants of the block.
func (b *Block) Params() Params {
	return b.params
}

// IsBusy tells if the block is working on a request.
func (b *Block) IsBusy() bool {
	return b.busy || b.respPending
}

// PowerState returns the power state of the block.
func (b *Block) PowerState() power.State {
	return b.psm.State()
}

// Stats returns a snapshot of the counters.
func (b *Block) Stats() Stats {
	s := b.stats
	s.PowerCycles = b.psm.Cycles()

	return s
}

// EnqueueIPReq hands a request to the block. It returns false if the block is
// busy with an earlier request.
func (b *Block) EnqueueIPReq(req sa.Request) bool {
	if b.IsBusy() {
		b.stats.BusyRejects++
		return false
	}

	switch b.params.Kind {
	case GPU:
		log.Panicf("%s does not accept requests", b.Name())
	case DMA:
		b.startTransfer(req.Addr, soc.DC0Addr, req.Size, req.FrameNum)
		return true
	}

	b.accept(req)

	if b.params.Kind.IsPipelined() {
		b.startPipeline(req)
	}

	return true
}

func (b *Block) accept(req sa.Request) {
	b.busy = true
	b.coreID = req.CoreID
	b.addr = req.Addr
	b.isRead = req.IsRead
	b.frameNum = req.FrameNum
	b.flowType = req.FlowType
	b.flowID = req.FlowID
	b.lines = soc.CacheLines(uint64(req.Size))
	b.reqCount = b.lines
	b.respCount = 0
	b.cyclesToSkip = b.params.IOLatency * b.lines
	b.stats.Calls++

	b.psm.ResetIdle()

	if b.psm.IsActive() {
		b.platform.MarkIPRequestStarted(
			b.coreID, b.ipType, b.id, b.frameNum)
		return
	}

	b.psm.Wake()
}

// onActive runs every time the block finishes waking up.
func (b *Block) onActive() {
	if b.ipType > soc.VD {
		switch b.governor {
		case soc.GovernorInteractive:
			b.scaler.SetMax()
		case soc.GovernorPowercap:
			b.scaler.SetOptimal()
		}
	}

	if b.platform != nil {
		b.platform.MarkIPRequestStarted(
			b.coreID, b.ipType, b.id, b.frameNum)
	}
}

// MemResponse delivers a memory response to the block.
func (b *Block) MemResponse(addr uint64, isRead bool) {
	switch b.params.Kind {
	case DMA:
		b.dmaResponse(isRead)
		return
	case Decoder, Encoder, NoCoder:
		if isRead {
			b.pipe.inBuffer++
		}
	}

	b.respCount++
}

// Tick runs one cycle of the block. It returns true if the block made
// progress.
func (b *Block) Tick() bool {
	b.stats.Ticks++

	switch b.params.Kind {
	case GPU:
		return b.tickGPU()
	case DMA:
		return b.tickDMA()
	}

	if !b.psm.Tick() {
		return false
	}

	if b.respPending {
		return b.respond()
	}

	if b.params.Kind.IsPipelined() {
		return b.tickPipeline()
	}

	return b.tickDevice()
}

func (b *Block) tickDevice() bool {
	if b.cyclesToSkip > 0 {
		b.cyclesToSkip--
		if b.cyclesToSkip > 0 {
			return true
		}
	}

	if b.busy && b.reqCount == 0 && b.respCount >= b.lines {
		b.busy = false
		b.respPending = true

		return b.respond()
	}

	if !b.busy {
		b.psm.AddIdle(1)
		return false
	}

	b.stats.WorkingCycles++

	if b.reqCount > 0 && !b.sendMemoryReq() {
		b.stats.MemStalls++
		return false
	}

	return true
}

// sendMemoryReq issues the next input line of the request.
func (b *Block) sendMemoryReq() bool {
	if !b.sw.EnqueueIPMemRequest(b.ipType, b.id, b.coreID, b.addr, b.isRead) {
		b.stats.MemRejected++
		return false
	}

	b.reqCount--
	b.addr += soc.CacheLineSize
	b.stats.MemReqs++
	b.countActivity()

	return true
}

func (b *Block) countActivity() {
	b.activityUs++
	b.activityMs++
	b.activityEpoch++
}

// respond tells the switch that the request is done. A full switch makes the
// block try again in the next cycle.
func (b *Block) respond() bool {
	if !b.sw.EnqueueIPResponse(b.ipType, b.id, b.coreID, b.frameNum,
		b.flowType, b.flowID) {
		return false
	}

	b.respPending = false

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    soc.HookPosIPRequestDone,
			Item: soc.FrameEvent{
				Tick:     b.platform.Now(),
				Agent:    b.ipType,
				AgentID:  b.id,
				FrameNum: b.frameNum,
				FlowID:   b.flowID,
			},
		})
	}

	return true
}
