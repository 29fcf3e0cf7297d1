package ip

import (
	"errors"
	"io"
	"log"

	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// NoFlow is the flow ID of work that belongs to no flow of the application.
const NoFlow = -1

type gpuState struct {
	reader *trace.Reader
	ended  bool

	computeLeft int64
	lastDCTick  uint64
	fpsStalls   float64

	writeToDC bool
	dcAddr    uint64

	pending     bool
	pendingAddr uint64
	pendingRead bool

	instsUs uint64
	instsMs uint64
}

// IsEnabled tells if the block is a GPU with a trace to run.
func (b *Block) IsEnabled() bool {
	return b.gpu != nil && b.gpu.reader != nil
}

// TraceEnded tells if the GPU has consumed its whole trace.
func (b *Block) TraceEnded() bool {
	return b.gpu != nil && b.gpu.ended
}

func (b *Block) tickGPU() bool {
	g := b.gpu
	if g == nil || g.reader == nil {
		log.Panicf("%s has no trace", b.Name())
	}

	if g.pending && !b.sendGPULine() {
		return false
	}

	if g.fpsStalls > 0 {
		return b.waitForDeadline()
	}

	if g.writeToDC {
		b.issueGPULine(g.dcAddr, false)
		g.dcAddr += soc.CacheLineSize

		if g.dcAddr >= soc.DC1Addr+soc.FrameSize {
			g.writeToDC = false
			b.frameToDisplay()
		}

		return true
	}

	if !b.psm.Tick() {
		return false
	}

	if g.computeLeft > 0 {
		g.computeLeft--
		g.instsUs++
		g.instsMs++
		b.stats.InstsCommitted++
		b.countActivity()

		return true
	}

	if g.ended {
		b.psm.AddIdle(1)
		return false
	}

	b.readLine()

	return true
}

// waitForDeadline idles until the next display slot.
func (b *Block) waitForDeadline() bool {
	g := b.gpu

	b.stats.FPSStallCycles++
	g.fpsStalls -= soc.RefFreq.InGHz() / b.scaler.FreqGHz()
	b.psm.AddIdle(1)

	if g.fpsStalls <= 0 {
		g.fpsStalls = 0
		g.lastDCTick = b.platform.Now()

		if b.psm.IsActive() {
			b.platform.MarkIPRequestStarted(0, b.ipType, b.id, 0)
		} else {
			b.psm.Wake()
		}
	}

	b.psm.Tick()

	return false
}

// frameToDisplay asks the switch to forward the rendered frame to the
// display controller.
func (b *Block) frameToDisplay() {
	if !b.sw.EnqueueIPResponse(b.ipType, b.id, 0,
		int(b.stats.FramesDisplayed), soc.DC, 0) {
		log.Printf("%s: cannot hand frame %d to the display",
			b.Name(), b.stats.FramesDisplayed)
	}

	b.stats.FramesDisplayed++
}

func (b *Block) readLine() {
	g := b.gpu

	tok, err := g.reader.Next()
	b.stats.TraceLines++

	switch {
	case errors.Is(err, io.EOF):
		g.ended = true
		return
	case errors.Is(err, trace.ErrMalformedToken):
		b.stats.MalformedLines++
		log.Printf("%s: %v", b.Name(), err)

		return
	case err != nil:
		log.Printf("%s: trace read failed: %v", b.Name(), err)
		g.ended = true

		return
	}

	switch tok.Kind {
	case trace.Compute:
		g.computeLeft = tok.Insts
	case trace.Load:
		b.issueGPULine(soc.GPUAddr+tok.Addr, true)
	case trace.Store:
		b.issueGPULine(soc.GPUAddr+tok.Addr, false)
	case trace.Rendered:
		b.rendered()
	case trace.End:
		log.Printf("%s: reached the end of the trace", b.Name())
		g.ended = true
	default:
		b.stats.MalformedLines++
		log.Printf("%s: unexpected %s line %q", b.Name(), tok.Kind, tok.Op)
	}
}

func (b *Block) rendered() {
	g := b.gpu
	now := b.platform.Now()
	sinceLast := now - g.lastDCTick

	b.platform.MarkIPRequestCompleted(0, b.ipType, b.id, b.frameNum, NoFlow)

	g.writeToDC = true
	g.dcAddr = soc.DC1Addr
	b.frameNum++

	if sinceLast < soc.FrameTicks {
		g.fpsStalls = float64(soc.FrameTicks - sinceLast)
		return
	}

	g.lastDCTick = now
	b.stats.FramesDropped++

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    soc.HookPosFrameDropped,
			Item: soc.FrameEvent{
				Tick:     now,
				Agent:    b.ipType,
				AgentID:  b.id,
				FrameNum: b.frameNum - 1,
				FlowID:   NoFlow,
				Cause:    "Render",
			},
		})
	}
}

func (b *Block) issueGPULine(addr uint64, isRead bool) {
	g := b.gpu
	g.pending = true
	g.pendingAddr = addr
	g.pendingRead = isRead

	b.sendGPULine()
}

func (b *Block) sendGPULine() bool {
	g := b.gpu

	if !b.sw.EnqueueIPMemRequest(
		b.ipType, b.id, 0, g.pendingAddr, g.pendingRead) {
		b.stats.MemRejected++
		b.stats.MemStalls++

		return false
	}

	g.pending = false
	b.stats.MemReqs++

	return true
}
