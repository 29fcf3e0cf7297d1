package core

import (
	"errors"
	"io"
	"log"
	"math"

	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

// lookaheadFrameMs is the frame length assumed when deriving the idle ratio.
const lookaheadFrameMs = 16

// networkPacketSize is the payload of one network call.
const networkPacketSize = 1562

// profileWindow is how long the memory profile of a frame lasts, in reference
// ticks.
const profileWindow = 300 * soc.TicksPerMicroSec

// The stall categories a dropped frame can be blamed on.
const (
	CauseROB   = "ROB"
	CauseMem   = "Memory"
	CauseIP    = "IP"
	CauseAudio = "Audio"
)

func (c *Comp) readLine() {
	tok, err := c.reader.Next()
	c.stats.TraceLines++

	switch {
	case errors.Is(err, io.EOF):
		c.ended = true
		return
	case errors.Is(err, trace.ErrMalformedToken):
		c.stats.MalformedLines++
		log.Printf("%s: %v", c.Name(), err)

		return
	case err != nil:
		log.Printf("%s: trace read failed: %v", c.Name(), err)
		c.ended = true

		return
	}

	switch tok.Kind {
	case trace.Compute:
		c.idleStalls = 0
		if c.idleRatio > 0 {
			stalls := float64(tok.WaitNs) * c.scaler.FreqGHz() / c.idleRatio
			if stalls >= 1 && !math.IsInf(stalls, 1) {
				c.idleStalls = uint64(stalls)
			}
		}

		c.addInstructions(tok.Insts)
	case trace.Load, trace.Store:
		if tok.Addr > soc.GiB {
			log.Printf("%s: trace address 0x%x beyond 1 GiB", c.Name(), tok.Addr)
		}

		c.addMemoryAccess(soc.CoreAddr(c.id, tok.Addr), tok.Kind == trace.Load)
	case trace.IPCall:
		c.processIPCall(tok)

		if tok.IsFrameBufferUpdate() && c.appType != soc.CoreBound &&
			c.needLookahead {
			c.updateIdleRatio()
		}
	case trace.End:
		c.ended = true
	}
}

// updateIdleRatio looks ahead to the next frame-buffer update and derives how
// long the traced waits of the coming frame should stall the core.
func (c *Comp) updateIdleRatio() {
	if c.lookahead == nil {
		c.needLookahead = false
		return
	}

	w := c.lookahead.ScanFrame()
	if w.Ended {
		c.needLookahead = false
	}

	c.idleRatio = w.IdleRatio(c.scaler.FreqGHz(), lookaheadFrameMs)
}

// processIPCall turns an IP call of the trace into a request to the first
// stage of the matching flow.
func (c *Comp) processIPCall(tok trace.Token) {
	req := sa.Request{
		CoreID:   c.id,
		IsRead:   true,
		FlowType: soc.NoIP,
	}

	switch {
	case tok.IsFrameBufferUpdate():
		if !c.frameCall(&req) {
			return
		}
	case tok.Is(trace.OpSoundOut):
		c.countCalls(soc.MIC, soc.AE)
		req.Target, req.Addr, req.Size = soc.MIC, soc.MICAddr, soc.AudioFrameSize
		req.IsRead = false
		req.FlowType = soc.MIC
	case tok.Is(trace.OpSoundIn):
		if !c.audioCall(&req) {
			return
		}
	case tok.Is(trace.OpNetwork):
		c.countCalls(soc.NW)
		req.Target, req.Addr, req.Size = soc.NW, soc.NWAddr, networkPacketSize
		req.IsRead = false
	case tok.Is(trace.OpCamera):
		if !c.readFBLine {
			return
		}

		c.readFBLine = false
		c.countCalls(soc.CAM, soc.IMG, soc.DC)
		req.Target, req.Addr, req.Size = soc.CAM, soc.CAMAddr, soc.FrameSize
		req.IsRead = false
		req.FlowType = soc.CAM
	default:
		return
	}

	if c.fpsStalls > 0 || c.audStalls > 0 {
		c.deferred = &req
		return
	}

	c.callIP(req)
}

// frameCall fills in the request of a frame-buffer update. It returns false
// if no IP needs to be called.
func (c *Comp) frameCall(req *sa.Request) bool {
	drop := c.isFrameDrop()
	c.readFBLine = true
	req.FlowType = soc.DC

	target := soc.DC
	if !drop {
		target = c.flows.NextIP(c.app, soc.CPU, soc.DC)
	}

	switch target {
	case soc.VD:
		req.Addr, req.Size = soc.VDAddr, soc.FrameSize/soc.VideoCodingRatio
	case soc.IMG:
		req.Addr, req.Size = soc.IMGAddr, soc.FrameSize/2
	case soc.VE:
		req.Addr, req.Size = soc.VEAddr, soc.FrameSize
	case soc.MMCIn:
		req.Addr, req.Size = soc.MMCInAddr, soc.FrameSize/soc.VideoCodingRatio
		req.IsRead = false
	case soc.DC:
		req.Addr, req.Size = soc.DC0Addr, soc.FrameSize
	default:
		c.platform.MarkIPRequestCompleted(
			c.id, soc.CPU, c.id, c.frameNum[soc.DC], 0)
		return false
	}

	c.countCalls(target)
	req.Target = target
	c.platform.MarkIPRequestCompleted(
		c.id, soc.CPU, c.id, c.frameNum[target], 0)

	return true
}

// audioCall fills in the request of a sound input call. It returns false if
// the application has no sound flow.
func (c *Comp) audioCall(req *sa.Request) bool {
	c.isAudioFrameDrop()
	req.FlowType = soc.SND

	switch next := c.flows.NextIP(c.app, soc.CPU, soc.SND); next {
	case soc.NoIP:
		return false
	case soc.MMCIn:
		c.countCalls(soc.MMCIn, soc.AD, soc.SND)
		req.Target, req.Addr = soc.MMCIn, soc.MMCInAddr
		req.Size = soc.AudioFrameSize / soc.AudioCodingRatio
		req.IsRead = false
	default:
		c.countCalls(soc.AD, soc.SND)
		req.Target, req.Addr, req.Size = soc.AD, soc.ADAddr, soc.AudioFrameSize
	}

	return true
}

func (c *Comp) countCalls(ips ...soc.IPType) {
	for _, ip := range ips {
		c.stats.IPCallsInTrace[ip]++
	}
}

// callIP queues a request for an IP unless the queue of the IP is full.
func (c *Comp) callIP(req sa.Request) {
	if c.sw.IsIPReqLimitReached(req.Target) {
		c.stats.IPFullStalls++
		c.thisFrame.ip++

		return
	}

	req.FrameNum = c.frameNum[req.Target]
	c.frameNum[req.Target]++
	req.FlowID = c.flows.FlowID(c.app, req.Target)

	c.stats.IPReqs++
	c.sw.EnqueueCoreIPRequest(req)
}

// isFrameDrop checks the display deadline at a frame boundary. A frame that
// comes early makes the core wait for the next display slot. A late one is
// dropped and blamed on the largest stall category of the frame.
func (c *Comp) isFrameDrop() bool {
	stalls := c.thisFrame
	c.thisFrame = frameStalls{}

	if c.appType != soc.DisplayBound && c.appType != soc.VideoPlayback {
		return false
	}

	now := c.now()
	c.frames++

	if c.lastDCTick == 0 {
		if now < soc.FrameTicks {
			c.fpsStalls = float64(soc.FrameTicks - now)
			return false
		}

		c.lastDCTick = now
		c.stats.FramesDisplayed++
		c.invokeFrameHook(soc.HookPosFrameDisplayed, c.frames, "")

		return false
	}

	since := now - c.lastDCTick
	if since < soc.FrameTicks {
		c.fpsStalls = float64(soc.FrameTicks - since)
		return false
	}

	c.lastDCTick = now
	c.stats.FramesDropped++

	cause := CauseIP

	switch {
	case stalls.rob > stalls.mem && stalls.rob > stalls.ip:
		cause = CauseROB
		c.stats.DroppedByROB++
	case stalls.mem > stalls.rob && stalls.mem > stalls.ip:
		cause = CauseMem
		c.stats.DroppedByMem++
	default:
		c.stats.DroppedByIP++
	}

	c.invokeFrameHook(soc.HookPosFrameDropped, c.frames, cause)

	return true
}

// isAudioFrameDrop checks the audio deadline at an audio boundary.
func (c *Comp) isAudioFrameDrop() bool {
	if c.appType != soc.AudioPlayback {
		return false
	}

	now := c.now()
	c.audioFrames++

	if c.lastSNDTick == 0 {
		c.audStalls = 1
		return false
	}

	since := now - c.lastSNDTick
	if since < soc.FrameTicks {
		c.audStalls = float64(soc.FrameTicks - since)
		return false
	}

	c.lastSNDTick = now
	c.stats.AudioFramesDropped++
	c.invokeFrameHook(soc.HookPosFrameDropped, c.audioFrames, CauseAudio)

	return true
}

// refTicksPerCycle returns how many reference ticks one core cycle lasts.
func (c *Comp) refTicksPerCycle() float64 {
	return soc.RefFreq.InGHz() / c.scaler.FreqGHz()
}

func (c *Comp) waitForFrameSlot() {
	c.stats.FPSStallCycles++
	c.fpsStalls -= c.refTicksPerCycle()
	c.idle()

	if c.fpsStalls > 0 {
		return
	}

	c.fpsStalls = 0
	c.stats.FramesDisplayed++
	c.lastDCTick = c.now()
	c.startProfile()
	c.invokeFrameHook(soc.HookPosFrameDisplayed, c.frames, "")
	c.resume()
}

func (c *Comp) waitForAudioSlot() {
	c.stats.AudioStallCycles++
	c.audStalls -= c.refTicksPerCycle()
	c.idle()

	if c.audStalls > 0 {
		return
	}

	c.audStalls = 0
	c.stats.AudioFramesPlayed++
	c.lastSNDTick = c.now()
	c.resume()
}

// resume wakes the core up at the end of a deadline wait and issues the IP
// call that waited for the slot.
func (c *Comp) resume() {
	if c.psm.IsActive() {
		c.platform.MarkIPRequestStarted(c.id, soc.CPU, c.id, 0)
	} else {
		c.psm.Wake()
	}

	if c.deferred != nil && c.fpsStalls <= 0 && c.audStalls <= 0 {
		req := *c.deferred
		c.deferred = nil
		c.callIP(req)
	}
}

func (c *Comp) invokeFrameHook(pos *sim.HookPos, frame int, cause string) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item: soc.FrameEvent{
			Tick:     c.now(),
			Agent:    soc.CPU,
			AgentID:  c.id,
			FrameNum: frame,
			Cause:    cause,
		},
	})
}

func (c *Comp) startProfile() {
	c.prof = profile{
		on:        true,
		startTick: c.now(),
		startCyc:  c.ticks,
	}
}

func (c *Comp) updateProfile() {
	if !c.prof.on || c.now() < c.prof.startTick+profileWindow {
		return
	}

	c.prof.active = c.ticks - c.prof.startCyc
	c.prof.on = false
}

// ProfileFractionOfMemInst returns the share of the profiled cycles at the
// start of the last frame that stalled on the reorder buffer or the memory.
// It is NaN until a profile has been taken.
func (c *Comp) ProfileFractionOfMemInst() float64 {
	if c.prof.active == 0 {
		return math.NaN()
	}

	return float64(c.prof.robFull+c.prof.memFull) / float64(c.prof.active)
}
