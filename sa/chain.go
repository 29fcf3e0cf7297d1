package sa

import (
	"log"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// chain issues the requests that follow a finished stage of a flow.
func (c *Comp) chain(rsp ipResponse) {
	app := c.platform.AppOf(rsp.coreID)
	flows := c.flows.Identify(app, rsp.sender)
	flow1 := flow.Pick(flows, 0)
	flow2 := flow.Pick(flows, 1)

	next := func(flowType soc.IPType) soc.IPType {
		return c.flows.NextIP(app, rsp.sender, flowType)
	}

	issue := func(
		target soc.IPType,
		addr uint64,
		size int,
		isRead bool,
		flowID int,
	) {
		req := Request{
			Sender:   rsp.sender,
			SenderID: rsp.senderID,
			CoreID:   rsp.coreID,
			Target:   target,
			Addr:     addr,
			Size:     size,
			IsRead:   isRead,
			FrameNum: rsp.frameNum,
			FlowType: rsp.flowType,
			FlowID:   flowID,
		}

		if !c.EnqueueIPIPRequest(req) {
			c.dropChain(req)
		}
	}

	switch rsp.sender {
	case soc.CAM:
		if next(soc.DC) == soc.IMG {
			issue(soc.IMG, soc.CAMAddr, 4*soc.FrameSize/2, true, flow1)
		}

		if next(soc.MMCOut) == soc.VE {
			issue(soc.VE, soc.CAMAddr, 4*soc.FrameSize, true, flow2)
		}

		if next(soc.NW) == soc.VE {
			issue(soc.VE, soc.CAMAddr, 4*soc.FrameSize, true, flow2)
		}
	case soc.MIC:
		issue(soc.AE, soc.MICAddr, 4*soc.AudioFrameSize, true, flow1)
	case soc.VD:
		issue(soc.DC, soc.VDAddr+soc.FrameSize, 4*soc.FrameSize, true, flow1)
	case soc.AD:
		issue(soc.SND, soc.ADAddr+soc.AudioFrameSize, 4*soc.AudioFrameSize,
			true, flow1)
	case soc.IMG:
		issue(soc.DC, soc.IMGAddr+soc.FrameSize, 4*soc.FrameSize, true, flow1)

		if next(soc.MMCOut) != soc.NoIP {
			issue(soc.MMCOut, soc.IMGAddr+soc.FrameSize, soc.FrameSize,
				false, flow2)
		}
	case soc.VE:
		if c.flows.Successor(app, soc.VE) == soc.NW {
			return
		}

		issue(soc.MMCOut, soc.VEAddr+soc.FrameSize,
			soc.FrameSize/soc.VideoCodingRatio, false, flow1)
	case soc.AE:
		if c.flows.Successor(app, soc.AE) == soc.NW {
			return
		}

		issue(soc.MMCOut, soc.AEAddr+soc.AudioFrameSize,
			soc.AudioFrameSize/soc.AudioCodingRatio, false, flow1)
	case soc.MMCIn:
		switch next(rsp.flowType) {
		case soc.AD:
			issue(soc.AD, soc.MMCInAddr,
				4*soc.AudioFrameSize/soc.AudioCodingRatio, true, flow1)
		case soc.IMG:
			issue(soc.IMG, soc.MMCInAddr, 4*soc.FrameSize/2, true, flow1)
		case soc.VD:
			issue(soc.VD, soc.MMCInAddr,
				4*soc.FrameSize/soc.VideoCodingRatio, true, flow1)
		}
	case soc.GPU:
		issue(soc.DC, soc.DC1Addr+soc.FrameSize, 4*soc.FrameSize, true, flow1)
	}
}

func (c *Comp) dropChain(req Request) {
	c.stats.ChainsDropped++

	log.Printf("%s: dropped chained request %s", c.Name(), req)

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosChainDropped,
			Item:   req,
		})
	}
}
