package tracing

import (
	"log"

	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// LogHook writes the frame drops, the deadlocks, the dropped flow requests,
// and the missed display intervals into a logger.
type LogHook struct {
	sim.LogHookBase

	verbose bool
}

// NewLogHook creates a LogHook that writes into the logger.
func NewLogHook(logger *log.Logger) *LogHook {
	h := new(LogHook)
	h.Logger = logger

	return h
}

// Verbose makes the hook also log the frames shown on time and every IP
// request that finishes.
func (h *LogHook) Verbose() *LogHook {
	h.verbose = true
	return h
}

// Func renders the event of the hook context.
func (h *LogHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case soc.HookPosFrameDropped:
		e := ctx.Item.(soc.FrameEvent)
		h.Printf("%d, %s, frame %d dropped, %s",
			e.Tick, domainName(ctx), e.FrameNum, e.Cause)
	case soc.HookPosDeadlock:
		e := ctx.Item.(soc.FrameEvent)
		h.Printf("%d, %s, deadlock at 0x%x",
			e.Tick, domainName(ctx), e.Addr)
	case sa.HookPosChainDropped:
		req := ctx.Item.(sa.Request)
		h.Printf("%s, flow request dropped, %s", domainName(ctx), req)
	case platform.HookPosSlackSampled:
		s := ctx.Item.(platform.SlackSample)
		if s.Slack < 0 {
			h.Printf("%.3fms, %s, slack %.3fms",
				s.TimeMs, domainName(ctx), s.Slack)
		}
	case soc.HookPosFrameDisplayed, soc.HookPosIPRequestDone:
		if h.verbose {
			e := ctx.Item.(soc.FrameEvent)
			h.Printf("%d, %s, %s, frame %d",
				e.Tick, domainName(ctx), ctx.Pos.Name, e.FrameNum)
		}
	}
}
