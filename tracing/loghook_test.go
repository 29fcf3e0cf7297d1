package tracing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

type namedDomain struct {
	sim.HookableBase
	sim.NamedBase
}

func newNamedDomain(name string) *namedDomain {
	return &namedDomain{NamedBase: sim.MakeNamedBase(name)}
}

var _ = Describe("LogHook", func() {
	var (
		buf    *bytes.Buffer
		hook   *LogHook
		domain *namedDomain
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		hook = NewLogHook(log.New(buf, "", 0))
		domain = newNamedDomain("SoC.Core[0]")
	})

	It("should log a dropped frame with its cause", func() {
		hook.Func(sim.HookCtx{
			Domain: domain,
			Pos:    soc.HookPosFrameDropped,
			Item: soc.FrameEvent{
				Tick:     100,
				Agent:    soc.CPU,
				FrameNum: 3,
				Cause:    "memory",
			},
		})

		Expect(buf.String()).
			To(Equal("100, SoC.Core[0], frame 3 dropped, memory\n"))
	})

	It("should log a deadlock", func() {
		hook.Func(sim.HookCtx{
			Domain: domain,
			Pos:    soc.HookPosDeadlock,
			Item:   soc.FrameEvent{Tick: 7, Addr: 0x40},
		})

		Expect(buf.String()).To(Equal("7, SoC.Core[0], deadlock at 0x40\n"))
	})

	It("should log a dropped flow request", func() {
		hook.Func(sim.HookCtx{
			Domain: newNamedDomain("SoC.SA"),
			Pos:    sa.HookPosChainDropped,
			Item:   sa.Request{Sender: soc.VD, Target: soc.DC},
		})

		Expect(buf.String()).To(ContainSubstring("SoC.SA, flow request dropped"))
	})

	It("should only log negative slack", func() {
		hook.Func(sim.HookCtx{
			Domain: domain,
			Pos:    platform.HookPosSlackSampled,
			Item:   platform.SlackSample{TimeMs: 16, Slack: 2},
		})
		Expect(buf.Len()).To(BeZero())

		hook.Func(sim.HookCtx{
			Domain: domain,
			Pos:    platform.HookPosSlackSampled,
			Item:   platform.SlackSample{TimeMs: 32, Slack: -1.5},
		})
		Expect(buf.String()).To(Equal("32.000ms, SoC.Core[0], slack -1.500ms\n"))
	})

	It("should log displayed frames only when verbose", func() {
		ctx := sim.HookCtx{
			Domain: domain,
			Pos:    soc.HookPosFrameDisplayed,
			Item:   soc.FrameEvent{Tick: 5, FrameNum: 1},
		}

		hook.Func(ctx)
		Expect(buf.Len()).To(BeZero())

		hook.Verbose().Func(ctx)
		Expect(buf.String()).
			To(Equal("5, SoC.Core[0], Frame Displayed, frame 1\n"))
	})

	It("should ignore other positions", func() {
		hook.Func(sim.HookCtx{
			Domain: domain,
			Pos:    sim.HookPosBufPush,
			Item:   1,
		})

		Expect(buf.Len()).To(BeZero())
	})
})
