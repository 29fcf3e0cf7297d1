package core

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

type eventRecorder struct {
	pos    *sim.HookPos
	events []soc.FrameEvent
}

func (r *eventRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == r.pos {
		r.events = append(r.events, ctx.Item.(soc.FrameEvent))
	}
}

func tickN(c *Comp, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

var _ = Describe("Reorder buffer", func() {
	var (
		mockCtrl *gomock.Controller
		sw       *MockSwitch
		platform *MockPlatform
	)

	build := func(lines string, width int, inOrder bool) *Comp {
		return MakeBuilder().
			WithSwitch(sw).
			WithPlatform(platform).
			WithIssueWidth(width).
			WithInOrder(inOrder).
			WithTrace(trace.NewReader(strings.NewReader(lines),
				trace.CPUDialect), nil).
			Build("SoC.Core[0]")
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sw = NewMockSwitch(mockCtrl)
		platform = NewMockPlatform(mockCtrl)
		platform.EXPECT().Now().Return(uint64(0)).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should commit a compute batch and a load", func() {
		c := build("CPU 1000 0\nMMU_ld 100 64\n", 2, false)

		sw.EXPECT().
			EnqueueCoreMemRequest(0, uint64(0x100), true).
			Return(true).
			Times(1)

		tickN(c, 600)

		Expect(c.ROBOccupancy()).To(Equal(1))
		Expect(c.Stats().InstsCommitted).To(Equal(uint64(1000)))

		Expect(c.MemResponse(0x100, true)).To(BeTrue())
		c.Tick()

		Expect(c.ROBOccupancy()).To(BeZero())
		Expect(c.Stats().InstsCommitted).To(Equal(uint64(1001)))
		Expect(c.IsDone()).To(BeTrue())
	})

	It("should retry a load that the switch rejects", func() {
		c := build("MMU_ld 40 64\n", 1, false)

		gomock.InOrder(
			sw.EXPECT().
				EnqueueCoreMemRequest(0, uint64(0x40), true).
				Return(false),
			sw.EXPECT().
				EnqueueCoreMemRequest(0, uint64(0x40), true).
				Return(true),
		)

		tickN(c, 5)

		Expect(c.Stats().MemFullStalls).To(Equal(uint64(1)))
		Expect(c.ROBOccupancy()).To(Equal(1))
	})

	It("should merge accesses to a pending address", func() {
		c := build("MMU_ld 40 64\nMMU_st 40 64\n", 1, false)

		sw.EXPECT().
			EnqueueCoreMemRequest(0, uint64(0x40), true).
			Return(true)

		tickN(c, 4)

		Expect(c.ROBOccupancy()).To(Equal(1))
		Expect(c.Stats().MemReqs).To(Equal(uint64(1)))
	})

	It("should relocate addresses into the window of the core", func() {
		c := MakeBuilder().
			WithID(1).
			WithSwitch(sw).
			WithPlatform(platform).
			WithTrace(trace.NewReader(strings.NewReader("MMU_st 40 64\n"),
				trace.CPUDialect), nil).
			Build("SoC.Core[1]")

		sw.EXPECT().
			EnqueueCoreMemRequest(1, soc.GiB+0x40, false).
			Return(true)

		tickN(c, 3)
	})

	It("should run compute ahead of a stalled load", func() {
		c := build("MMU_ld 40 64\nCPU 10 0\n", 1, false)

		sw.EXPECT().
			EnqueueCoreMemRequest(0, uint64(0x40), true).
			Return(true)

		tickN(c, 20)

		Expect(c.Stats().InstsCommitted).To(Equal(uint64(10)))
		Expect(c.ROBOccupancy()).To(Equal(2))

		c.MemResponse(0x40, true)
		tickN(c, 2)

		Expect(c.Stats().InstsCommitted).To(Equal(uint64(11)))
		Expect(c.ROBOccupancy()).To(BeZero())
	})

	It("should not pass a stalled head when in order", func() {
		c := build("MMU_ld 40 64\nCPU 10 0\n", 1, true)

		sw.EXPECT().
			EnqueueCoreMemRequest(0, uint64(0x40), true).
			Return(true)

		tickN(c, 20)

		Expect(c.Stats().InstsCommitted).To(BeZero())
		Expect(c.Stats().ROBFullStalls).NotTo(BeZero())

		c.MemResponse(0x40, true)
		tickN(c, 12)

		Expect(c.Stats().InstsCommitted).To(Equal(uint64(11)))
		Expect(c.ROBOccupancy()).To(BeZero())
	})

	It("should never hold more than the maximum transactions", func() {
		var lines strings.Builder
		for i := 0; i < 2*MaxTransactions; i++ {
			fmt.Fprintf(&lines, "MMU_ld %x 64\n", 0x1000+64*i)
		}

		c := build(lines.String(), 1, false)

		sw.EXPECT().
			EnqueueCoreMemRequest(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(false).
			AnyTimes()

		tickN(c, 3*MaxTransactions)

		Expect(c.ROBOccupancy()).To(Equal(MaxTransactions))
	})

	It("should force a stuck head out", func() {
		c := build("MMU_ld 40 64\n", 1, false)
		recorder := &eventRecorder{pos: soc.HookPosDeadlock}
		c.AcceptHook(recorder)

		sw.EXPECT().
			EnqueueCoreMemRequest(0, uint64(0x40), true).
			Return(true)

		tickN(c, 2*DeadlockPeriod)

		Expect(c.ROBOccupancy()).To(BeZero())
		Expect(c.Stats().Deadlocks).To(Equal(uint64(1)))
		Expect(recorder.events).To(HaveLen(1))
		Expect(recorder.events[0].Addr).To(Equal(uint64(0x40)))
	})

	It("should report responses that match no access", func() {
		c := build("", 1, false)

		Expect(c.MemResponse(0x99, true)).To(BeFalse())
		Expect(c.Stats().OrphanResponses).To(Equal(uint64(1)))
	})

	It("should panic when committing a head that is not ready", func() {
		c := build("", 1, false)
		c.addMemoryAccess(0x40, true)

		Expect(func() { c.commitHead() }).To(Panic())
	})
})
