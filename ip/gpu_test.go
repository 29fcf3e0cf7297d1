package ip

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

type frameDropRecorder struct {
	events []soc.FrameEvent
}

func (r *frameDropRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == soc.HookPosFrameDropped {
		r.events = append(r.events, ctx.Item.(soc.FrameEvent))
	}
}

var _ = Describe("GPU", func() {
	var (
		mockCtrl *gomock.Controller
		platform *MockPlatform
		sw       *loopbackSwitch
		now      uint64
		blk      *Block
	)

	const gpuTrace = "GPU 3\nGMU_ld 100\nRendered 0 0\nEND\n"

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		platform = NewMockPlatform(mockCtrl)
		platform.EXPECT().Now().DoAndReturn(func() uint64 { return now }).
			AnyTimes()
		sw = &loopbackSwitch{}
		now = 0

		blk = MakeBuilder().
			WithType(soc.GPU).
			WithSwitch(sw).
			WithPlatform(platform).
			WithFreqGHz(0.2).
			WithTrace(trace.NewReader(strings.NewReader(gpuTrace),
				trace.GPUDialect)).
			Build("SoC.GPU")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start active when it has a trace", func() {
		Expect(blk.IsEnabled()).To(BeTrue())
		Expect(blk.PowerState()).To(Equal(power.Active))
	})

	It("should refuse requests", func() {
		Expect(func() { blk.EnqueueIPReq(sa.Request{Target: soc.GPU}) }).
			To(Panic())
	})

	It("should run compute and memory lines", func() {
		for i := 0; i < 5; i++ {
			blk.Tick()
		}

		Expect(blk.Stats().InstsCommitted).To(Equal(uint64(3)))
		Expect(sw.reqs).To(Equal([]lineReq{
			{addr: soc.GPUAddr + 100, isRead: true},
		}))
	})

	It("should skip a malformed line and keep going", func() {
		blk = MakeBuilder().
			WithType(soc.GPU).
			WithSwitch(sw).
			WithPlatform(platform).
			WithFreqGHz(0.2).
			WithTrace(trace.NewReader(
				strings.NewReader("GPU many\n"+gpuTrace),
				trace.GPUDialect)).
			Build("SoC.GPU")

		for i := 0; i < 6; i++ {
			blk.Tick()
		}

		Expect(blk.Stats().MalformedLines).To(Equal(uint64(1)))
		Expect(blk.Stats().InstsCommitted).To(Equal(uint64(3)))
		Expect(sw.reqs).To(Equal([]lineReq{
			{addr: soc.GPUAddr + 100, isRead: true},
		}))
	})

	It("should drop a late frame and still send it to the display", func() {
		recorder := &frameDropRecorder{}
		blk.AcceptHook(recorder)

		for i := 0; i < 5; i++ {
			blk.Tick()
		}

		now = soc.FrameTicks + 1
		platform.EXPECT().
			MarkIPRequestCompleted(0, soc.GPU, 0, 0, NoFlow)
		blk.Tick()

		Expect(blk.Stats().FramesDropped).To(Equal(uint64(1)))
		Expect(recorder.events).To(HaveLen(1))

		lines := int(soc.FrameSize / soc.CacheLineSize)
		for i := 0; i < lines; i++ {
			blk.Tick()
		}

		Expect(sw.writes()).To(HaveLen(lines))
		Expect(sw.writes()[0]).To(Equal(soc.DC1Addr))
		Expect(sw.resps).To(ConsistOf(ipResp{
			sender: soc.GPU, frameNum: 0, flowType: soc.DC, flowID: 0,
		}))
		Expect(blk.Stats().FramesDisplayed).To(Equal(uint64(1)))

		blk.Tick()
		Expect(blk.TraceEnded()).To(BeTrue())
	})

	It("should wait for the next display slot when early", func() {
		for i := 0; i < 5; i++ {
			blk.Tick()
		}

		now = soc.FrameTicks - 1000
		platform.EXPECT().
			MarkIPRequestCompleted(0, soc.GPU, 0, 0, NoFlow)
		blk.Tick()

		platform.EXPECT().MarkIPRequestStarted(0, soc.GPU, 0, 0)

		// 1000 reference ticks at 0.2 GHz are 20 GPU cycles.
		for i := 0; i < 20; i++ {
			Expect(blk.Tick()).To(BeFalse())
		}

		Expect(blk.Stats().FPSStallCycles).To(Equal(uint64(20)))
		Expect(blk.Stats().FramesDropped).To(BeZero())
		Expect(sw.writes()).To(BeEmpty())

		blk.Tick()
		Expect(sw.writes()).To(HaveLen(1))
	})
})

var _ = Describe("DMA", func() {
	It("should copy every line it reads", func() {
		sw := &loopbackSwitch{}
		blk := MakeBuilder().
			WithType(soc.DMA).
			WithSwitch(sw).
			Build("SoC.DMA")

		Expect(blk.EnqueueIPReq(sa.Request{
			Target: soc.DMA,
			Addr:   soc.CAMAddr,
			Size:   2 * soc.CacheLineSize,
		})).To(BeTrue())

		runUntilDone(blk, sw, 10)

		Expect(sw.reads()).To(Equal([]uint64{soc.CAMAddr, soc.CAMAddr + 64}))
		Expect(sw.writes()).To(Equal([]uint64{soc.DC0Addr, soc.DC0Addr + 64}))
		Expect(blk.IsBusy()).To(BeFalse())
	})
})
