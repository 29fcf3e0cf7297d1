package core

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

var _ = Describe("Frames", func() {
	var (
		mockCtrl *gomock.Controller
		sw       *MockSwitch
		platform *MockPlatform
		now      uint64
		flows    *flow.Table
	)

	build := func(lines string, app soc.AppID, appType soc.AppType) *Comp {
		return MakeBuilder().
			WithSwitch(sw).
			WithPlatform(platform).
			WithFlowTable(flows).
			WithApp(app).
			WithAppType(appType).
			WithFreqGHz(1.0).
			WithTrace(
				trace.NewReader(strings.NewReader(lines), trace.CPUDialect),
				trace.NewReader(strings.NewReader(lines), trace.CPUDialect),
			).
			Build("SoC.Core[0]")
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sw = NewMockSwitch(mockCtrl)
		platform = NewMockPlatform(mockCtrl)
		platform.EXPECT().Now().DoAndReturn(func() uint64 { return now }).
			AnyTimes()
		now = 0

		flows = flow.MakeBuilder().
			WithFlow(soc.YouTube, soc.CPU, soc.VD, soc.DC).
			WithFlow(soc.AudioPlay, soc.CPU, soc.AD, soc.SND).
			WithFlow(soc.OtherApp, soc.CPU, soc.CAM, soc.IMG, soc.DC).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should wait for the display slot before calling the first stage",
		func() {
			c := build("FB-UP 0 0\n", soc.YouTube, soc.VideoPlayback)

			now = soc.FrameTicks - 1000
			platform.EXPECT().MarkIPRequestCompleted(0, soc.CPU, 0, 0, 0)
			c.Tick()

			// 1000 reference ticks are 100 cycles at 1 GHz.
			tickN(c, 99)
			Expect(c.Stats().FramesDisplayed).To(BeZero())

			platform.EXPECT().MarkIPRequestStarted(0, soc.CPU, 0, 0)
			sw.EXPECT().IsIPReqLimitReached(soc.VD).Return(false)
			sw.EXPECT().EnqueueCoreIPRequest(sa.Request{
				CoreID:   0,
				Target:   soc.VD,
				Addr:     soc.VDAddr,
				Size:     soc.FrameSize / soc.VideoCodingRatio,
				IsRead:   true,
				FrameNum: 0,
				FlowType: soc.DC,
				FlowID:   0,
			})
			c.Tick()

			Expect(c.Stats().FramesDisplayed).To(Equal(uint64(1)))
			Expect(c.Stats().FPSStallCycles).To(Equal(uint64(100)))
			Expect(c.Stats().IPReqs).To(Equal(uint64(1)))
		})

	It("should drop a late frame and blame the memory", func() {
		c := build("FB-UP 0 0\nMMU_ld 40 64\nFB-UP 0 0\n",
			soc.YouTube, soc.VideoPlayback)
		recorder := &eventRecorder{pos: soc.HookPosFrameDropped}
		c.AcceptHook(recorder)

		sw.EXPECT().
			EnqueueCoreMemRequest(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(false).
			AnyTimes()
		sw.EXPECT().IsIPReqLimitReached(gomock.Any()).Return(false).AnyTimes()
		platform.EXPECT().
			MarkIPRequestCompleted(0, soc.CPU, 0, 0, 0).
			Times(2)

		now = soc.FrameTicks + 5
		sw.EXPECT().EnqueueCoreIPRequest(gomock.Any())
		tickN(c, 2)

		Expect(c.Stats().FramesDisplayed).To(Equal(uint64(1)))

		now = 3 * soc.FrameTicks
		sw.EXPECT().EnqueueCoreIPRequest(sa.Request{
			CoreID:   0,
			Target:   soc.DC,
			Addr:     soc.DC0Addr,
			Size:     soc.FrameSize,
			IsRead:   true,
			FrameNum: 0,
			FlowType: soc.DC,
			FlowID:   0,
		})
		c.Tick()

		stats := c.Stats()
		Expect(stats.FramesDropped).To(Equal(uint64(1)))
		Expect(stats.DroppedByMem).To(Equal(uint64(1)))
		Expect(recorder.events).To(HaveLen(1))
		Expect(recorder.events[0].Cause).To(Equal(CauseMem))
	})

	It("should count a call to a full IP queue as a stall", func() {
		c := build("NW 0 0\n", soc.OtherApp, soc.CoreBound)

		sw.EXPECT().IsIPReqLimitReached(soc.NW).Return(true)
		c.Tick()

		Expect(c.Stats().IPFullStalls).To(Equal(uint64(1)))
		Expect(c.Stats().IPReqs).To(BeZero())
		Expect(c.Stats().IPCallsInTrace[soc.NW]).To(Equal(uint64(1)))
	})

	It("should start the camera only after a frame-buffer update", func() {
		c := build("CAM 0 0 a b c\nFB-UP 0 0\nCAM 0 0 a b c\n",
			soc.OtherApp, soc.CoreBound)

		c.Tick()
		Expect(c.Stats().IPCallsInTrace[soc.CAM]).To(BeZero())

		platform.EXPECT().MarkIPRequestCompleted(0, soc.CPU, 0, 0, 0)
		c.Tick()

		sw.EXPECT().IsIPReqLimitReached(soc.CAM).Return(false)
		sw.EXPECT().EnqueueCoreIPRequest(sa.Request{
			CoreID:   0,
			Target:   soc.CAM,
			Addr:     soc.CAMAddr,
			Size:     soc.FrameSize,
			FrameNum: 0,
			FlowType: soc.CAM,
			FlowID:   0,
		})
		c.Tick()

		Expect(c.Stats().IPCallsInTrace[soc.CAM]).To(Equal(uint64(1)))
	})

	It("should pace audio frames", func() {
		c := build("SND-IN 0 0\n", soc.AudioPlay, soc.AudioPlayback)

		now = 1000
		c.Tick()
		Expect(c.Stats().AudioFramesPlayed).To(BeZero())

		platform.EXPECT().MarkIPRequestStarted(0, soc.CPU, 0, 0)
		sw.EXPECT().IsIPReqLimitReached(soc.AD).Return(false)
		sw.EXPECT().EnqueueCoreIPRequest(sa.Request{
			CoreID:   0,
			Target:   soc.AD,
			Addr:     soc.ADAddr,
			Size:     soc.AudioFrameSize,
			IsRead:   true,
			FrameNum: 0,
			FlowType: soc.SND,
			FlowID:   0,
		})
		c.Tick()

		Expect(c.Stats().AudioFramesPlayed).To(Equal(uint64(1)))
		Expect(c.Stats().IPCallsInTrace[soc.AD]).To(Equal(uint64(1)))
	})

	It("should turn traced waits into idle stalls", func() {
		c := build("CPU 1000 4000000\nFB-UP 0 0\n",
			soc.YouTube, soc.DisplayBound)

		Expect(c.IdleRatio()).To(
			BeNumerically("~", 4e6/(16e6-1000), 1e-9))

		tickN(c, 10)

		Expect(c.Stats().IdleStallCycles).To(Equal(uint64(9)))
		Expect(c.Stats().InstsCommitted).To(BeZero())
	})

	It("should keep committing when a frame overruns its time", func() {
		c := build("CPU 20000000 1000\nFB-UP 0 0\n",
			soc.YouTube, soc.DisplayBound)

		Expect(c.IdleRatio()).To(BeZero())

		tickN(c, 10)

		Expect(c.Stats().IdleStallCycles).To(BeZero())
		Expect(c.Stats().InstsCommitted).To(BeNumerically(">", 0))
	})
})
