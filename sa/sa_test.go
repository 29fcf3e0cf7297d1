package sa

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

type chainDropRecorder struct {
	dropped []Request
}

func (r *chainDropRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == HookPosChainDropped {
		r.dropped = append(r.dropped, ctx.Item.(Request))
	}
}

var _ = Describe("Switch", func() {
	var (
		mockCtrl *gomock.Controller
		memory   *MockMemory
		platform *MockPlatform
		builder  Builder
		comp     *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		memory = NewMockMemory(mockCtrl)
		platform = NewMockPlatform(mockCtrl)
		memory.EXPECT().NumChannels().Return(1).AnyTimes()

		builder = MakeBuilder().
			WithMemory(memory).
			WithPlatform(platform)
		comp = builder.Build("SoC.SA")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("admission", func() {
		BeforeEach(func() {
			comp = builder.
				WithMaxMemReqs(2).
				WithMaxIPMemReqs(1).
				Build("SoC.SA")
		})

		It("should reject core requests when the request queues are full", func() {
			Expect(comp.EnqueueCoreMemRequest(0, 0x100, true)).To(BeTrue())
			Expect(comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)).
				To(BeTrue())
			Expect(comp.EnqueueCoreMemRequest(0, 0x140, true)).To(BeFalse())

			Expect(comp.coreMemReq.Size()).To(Equal(1))
			Expect(comp.Stats().Rejected).To(Equal(uint64(1)))
		})

		It("should reject IP requests when the IP queue is full", func() {
			Expect(comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)).
				To(BeTrue())
			Expect(comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr+64, true)).
				To(BeFalse())

			Expect(comp.ipMemReq.Size()).To(Equal(1))
		})

		It("should reject requests when the response queues are full", func() {
			comp = builder.WithMaxMemResps(1).Build("SoC.SA")

			Expect(comp.MemResponse(0x100, true, soc.CPU, 0)).To(BeTrue())
			Expect(comp.MemResponse(0x140, true, soc.CPU, 0)).To(BeFalse())
			Expect(comp.EnqueueCoreMemRequest(0, 0x180, true)).To(BeFalse())
			Expect(comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)).
				To(BeFalse())
		})

		It("should report when an IP queue is full", func() {
			comp = builder.WithMaxIPReqs(1).Build("SoC.SA")

			Expect(comp.IsIPReqLimitReached(soc.DC)).To(BeFalse())
			comp.EnqueueCoreIPRequest(Request{Target: soc.DC, CoreID: 0})
			Expect(comp.IsIPReqLimitReached(soc.DC)).To(BeTrue())
			Expect(comp.EnqueueIPIPRequest(Request{Target: soc.DC})).
				To(BeFalse())
		})

		It("should panic if a core overflows an IP queue", func() {
			comp = builder.WithMaxIPReqs(1).Build("SoC.SA")
			comp.EnqueueCoreIPRequest(Request{Target: soc.DC})

			Expect(func() {
				comp.EnqueueCoreIPRequest(Request{Target: soc.DC})
			}).To(Panic())
		})
	})

	Context("memory responses", func() {
		It("should panic if a core receives an IP address", func() {
			Expect(func() {
				comp.MemResponse(soc.VDAddr, true, soc.CPU, 0)
			}).To(Panic())
		})

		It("should panic if an IP receives a core address", func() {
			Expect(func() {
				comp.MemResponse(0x100, true, soc.VD, 0)
			}).To(Panic())
		})

		It("should deliver the core response first", func() {
			comp.MemResponse(soc.VDAddr, true, soc.VD, 0)
			comp.MemResponse(0x100, true, soc.CPU, 1)

			platform.EXPECT().MemCoreResponse(1, uint64(0x100), true)

			Expect(comp.Tick()).To(BeTrue())
			Expect(comp.memIPResp.Size()).To(Equal(1))
		})

		It("should wait for the transmission of a read", func() {
			comp.MemResponse(0x100, true, soc.CPU, 0)
			comp.MemResponse(0x140, false, soc.CPU, 0)

			platform.EXPECT().MemCoreResponse(0, uint64(0x100), true)
			comp.Tick()

			comp.Tick()
			comp.Tick()
			Expect(comp.memCoreResp.Size()).To(Equal(1))

			platform.EXPECT().MemCoreResponse(0, uint64(0x140), false)
			comp.Tick()
			Expect(comp.memCoreResp.Size()).To(Equal(0))
		})

		It("should not wait in perfect memory mode", func() {
			comp = builder.WithPerfectMemory(true).Build("SoC.SA")
			comp.MemResponse(0x100, true, soc.CPU, 0)
			comp.MemResponse(0x140, true, soc.CPU, 0)

			platform.EXPECT().MemCoreResponse(0, gomock.Any(), true).Times(2)
			comp.Tick()
			comp.Tick()
		})
	})

	Context("memory requests", func() {
		It("should forward core requests before IP requests", func() {
			comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)
			comp.EnqueueCoreMemRequest(2, 0x100, false)

			memory.EXPECT().
				Enqueue(soc.CPU, 2, 2, uint64(0x100), false).
				Return(true)

			comp.Tick()

			Expect(comp.coreMemReq.Size()).To(Equal(0))
			Expect(comp.ipMemReq.Size()).To(Equal(1))
		})

		It("should not forward IP requests while a core request waits", func() {
			comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)
			comp.EnqueueCoreMemRequest(0, 0x100, true)

			memory.EXPECT().
				Enqueue(soc.CPU, 0, 0, uint64(0x100), true).
				Return(false)

			comp.Tick()

			Expect(comp.coreMemReq.Size()).To(Equal(1))
			Expect(comp.ipMemReq.Size()).To(Equal(1))
		})

		It("should forward one request per channel", func() {
			memory = NewMockMemory(mockCtrl)
			memory.EXPECT().NumChannels().Return(2).AnyTimes()
			comp = builder.WithMemory(memory).Build("SoC.SA")

			comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr, true)
			comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr+64, true)
			comp.EnqueueIPMemRequest(soc.VD, 0, 0, soc.VDAddr+128, true)

			memory.EXPECT().
				Enqueue(soc.VD, 0, 0, gomock.Any(), true).
				Return(true).
				Times(2)

			comp.Tick()

			Expect(comp.ipMemReq.Size()).To(Equal(1))
		})
	})

	Context("IP requests", func() {
		It("should forward the lowest IP type first", func() {
			comp.EnqueueCoreIPRequest(Request{Target: soc.VD, CoreID: 0})
			comp.EnqueueCoreIPRequest(Request{Target: soc.DC, CoreID: 0})

			platform.EXPECT().
				EnqueueIPReq(gomock.Any()).
				DoAndReturn(func(req Request) bool {
					Expect(req.Target).To(Equal(soc.DC))
					Expect(req.Sender).To(Equal(soc.CPU))
					return true
				})

			comp.Tick()
		})

		It("should try the next IP type if the target is busy", func() {
			comp.EnqueueCoreIPRequest(Request{Target: soc.DC})
			comp.EnqueueCoreIPRequest(Request{Target: soc.VD})

			platform.EXPECT().
				EnqueueIPReq(gomock.Any()).
				DoAndReturn(func(req Request) bool {
					return req.Target == soc.VD
				}).
				Times(2)

			comp.Tick()

			Expect(comp.ipReq[soc.DC].Size()).To(Equal(1))
			Expect(comp.ipReq[soc.VD].Size()).To(Equal(0))
		})
	})

	Context("flow chaining", func() {
		var (
			issued []Request
		)

		BeforeEach(func() {
			table := flow.MakeBuilder().
				WithFlow(soc.VideoRecord, soc.MIC, soc.AE, soc.MMCOut).
				WithFlow(soc.VideoRecord, soc.AD, soc.SND).
				WithFlow(soc.VideoRecord, soc.MMCIn, soc.VD, soc.DC).
				WithFlow(soc.VideoRecord, soc.CPU, soc.CAM, soc.IMG, soc.DC).
				WithFlow(soc.VideoRecord, soc.CPU, soc.CAM, soc.VE, soc.MMCOut).
				Build()
			comp = builder.WithFlowTable(table).Build("SoC.SA")

			issued = nil
			platform.EXPECT().AppOf(0).Return(soc.VideoRecord).AnyTimes()
			platform.EXPECT().
				EnqueueIPReq(gomock.Any()).
				DoAndReturn(func(req Request) bool {
					issued = append(issued, req)
					return true
				}).
				AnyTimes()
		})

		It("should advance a camera frame through the flow", func() {
			platform.EXPECT().MarkIPRequestCompleted(0, soc.CAM, 0, 5, 3)
			comp.EnqueueIPResponse(soc.CAM, 0, 0, 5, soc.DC, 3)

			comp.Tick()
			comp.Tick()

			Expect(issued).To(HaveLen(2))
			Expect(issued[0].Target).To(Equal(soc.VE))
			Expect(issued[0].FlowID).To(Equal(4))
			Expect(issued[1].Target).To(Equal(soc.IMG))
			Expect(issued[1].FrameNum).To(Equal(5))
			Expect(issued[1].FlowID).To(Equal(3))
			Expect(issued[1].Addr).To(Equal(soc.CAMAddr))
			Expect(issued[1].IsRead).To(BeTrue())
			Expect(issued[1].FlowType).To(Equal(soc.DC))

			issued = nil
			platform.EXPECT().MarkIPRequestCompleted(0, soc.IMG, 0, 5, 3)
			comp.EnqueueIPResponse(soc.IMG, 0, 0, 5, soc.DC, 3)

			comp.Tick()
			comp.Tick()

			Expect(issued).To(HaveLen(1))
			Expect(issued[0].Target).To(Equal(soc.DC))
			Expect(issued[0].FrameNum).To(Equal(5))
			Expect(issued[0].Sender).To(Equal(soc.IMG))
			Expect(issued[0].FlowID).To(Equal(3))
		})

		It("should not chain past the network", func() {
			table := flow.MakeBuilder().
				WithFlow(soc.Skype, soc.CPU, soc.CAM, soc.VE, soc.NW).
				Build()
			comp = builder.WithFlowTable(table).Build("SoC.SA")
			platform.EXPECT().AppOf(1).Return(soc.Skype).AnyTimes()
			platform.EXPECT().MarkIPRequestCompleted(1, soc.VE, 0, 2, 0)

			comp.EnqueueIPResponse(soc.VE, 0, 1, 2, soc.NW, 0)
			comp.Tick()

			Expect(issued).To(BeEmpty())
		})

		It("should report dropped chains", func() {
			recorder := &chainDropRecorder{}
			comp = builder.
				WithFlowTable(flow.MakeBuilder().
					WithFlow(soc.VideoRecord, soc.MIC, soc.AE, soc.MMCOut).
					Build()).
				WithMaxIPReqs(1).
				Build("SoC.SA")
			comp.AcceptHook(recorder)

			comp.EnqueueIPIPRequest(Request{Target: soc.AE})
			platform.EXPECT().MarkIPRequestCompleted(0, soc.MIC, 0, 1, 0)
			comp.EnqueueIPResponse(soc.MIC, 0, 0, 1, soc.MMCOut, 0)

			comp.sendIPResponse()

			Expect(recorder.dropped).To(HaveLen(1))
			Expect(recorder.dropped[0].Target).To(Equal(soc.AE))
			Expect(comp.Stats().ChainsDropped).To(Equal(uint64(1)))
		})
	})

	It("should compute power from activity", func() {
		Expect(comp.PowerIn1ms()).To(BeNumerically("~", 0.025, 1e-9))

		comp.activity = 750_000
		Expect(comp.Activity()).To(BeNumerically("~", 1.0, 1e-9))
		Expect(comp.PowerIn1ms()).
			To(BeNumerically("~", 0.025+0.5*1.21*0.5/0.605, 1e-9))
		Expect(comp.Activity()).To(Equal(0.0))
	})
})
