package core

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
	"github.com/sarchlab/gemdroid/trace"
)

var _ = Describe("Core power", func() {
	var (
		mockCtrl *gomock.Controller
		sw       *MockSwitch
		platform *MockPlatform
		table    power.VFTable
	)

	build := func(lines string, g soc.Governor) *Comp {
		return MakeBuilder().
			WithSwitch(sw).
			WithPlatform(platform).
			WithGovernor(g).
			WithFreqGHz(0.9).
			WithOptimalFreqGHz(0.9).
			WithTrace(trace.NewReader(strings.NewReader(lines),
				trace.CPUDialect), nil).
			Build("SoC.Core[0]")
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sw = NewMockSwitch(mockCtrl)
		platform = NewMockPlatform(mockCtrl)
		platform.EXPECT().Now().Return(uint64(0)).AnyTimes()
		table = power.NewCoreVFTable()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should charge leakage only when nothing commits", func() {
		c := build("", soc.GovernorDisabled)

		tickN(c, 1000)

		Expect(c.PowerIn1ms()).To(
			BeNumerically("~", power.CoreStaticPower*1000/0.9e6, 1e-12))
		Expect(c.LastPower()).To(
			BeNumerically("~", power.CoreStaticPower*1000/0.9e6, 1e-12))
		Expect(c.PowerIn1ms()).To(BeZero())
	})

	It("should charge switching power for committed instructions", func() {
		c := build("CPU 100 0\n", soc.GovernorDisabled)

		tickN(c, 200)

		d := table.At(6).Dynamic
		Expect(c.PowerIn1us()).To(BeNumerically("~",
			power.CoreStaticPower*200/900+d*100/900, 1e-9))
	})

	It("should report the load of the last period", func() {
		c := build("CPU 100 0\n", soc.GovernorDisabled)

		tickN(c, 200)

		Expect(c.LoadInLastEpoch(1)).To(BeNumerically("~", 100/0.9e6, 1e-12))
		Expect(c.LoadInLastEpoch(1)).To(BeZero())
	})

	It("should estimate half of the power of the current point", func() {
		c := build("", soc.GovernorDisabled)
		p := table.At(6)

		Expect(c.PowerEst()).To(
			BeNumerically("~", p.Static/2+p.Dynamic/2, 1e-12))
	})

	It("should keep the activity when estimating energy", func() {
		c := build("", soc.GovernorDisabled)
		curr := table.At(6)
		next := table.At(12)

		e := c.EnergyEst(10, curr.Static+0.5*curr.Dynamic, 1.8)

		Expect(e).To(BeNumerically("~", 5*next.Static+5*0.5*next.Dynamic, 1e-9))
	})

	It("should fit the frequency into a power budget", func() {
		c := build("", soc.GovernorDisabled)

		Expect(c.FreqForPower(1.0)).To(Equal(0.3))
		Expect(c.FreqForPower(0.3)).To(Equal(1.8))

		c.SetMaxAllowedFreq(1.0)
		Expect(c.FreqGHz()).To(Equal(0.3))
	})

	Context("when choosing a frequency for the slack", func() {
		It("should speed up by two steps on a negative slack", func() {
			c := build("", soc.GovernorSlack)

			freq, slack := c.FreqForSlackOptimal(10, 10, -1)

			Expect(freq).To(Equal(1.1))
			Expect(slack).To(BeNumerically("~", -1-(10*0.9/1.1-10), 1e-9))
		})

		It("should slow down as far as the slack allows", func() {
			c := build("", soc.GovernorSlack)
			c.Scaler().SetMax()

			freq, _ := c.FreqForSlackOptimal(10, 10, 2)
			Expect(freq).To(Equal(1.6))

			freq, _ = c.FreqForSlackOptimal(10, 10, 100)
			Expect(freq).To(Equal(0.9))
		})

		It("should move up to the optimal point", func() {
			c := build("", soc.GovernorSlack)
			c.Scaler().SetIndex(2)

			freq, _ := c.FreqForSlackOptimal(10, 10, 5)
			Expect(freq).To(Equal(0.9))
		})
	})

	It("should jump to the maximum when waking up under interactive",
		func() {
			c := build("", soc.GovernorInteractive)

			platform.EXPECT().MarkIPRequestStarted(0, soc.CPU, 0, 0)
			c.onActive()

			Expect(c.FreqGHz()).To(Equal(1.8))

			c.Scaler().Dec(1)
			Expect(c.FreqGHz()).To(Equal(1.8))
		})

	It("should fall asleep once the trace is done", func() {
		c := build("", soc.GovernorDisabled)

		tickN(c, int(power.CoreTiming.LowPowerEnter)+2)

		Expect(c.PowerState()).To(Equal(power.LowPower))
		Expect(c.IsDone()).To(BeTrue())
	})
})
