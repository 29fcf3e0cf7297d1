package tracing

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/trace"
)

var _ = Describe("CollectTrace", func() {
	It("should not attach a hook twice", func() {
		domain := newNamedDomain("SoC")
		hook := NewLogHook(nil)

		CollectTrace(domain, hook)

		Expect(domain.NumHooks()).To(Equal(1))
		Expect(func() { CollectTrace(domain, hook) }).To(Panic())
	})

	It("should attach a hook to every component of a platform", func() {
		lines := "END\n"
		p, err := platform.MakeBuilder().
			WithCoreTraces(platform.CoreTrace{
				Name:      "other",
				Reader:    trace.NewReader(strings.NewReader(lines), trace.CPUDialect),
				Lookahead: trace.NewReader(strings.NewReader(lines), trace.CPUDialect),
			}).
			Build("SoC")
		Expect(err).NotTo(HaveOccurred())

		hook := NewLogHook(nil)
		CollectPlatformTrace(p, hook)

		Expect(p.NumHooks()).To(Equal(1))
		Expect(p.Switch().NumHooks()).To(Equal(1))
		Expect(p.Cores()[0].NumHooks()).To(Equal(1))

		for _, b := range p.Blocks() {
			Expect(b.NumHooks()).To(Equal(1))
		}
	})
})
