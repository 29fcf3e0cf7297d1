package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DRAM channel interleaving", func() {
	var d *DRAM

	BeforeEach(func() {
		d = newDRAM(4, 1, 10, 0.8)
	})

	It("should interleave channels by cache line", func() {
		Expect(d.channelOf(0)).To(Equal(0))
		Expect(d.channelOf(63)).To(Equal(0))
		Expect(d.channelOf(64)).To(Equal(1))
		Expect(d.channelOf(3 * 64)).To(Equal(3))
		Expect(d.channelOf(4 * 64)).To(Equal(0))
	})

	It("should only fill the channel that serves the address", func() {
		Expect(d.Enqueue(0, Transaction{Addr: 64, IsRead: true})).To(BeTrue())

		Expect(d.CanAccept(64)).To(BeFalse())
		Expect(d.CanAccept(128)).To(BeTrue())
		Expect(d.InFlight()).To(Equal(1))
	})
})
