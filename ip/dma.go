package ip

import "github.com/sarchlab/gemdroid/soc"

// dmaState tracks a copy. Every line read from the source becomes a write to
// the destination.
type dmaState struct {
	src           uint64
	dst           uint64
	pendingWrites int
}

func (b *Block) startTransfer(src, dst uint64, size int, frameNum int) {
	b.busy = true
	b.coreID = 0
	b.frameNum = frameNum
	b.lines = soc.CacheLines(uint64(size))
	b.reqCount = b.lines
	b.respCount = 0
	b.addr = src
	b.isRead = true
	b.dma = dmaState{src: src, dst: dst}
	b.stats.Calls++
}

func (b *Block) tickDMA() bool {
	if b.dma.pendingWrites > 0 {
		if !b.sw.EnqueueIPMemRequest(b.ipType, b.id, 0, b.dma.dst, false) {
			b.stats.MemRejected++
			return false
		}

		b.dma.dst += soc.CacheLineSize
		b.dma.pendingWrites--
		b.stats.MemReqs++
		b.countActivity()
	}

	if b.reqCount > 0 {
		if !b.sendMemoryReq() {
			b.stats.MemStalls++
		}
	}

	if b.busy && b.reqCount == 0 && b.respCount == b.lines &&
		b.dma.pendingWrites == 0 {
		b.busy = false
	}

	return b.busy
}

func (b *Block) dmaResponse(isRead bool) {
	if !isRead {
		return
	}

	b.respCount++
	b.dma.pendingWrites++
}
