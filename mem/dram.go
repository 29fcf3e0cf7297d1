package mem

import (
	"github.com/google/btree"

	"github.com/sarchlab/gemdroid/soc"
)

// A Transaction is a cache-line access travelling through the DRAM.
type Transaction struct {
	Addr   uint64
	IsRead bool
	Src    soc.IPType
	SrcID  int
	CoreID int

	IssueTick uint64
}

type completion struct {
	tick    uint64
	seq     uint64
	channel int
	trans   Transaction
}

func completionLess(a, b completion) bool {
	if a.tick != b.tick {
		return a.tick < b.tick
	}

	return a.seq < b.seq
}

type channel struct {
	inFlight  int
	busyUntil uint64
}

// DRAM is a multi-channel timing model. Each channel keeps a bounded number
// of transactions in flight and moves one cache line at a time over its data
// bus. A transaction completes a fixed access latency after its burst ends.
// All times are in reference ticks.
type DRAM struct {
	channels   []channel
	queueDepth int
	latency    uint64
	freqGHz    float64

	pending *btree.BTreeG[completion]
	seq     uint64

	windowBytes     uint64
	windowLatency   uint64
	windowCompleted uint64
}

func newDRAM(numChannels, queueDepth int, latency uint64, freqGHz float64) *DRAM {
	return &DRAM{
		channels:   make([]channel, numChannels),
		queueDepth: queueDepth,
		latency:    latency,
		freqGHz:    freqGHz,
		pending:    btree.NewG(8, completionLess),
	}
}

// NumChannels returns the number of channels.
func (d *DRAM) NumChannels() int {
	return len(d.channels)
}

func (d *DRAM) channelOf(addr uint64) int {
	return int((addr / soc.CacheLineSize) % uint64(len(d.channels)))
}

// CanAccept tells if the channel that serves addr has room.
func (d *DRAM) CanAccept(addr uint64) bool {
	return d.channels[d.channelOf(addr)].inFlight < d.queueDepth
}

// burstTicks is the time one cache line occupies a channel's data bus.
func (d *DRAM) burstTicks() uint64 {
	bytesPerNs := maxBandwidth(d.freqGHz)
	ns := float64(soc.CacheLineSize) / bytesPerNs
	ticks := uint64(ns * float64(soc.TicksPerMicroSec) / 1000)

	if ticks == 0 {
		ticks = 1
	}

	return ticks
}

// Enqueue schedules a transaction. It returns false when the channel queue
// is full.
func (d *DRAM) Enqueue(now uint64, t Transaction) bool {
	chID := d.channelOf(t.Addr)
	ch := &d.channels[chID]

	if ch.inFlight >= d.queueDepth {
		return false
	}

	start := now
	if ch.busyUntil > start {
		start = ch.busyUntil
	}

	ch.busyUntil = start + d.burstTicks()
	ch.inFlight++

	t.IssueTick = now
	d.seq++
	d.pending.ReplaceOrInsert(completion{
		tick:    ch.busyUntil + d.latency,
		seq:     d.seq,
		channel: chID,
		trans:   t,
	})

	return true
}

// Tick delivers all the transactions that have completed by now, in
// completion order. Delivery stops at the first transaction the receiver
// refuses; it is offered again on the next tick.
func (d *DRAM) Tick(now uint64, deliver func(Transaction) bool) bool {
	progress := false

	for {
		c, ok := d.pending.Min()
		if !ok || c.tick > now {
			return progress
		}

		if !deliver(c.trans) {
			return progress
		}

		d.pending.DeleteMin()
		d.channels[c.channel].inFlight--

		d.windowBytes += soc.CacheLineSize
		d.windowLatency += now - c.trans.IssueTick
		d.windowCompleted++
		progress = true
	}
}

// InFlight returns the number of transactions that are not yet delivered.
func (d *DRAM) InFlight() int {
	return d.pending.Len()
}

func (d *DRAM) setFreq(freqGHz float64) {
	d.freqGHz = freqGHz
}

type window struct {
	bytes     uint64
	latency   uint64
	completed uint64
}

func (d *DRAM) closeWindow() window {
	w := window{
		bytes:     d.windowBytes,
		latency:   d.windowLatency,
		completed: d.windowCompleted,
	}

	d.windowBytes = 0
	d.windowLatency = 0
	d.windowCompleted = 0

	return w
}
