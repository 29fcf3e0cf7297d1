// Package mem models the main memory of the SoC: a DRAM timing model behind
// an enqueue and completion-callback boundary, with frequency and bandwidth
// controls for the frequency governors.
package mem

import (
	"log"
	"math"

	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Frequency range of the memory in GHz.
const (
	MinFreqGHz = 0.3
	MaxFreqGHz = 1.0
	OptFreqGHz = 0.8

	freqEpsilon = 0.000005
)

// DRAM power coefficients.
const (
	backgroundPowerW   = 0.08
	backgroundPowerWpG = 0.12
	accessEnergyJ      = 1.5e-9
)

// A ResponseSink receives the memory responses. It may refuse a response,
// in which case the memory holds it and offers it again later.
type ResponseSink interface {
	MemResponse(addr uint64, isRead bool, src soc.IPType, srcID int) bool
}

// Memory is the main memory of the SoC.
type Memory struct {
	*sim.ComponentBase

	dram    *DRAM
	sink    ResponseSink
	perfect bool

	// freq is kept in tenths of a GHz.
	freq int

	tick           uint64
	lastBandwidth  float64
	lastLatencyNs  float64
	baseLatencyNs  float64
	lastPower      float64
	windowAccesses uint64

	stats Stats
}

// Stats holds the request counters of the memory. AppReqs and TypeReqs
// cover the current measurement period only.
type Stats struct {
	CPUReqs  uint64
	IPReqs   uint64
	Rejected uint64
	AppReqs  [soc.MaxCPUs]uint64
	TypeReqs [soc.NumIPTypes]uint64
}

// Stats returns a snapshot of the counters.
func (m *Memory) Stats() Stats {
	return m.stats
}

// ResetAppReqs restarts the per-core request counters.
func (m *Memory) ResetAppReqs() {
	m.stats.AppReqs = [soc.MaxCPUs]uint64{}
}

// ResetTypeReqs restarts the per-IP-type request counters.
func (m *Memory) ResetTypeReqs() {
	m.stats.TypeReqs = [soc.NumIPTypes]uint64{}
}

// SetResponseSink sets where responses go.
func (m *Memory) SetResponseSink(s ResponseSink) {
	m.sink = s
}

// IsPerfect tells if the memory answers every request at once.
func (m *Memory) IsPerfect() bool {
	return m.perfect
}

// DRAM returns the timing model.
func (m *Memory) DRAM() *DRAM {
	return m.dram
}

// Enqueue offers a cache-line request to the memory. It returns false if
// the request cannot be accepted now. A perfect memory responds before
// returning.
func (m *Memory) Enqueue(
	src soc.IPType,
	srcID int,
	coreID int,
	addr uint64,
	isRead bool,
) bool {
	if addr == 0 {
		log.Panicf("%s_%d is sending address 0 to memory", src, srcID)
	}

	if m.perfect {
		if !m.sink.MemResponse(addr, isRead, src, srcID) {
			m.stats.Rejected++
			return false
		}

		m.count(src, coreID)

		return true
	}

	ok := m.dram.Enqueue(m.tick, Transaction{
		Addr:   addr,
		IsRead: isRead,
		Src:    src,
		SrcID:  srcID,
		CoreID: coreID,
	})
	if !ok {
		m.stats.Rejected++
		return false
	}

	m.count(src, coreID)

	return true
}

func (m *Memory) count(src soc.IPType, coreID int) {
	if src == soc.CPU {
		m.stats.CPUReqs++
	} else {
		m.stats.IPReqs++
	}

	if coreID >= 0 && coreID < soc.MaxCPUs {
		m.stats.AppReqs[coreID]++
	}

	m.stats.TypeReqs[src]++
	m.windowAccesses++
}

// Tick advances the memory to the given reference tick and delivers the
// completed transactions.
func (m *Memory) Tick(now uint64) bool {
	m.tick = now

	if m.perfect {
		return false
	}

	return m.dram.Tick(now, func(t Transaction) bool {
		return m.sink.MemResponse(t.Addr, t.IsRead, t.Src, t.SrcID)
	})
}

// FreqGHz returns the current frequency.
func (m *Memory) FreqGHz() float64 {
	return float64(m.freq) / 10
}

// SetFreq changes the frequency. Frequencies outside of the supported range
// are a programming error.
func (m *Memory) SetFreq(freqGHz float64) {
	if freqGHz < MinFreqGHz-freqEpsilon || freqGHz > MaxFreqGHz+freqEpsilon {
		log.Panicf("memory frequency %.3f GHz is out of range", freqGHz)
	}

	m.setTenths(int(math.Round(freqGHz * 10)))
}

func (m *Memory) setTenths(f int) {
	f = max(f, int(math.Round(MinFreqGHz*10)))
	f = min(f, int(math.Round(MaxFreqGHz*10)))

	m.freq = f
	m.dram.setFreq(m.FreqGHz())
}

// Inc raises the frequency by steps of 0.1 GHz, saturating at the maximum.
func (m *Memory) Inc(steps int) {
	m.setTenths(m.freq + steps)
}

// Dec lowers the frequency by steps of 0.1 GHz, saturating at the minimum.
func (m *Memory) Dec(steps int) {
	m.setTenths(m.freq - steps)
}

// SetMax selects the highest frequency.
func (m *Memory) SetMax() { m.SetFreq(MaxFreqGHz) }

// SetMin selects the lowest frequency.
func (m *Memory) SetMin() { m.SetFreq(MinFreqGHz) }

// SetOptimal selects the most energy-efficient frequency.
func (m *Memory) SetOptimal() { m.SetFreq(OptFreqGHz) }

func maxBandwidth(freqGHz float64) float64 {
	// 64-bit bus, two transfers per clock.
	return 64 * 2 * freqGHz / 8
}

// MaxBandwidth returns the peak bandwidth in GB/s at a frequency.
func (m *Memory) MaxBandwidth(freqGHz float64) float64 {
	return maxBandwidth(freqGHz)
}

// CurrentMaxBandwidth returns the peak bandwidth at the current frequency.
func (m *Memory) CurrentMaxBandwidth() float64 {
	return maxBandwidth(m.FreqGHz())
}

// FreqForBandwidth returns the frequency whose peak bandwidth is bw.
func (m *Memory) FreqForBandwidth(bw float64) float64 {
	return bw / 16
}

// Bandwidth returns the bandwidth delivered in the last window in GB/s.
func (m *Memory) Bandwidth() float64 {
	return m.lastBandwidth
}

// LatencyNs returns the average access latency in the last window.
func (m *Memory) LatencyNs() float64 {
	if m.lastLatencyNs == 0 {
		return m.baseLatencyNs
	}

	return m.lastLatencyNs
}

// NumChannels returns the number of DRAM channels.
func (m *Memory) NumChannels() int {
	return m.dram.NumChannels()
}

// EnergyEst scales an energy measured at one frequency to another.
func (m *Memory) EnergyEst(currFreq, currEnergy, newFreq float64) float64 {
	return currEnergy * (newFreq / currFreq)
}

// PowerIn closes a measurement window of the given length in reference
// ticks and returns the average power in watts over it. The bandwidth and
// latency reported afterwards describe the closed window.
func (m *Memory) PowerIn(windowTicks uint64) float64 {
	w := m.dram.closeWindow()
	accesses := m.windowAccesses
	m.windowAccesses = 0

	seconds := float64(windowTicks) / float64(soc.TicksPerSec)
	if seconds == 0 {
		return m.lastPower
	}

	m.lastBandwidth = float64(w.bytes) / (seconds * 1e9)
	if w.completed > 0 {
		m.lastLatencyNs = float64(w.latency) / float64(w.completed) /
			float64(soc.TicksPerMicroSec) * 1000
	}

	p := backgroundPowerW + backgroundPowerWpG*m.FreqGHz() +
		float64(accesses)*accessEnergyJ/seconds
	if math.IsNaN(p) {
		return m.lastPower
	}

	m.lastPower = p

	return p
}
