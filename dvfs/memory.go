package dvfs

import (
	"log"
	"math"

	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

const (
	// defaultMemFraction is the share of CPU time assumed to wait on the
	// memory before the core has been profiled.
	defaultMemFraction = 0.2

	// gpuMemFraction is the share of GPU time spent waiting on the memory.
	gpuMemFraction = 0.3

	// appBandwidthScale turns the requests of an app in one DVFS period
	// into GB/s.
	appBandwidthScale = 10 / 1.125
)

// codecDemand returns the cycles an accelerator spends per unit of work and
// the cache lines it moves for it.
func codecDemand(t soc.IPType) (cycles, lines float64) {
	switch t {
	case soc.VD:
		return 12, soc.VideoCodingRatio + 1
	case soc.VE:
		return 18, soc.VideoCodingRatio + 1
	case soc.AD:
		return 12, soc.AudioCodingRatio + 1
	case soc.AE:
		return 8, soc.AudioCodingRatio + 1
	case soc.IMG:
		return 16, 1
	}

	return 1, 1
}

// availBW returns the bandwidth in GB/s the app on a core can count on.
func (s *System) availBW(ep Epoch, coreID int) float64 {
	if len(s.cores) <= 1 {
		return s.mem.CurrentMaxBandwidth()
	}

	appBW := float64(ep.AppMemReqs[coreID]) * soc.CacheLineSize /
		float64(ep.PeriodTicks) * appBandwidthScale

	return s.mem.CurrentMaxBandwidth() - s.mem.Bandwidth() + appBW
}

// memScaledTimeCPU estimates the frame time of core 0 if the memory ran at
// newFreq instead of oldFreq. Only the share of the time that waited on the
// memory scales.
func (s *System) memScaledTimeCPU(ep Epoch, oldFreq, newFreq float64) float64 {
	frac := s.cores[0].ProfileFractionOfMemInst()
	if math.IsNaN(frac) {
		frac = defaultMemFraction
	}

	last := ep.Last[soc.CPU].TimeMs
	memTime := frac * last

	return last - memTime + memTime*oldFreq/newFreq
}

// memScaledTime estimates the frame time of an IP type given the bandwidth
// it can get and the operating point it would run at.
func (s *System) memScaledTime(
	ep Epoch, t soc.IPType, bw float64, freqIndex int,
) float64 {
	last := ep.Last[t]

	switch {
	case t == soc.CPU:
		log.Panic("the time of the cores scales with memScaledTimeCPU")
	case t == soc.DC || t == soc.CAM:
		return s.chars.PredictTime(t, bw)
	case t.IsDevice():
		return last.TimeMs
	case t == soc.GPU:
		memTime := gpuMemFraction * last.TimeMs
		return last.TimeMs - memTime +
			memTime*s.mem.FreqGHz()/s.mem.FreqForBandwidth(bw)
	}

	b := s.ip(t)
	freq := b.Scaler().Table().At(freqIndex).FreqGHz
	base := power.TimeEst(last.TimeMs, last.FreqGHz, freq)

	cycles, lines := codecDemand(t)
	required := lines * soc.CacheLineSize / (cycles / freq)

	if bw > required {
		return base
	}

	return required / bw * base
}

// flowChange estimates how the stages of the first flow would react to the
// memory running at newFreq instead of oldFreq. It returns the time the slower
// stages lose and the time the faster stages gain.
func (s *System) flowChange(
	ep Epoch, oldFreq, newFreq float64,
) (delay, gain float64) {
	for _, t := range s.flow() {
		var newTime float64

		if t == soc.CPU {
			newTime = s.memScaledTimeCPU(ep, oldFreq, newFreq)
		} else {
			b := s.ip(t)
			if b == nil {
				continue
			}

			newTime = s.memScaledTime(ep, t, s.mem.MaxBandwidth(newFreq),
				b.Scaler().Index())
		}

		diff := newTime - ep.Last[t].TimeMs
		if diff > 0 {
			delay += diff
		} else {
			gain -= diff
		}
	}

	return delay, gain
}

// scaleMemory spends the slack on the memory first. A negative slack raises
// the memory clock by one step and credits the time it saves. A positive
// slack lowers the clock as far as the slack allows, never below floor.
func (s *System) scaleMemory(ep Epoch, slack *float64, floor float64) {
	orig := s.mem.FreqGHz()
	tenths := int(math.Round(orig * 10))
	top := int(math.Round(mem.MaxFreqGHz * 10))
	bottom := int(math.Round(floor * 10))

	if *slack < 0 {
		if tenths >= top {
			return
		}

		faster := float64(tenths+1) / 10
		_, gain := s.flowChange(ep, orig, faster)
		*slack += gain
		s.mem.SetFreq(faster)

		return
	}

	spent := 0.0

	for f := tenths - 1; f >= bottom; f-- {
		freq := float64(f) / 10

		delay, _ := s.flowChange(ep, orig, freq)
		if delay > *slack {
			break
		}

		s.mem.SetFreq(freq)
		spent = delay
	}

	*slack -= spent
}
