package ip

import (
	"github.com/sarchlab/gemdroid/power"
	"github.com/sarchlab/gemdroid/soc"
)

// maxLoad caps the load reported to the governors.
const maxLoad = 0.99

// Scaler returns the frequency knob of the block.
func (b *Block) Scaler() *power.Scaler {
	return b.scaler
}

// FreqGHz returns the current clock of the block.
func (b *Block) FreqGHz() float64 {
	return b.scaler.FreqGHz()
}

// StaticPower returns the leakage of the block while Active.
func (b *Block) StaticPower() float64 {
	return b.params.StaticPower
}

func (b *Block) staticPower(activeShare, lowShare float64) float64 {
	return activeShare*b.params.StaticPower +
		lowShare*b.params.StaticPower/3
}

func (b *Block) dynamicPower(activity float64) float64 {
	if b.params.Kind == GPU && activity > 1 {
		activity = 1
	}

	return activity * b.scaler.Point().Dynamic
}

// MaxRatePerMs returns the most units of work the block can finish in one
// millisecond at its current clock.
func (b *Block) MaxRatePerMs() float64 {
	return b.FreqGHz() * 1e6 / b.params.CyclesPerUnit
}

// PowerIn1us returns the average power of the block in the microsecond that
// just ended and starts a new one.
func (b *Block) PowerIn1us() float64 {
	if b.params.Kind == DMA {
		return 0
	}

	cycles := b.FreqGHz() * 1e3
	spent := b.psm.Cycles().Sub(b.usMark)
	b.usMark = b.psm.Cycles()

	static := b.staticPower(
		float64(spent.Of(power.Active))/cycles,
		float64(spent.Of(power.LowPower))/cycles,
	)

	var activity float64
	if b.params.Kind == GPU {
		activity = float64(b.gpu.instsUs) / cycles
		b.gpu.instsUs = 0
	} else {
		activity = float64(b.activityUs) * 1e3 / b.MaxRatePerMs()
	}

	b.activityUs = 0

	return static + b.dynamicPower(activity)
}

// PowerIn1ms returns the average power of the block in the millisecond that
// just ended and starts a new one.
func (b *Block) PowerIn1ms() float64 {
	if b.params.Kind == DMA {
		return 0
	}

	cycles := b.FreqGHz() * 1e6
	spent := b.psm.Cycles().Sub(b.msMark)
	b.msMark = b.psm.Cycles()

	static := b.staticPower(
		float64(spent.Of(power.Active))/cycles,
		float64(spent.Of(power.LowPower))/cycles,
	)

	var activity float64
	if b.params.Kind == GPU {
		activity = float64(b.gpu.instsMs) / cycles
		b.gpu.instsMs = 0
	} else {
		activity = float64(b.activityMs) / b.MaxRatePerMs()
	}

	b.activityMs = 0
	b.lastPower = static + b.dynamicPower(activity)

	return b.lastPower
}

// LastPower returns the power reported by the last PowerIn1ms call.
func (b *Block) LastPower() float64 {
	return b.lastPower
}

// PowerEst estimates the power of the block in the next period. Blocks that
// are not Active are assumed to draw nothing.
func (b *Block) PowerEst() float64 {
	if !b.psm.IsActive() {
		return 0
	}

	if b.params.Kind == GPU {
		if !b.IsEnabled() {
			return 0
		}

		return b.dynamicPower(1) + b.staticPower(1, 0)
	}

	return b.dynamicPower(0.5) + b.staticPower(0.5, 0.5)
}

// EnergyEst estimates the energy of repeating a piece of work that took
// timeMs at powerW, if it ran at newFreq instead. The activity of the block is
// kept, while the time and the dynamic power follow the new operating point.
func (b *Block) EnergyEst(timeMs, powerW, newFreq float64) float64 {
	curr := b.scaler.Point()
	activity := 0.0

	if curr.Dynamic > 0 {
		activity = (powerW - b.params.StaticPower) / curr.Dynamic
	}

	next := b.scaler.Table().At(b.scaler.Table().IndexOf(newFreq))
	newTime := power.TimeEst(timeMs, curr.FreqGHz, next.FreqGHz)

	return newTime*b.params.StaticPower + newTime*activity*next.Dynamic
}

// LoadInLastEpoch returns the share of its peak rate that the block used in
// the last DVFS period, given the time in milliseconds its last frame took.
// It starts a new period.
func (b *Block) LoadInLastEpoch(lastTimeMs float64) float64 {
	done := b.activityEpoch
	b.activityEpoch = 0

	if !b.ipType.IsAccelerator() || lastTimeMs <= 0 {
		return 0
	}

	load := float64(done) / (b.MaxRatePerMs() * lastTimeMs)
	if load > 1 {
		return maxLoad
	}

	return load
}

// SetMaxAllowedFreq moves to the first operating point that fits in what is
// left of the power budget after the block's own last millisecond.
func (b *Block) SetMaxAllowedFreq(budget float64) {
	b.scaler.SetForPower(budget - b.lastPower)
}

// audioSlackWeight scales the time change of the audio codecs before it is
// charged to the slack. Audio frames are much shorter than video frames.
const audioSlackWeight = 12

// FreqForSlackOptimal picks the frequency of the next frame from the time the
// last frame took and the same time corrected for the memory. A negative slack
// raises the clock by two steps. Otherwise the clock goes down as far as the
// slack allows, never below the optimal point. The image processor never
// drops more than two steps at once. It returns the frequency and the slack
// left.
func (b *Block) FreqForSlackOptimal(
	prevTime, scaledTime, slack float64,
) (float64, float64) {
	t := b.scaler.Table()
	curr := b.scaler.Index()
	freq := b.FreqGHz()
	next := freq

	switch {
	case slack < 0:
		next = t.At(curr + 2).FreqGHz
	case curr > b.scaler.Optimal():
		lowest := b.scaler.Optimal()
		if b.ipType == soc.IMG {
			lowest = curr - 2
		}

		k := curr - 1
		for ; k >= lowest; k-- {
			if power.TimeEst(scaledTime, freq, t.At(k).FreqGHz) >
				prevTime+slack {
				break
			}
		}

		next = t.At(k + 1).FreqGHz
	}

	used := power.TimeEst(scaledTime, freq, next) - prevTime
	if b.ipType == soc.AD || b.ipType == soc.AE {
		used *= audioSlackWeight
	}

	return next, slack - used
}
