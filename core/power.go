package core

import "github.com/sarchlab/gemdroid/power"

// Scaler returns the frequency knob of the core.
func (c *Comp) Scaler() *power.Scaler {
	return c.scaler
}

// FreqGHz returns the current clock of the core.
func (c *Comp) FreqGHz() float64 {
	return c.scaler.FreqGHz()
}

func (c *Comp) staticPower(activeShare, lowShare float64) float64 {
	s := c.scaler.Point().Static
	return activeShare*s + lowShare*s/3
}

// dynamicPower charges the committing lanes at full switching power and the
// lanes stalled on a full reorder buffer at a third of it.
func (c *Comp) dynamicPower(activity, stallActivity float64) float64 {
	if activity > 1 {
		activity = 1
	}

	d := c.scaler.Point().Dynamic

	return activity*d + stallActivity*d/3
}

func (c *Comp) powerOver(
	cycles float64,
	spent power.Counters,
	insts, robFull uint64,
) float64 {
	lanes := float64(c.issueWidth) * cycles

	static := c.staticPower(
		float64(spent.Of(power.Active))/cycles,
		float64(spent.Of(power.LowPower))/cycles,
	)
	dynamic := c.dynamicPower(float64(insts)/lanes, float64(robFull)/lanes)

	return static + dynamic
}

// PowerIn1us returns the average power of the core in the microsecond that
// just ended and starts a new one.
func (c *Comp) PowerIn1us() float64 {
	spent := c.psm.Cycles().Sub(c.usMark)
	c.usMark = c.psm.Cycles()

	p := c.powerOver(c.FreqGHz()*1e3, spent, c.instsUs, c.robFullUs)
	c.instsUs = 0
	c.robFullUs = 0

	return p
}

// PowerIn1ms returns the average power of the core in the millisecond that
// just ended and starts a new one.
func (c *Comp) PowerIn1ms() float64 {
	spent := c.psm.Cycles().Sub(c.msMark)
	c.msMark = c.psm.Cycles()

	c.lastPower = c.powerOver(c.FreqGHz()*1e6, spent, c.instsMs, c.robFullMs)
	c.instsMs = 0
	c.robFullMs = 0

	return c.lastPower
}

// LastPower returns the power reported by the last PowerIn1ms call.
func (c *Comp) LastPower() float64 {
	return c.lastPower
}

// LoadInLastEpoch returns the share of its commit bandwidth that the core
// used in the last DVFS period, given the time in milliseconds its last frame
// took. It starts a new period.
func (c *Comp) LoadInLastEpoch(lastTimeMs float64) float64 {
	insts := c.instsEpoch
	c.instsEpoch = 0

	cycles := lastTimeMs * 1e6 * c.FreqGHz()
	if cycles <= 0 {
		return 0
	}

	return float64(insts) / (cycles * float64(c.issueWidth))
}

// PowerEst estimates the power of the core in the next period, assuming half
// of the leakage and half of the switching power of the current point.
func (c *Comp) PowerEst() float64 {
	if !c.psm.IsActive() {
		return 0
	}

	p := c.scaler.Point()

	return p.Static/2 + p.Dynamic/2
}

// EnergyEst estimates the energy of repeating a piece of work that took
// timeMs at powerW, if it ran at newFreq instead.
func (c *Comp) EnergyEst(timeMs, powerW, newFreq float64) float64 {
	curr := c.scaler.Point()
	activity := (powerW - curr.Static) / curr.Dynamic

	next := c.scaler.Table().At(c.scaler.Table().IndexOf(newFreq))
	newTime := power.TimeEst(timeMs, curr.FreqGHz, next.FreqGHz)

	return newTime*next.Static + newTime*activity*next.Dynamic
}

// FreqForPower returns the slowest frequency whose full power stays under the
// budget.
func (c *Comp) FreqForPower(budget float64) float64 {
	t := c.scaler.Table()
	return t.At(t.IndexForPower(budget)).FreqGHz
}

// SetMaxAllowedFreq moves to the first operating point that fits in what is
// left of the power budget after the core's own last millisecond.
func (c *Comp) SetMaxAllowedFreq(budget float64) {
	c.scaler.SetForPower(budget - c.lastPower)
}

// FreqForSlackOptimal picks the frequency of the next frame. prevTime is the
// time the last frame took and scaledTime the same time corrected for the
// new memory frequency. A negative slack raises the clock by two steps.
// Otherwise the clock goes down as far as the slack allows, but never below
// the optimal point, or up to the optimal point if it is below it. It returns
// the frequency and the slack left.
func (c *Comp) FreqForSlackOptimal(
	prevTime, scaledTime, slack float64,
) (float64, float64) {
	t := c.scaler.Table()
	curr := c.scaler.Index()
	opt := c.scaler.Optimal()
	freq := c.FreqGHz()

	var next float64

	switch {
	case slack < 0:
		next = t.At(curr + 2).FreqGHz
	case curr > opt:
		k := curr - 1
		for ; k >= opt; k-- {
			if power.TimeEst(scaledTime, freq, t.At(k).FreqGHz) >
				prevTime+slack {
				break
			}
		}

		next = t.At(k + 1).FreqGHz
	default:
		next = t.At(opt).FreqGHz
	}

	newTime := power.TimeEst(scaledTime, freq, next)

	return next, slack - (newTime - prevTime)
}
