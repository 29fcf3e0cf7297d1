package platform

import (
	"github.com/sarchlab/gemdroid/core"
	"github.com/sarchlab/gemdroid/ip"
	"github.com/sarchlab/gemdroid/mem"
	"github.com/sarchlab/gemdroid/sa"
	"github.com/sarchlab/gemdroid/soc"
)

// Stats holds the counters the platform keeps itself. Energies are in mJ.
type Stats struct {
	Ticks     uint64
	MilliSecs uint64

	FramesToBeShown uint64
	FramesMissed    uint64
	LastSlack       float64

	DVFSUpdates     uint64
	BWAttainedByCPU float64

	// CyclesPerFrame holds, per agent instance, the reference ticks its last
	// frame took.
	CyclesPerFrame [soc.NumIPTypes][maxInstances]uint64

	CoreEnergyMJ     [soc.MaxCPUs]float64
	IPEnergyMJ       [soc.NumIPTypes]float64
	MemEnergyMJ      float64
	PlatformEnergyMJ float64
	LastPowerW       float64
}

// TotalEnergyMJ returns the energy of the whole SoC.
func (s Stats) TotalEnergyMJ() float64 {
	total := s.MemEnergyMJ + s.PlatformEnergyMJ

	for _, e := range s.CoreEnergyMJ {
		total += e
	}

	for _, e := range s.IPEnergyMJ {
		total += e
	}

	return total
}

// Stats returns a snapshot of the platform counters.
func (p *Platform) Stats() Stats {
	return p.stats
}

// IPReport is the counters of one IP block.
type IPReport struct {
	Name  string
	Type  soc.IPType
	ID    int
	Stats ip.Stats
}

// Summary collects the counters of every component.
type Summary struct {
	Platform Stats
	Cores    []core.Stats
	IPs      []IPReport
	Switch   sa.Stats
	Memory   mem.Stats
}

// Summary returns a snapshot of the counters of every component.
func (p *Platform) Summary() Summary {
	r := Summary{
		Platform: p.stats,
		Switch:   p.sw.Stats(),
		Memory:   p.memory.Stats(),
	}

	for _, c := range p.cores {
		r.Cores = append(r.Cores, c.Stats())
	}

	for _, b := range p.blocks {
		r.IPs = append(r.IPs, IPReport{
			Name:  b.Name(),
			Type:  b.Type(),
			ID:    b.ID(),
			Stats: b.Stats(),
		})
	}

	return r
}

// FramesDisplayed returns the frames the cores showed on time.
func (r Summary) FramesDisplayed() uint64 {
	var n uint64
	for _, c := range r.Cores {
		n += c.FramesDisplayed
	}

	return n
}

// FramesDropped returns the frames the cores dropped plus the display
// intervals the foreground app missed.
func (r Summary) FramesDropped() uint64 {
	n := r.Platform.FramesMissed
	for _, c := range r.Cores {
		n += c.FramesDropped
	}

	return n
}

// InstsCommitted returns the instructions committed by all the cores.
func (r Summary) InstsCommitted() uint64 {
	var n uint64
	for _, c := range r.Cores {
		n += c.InstsCommitted
	}

	return n
}

// Deadlocks returns the transactions the cores had to force-commit.
func (r Summary) Deadlocks() uint64 {
	var n uint64
	for _, c := range r.Cores {
		n += c.Deadlocks
	}

	return n
}
