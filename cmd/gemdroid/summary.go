package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/sarchlab/gemdroid/config"
	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/soc"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	keyColor   = color.New(color.FgWhite)
	goodColor  = color.New(color.FgGreen)
	badColor   = color.New(color.FgRed)
)

func printRow(w io.Writer, key string, value any) {
	keyColor.Fprintf(w, "  %-24s", key)
	fmt.Fprintf(w, "%v\n", value)
}

func printCount(w io.Writer, key string, n uint64) {
	keyColor.Fprintf(w, "  %-24s", key)

	if n == 0 {
		goodColor.Fprintf(w, "%d\n", n)
	} else {
		badColor.Fprintf(w, "%d\n", n)
	}
}

func printSummary(w io.Writer, cfg config.Config, r platform.Summary) {
	s := r.Platform

	titleColor.Fprintln(w, "Run")
	printRow(w, "governor", cfg.Governor)
	printRow(w, "simulated time", fmt.Sprintf("%.3f ms",
		float64(s.Ticks)/float64(soc.TicksPerMilliSec)))
	printRow(w, "instructions", r.InstsCommitted())
	printRow(w, "DVFS updates", s.DVFSUpdates)

	titleColor.Fprintln(w, "Frames")
	printRow(w, "displayed", r.FramesDisplayed())
	printCount(w, "dropped", r.FramesDropped())
	printRow(w, "display intervals", s.FramesToBeShown)
	printCount(w, "intervals missed", s.FramesMissed)
	printCount(w, "deadlocks", r.Deadlocks())

	for i, c := range r.Cores {
		if c.FramesDropped == 0 {
			continue
		}

		printRow(w, fmt.Sprintf("core %d drops (ROB/mem/IP)", i),
			fmt.Sprintf("%d/%d/%d", c.DroppedByROB, c.DroppedByMem,
				c.DroppedByIP))
	}

	titleColor.Fprintln(w, "Traffic")
	printRow(w, "CPU memory requests", r.Memory.CPUReqs)
	printRow(w, "IP memory requests", r.Memory.IPReqs)
	printCount(w, "switch rejections", r.Switch.Rejected)
	printCount(w, "flow requests dropped", r.Switch.ChainsDropped)

	titleColor.Fprintln(w, "Energy (mJ)")

	var core float64
	for _, e := range s.CoreEnergyMJ {
		core += e
	}

	printRow(w, "cores", fmt.Sprintf("%.3f", core))

	for t := soc.CPU + 1; t < soc.NumIPTypes; t++ {
		if s.IPEnergyMJ[t] > 0 {
			printRow(w, t.String(), fmt.Sprintf("%.3f", s.IPEnergyMJ[t]))
		}
	}

	printRow(w, "memory", fmt.Sprintf("%.3f", s.MemEnergyMJ))
	printRow(w, "platform", fmt.Sprintf("%.3f", s.PlatformEnergyMJ))
	printRow(w, "total", fmt.Sprintf("%.3f", s.TotalEnergyMJ()))
}
