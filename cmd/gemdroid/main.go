// Command gemdroid simulates the CPU cores, the IP blocks, the switch, and
// the memory of a mobile SoC while it replays application traces, and reports
// the frames, the power, and the energy of the run.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gemdroid",
	Short: "GemDroid simulates the performance and the power of a mobile SoC.",
	Long: `GemDroid simulates the performance and the power of a mobile SoC ` +
		`by replaying the CPU and GPU traces of Android apps through models ` +
		`of the cores, the IP blocks, the switch, and the memory.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.SetOut(os.Stdout)

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
