package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/soc"
)

var flowsCmd = &cobra.Command{
	Use:   "flows [flow file]",
	Short: "Check and print a flow file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := flow.LoadFile(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for app := soc.AppID(0); app < soc.NumApps; app++ {
			for i, f := range t.Flows(app) {
				stages := make([]string, 0, len(f))
				for _, ip := range f {
					stages = append(stages, ip.String())
				}

				fmt.Fprintf(w, "%s[%d]: %s\n",
					app, i, strings.Join(stages, " -> "))
			}
		}

		return nil
	},
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List the apps that trace names are matched to.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		for app := soc.AppID(0); app < soc.NumApps; app++ {
			second := ""
			if app.HasSecondFlow() {
				second = " (two flows)"
			}

			fmt.Fprintf(w, "%2d %s%s\n", int(app), app, second)
		}
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	rootCmd.AddCommand(appsCmd)
}
