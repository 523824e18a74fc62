package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim/arbiter"
)

// arbitersCmd lists the registered arbiter names
var arbitersCmd = &cobra.Command{
	Use:   "arbiters",
	Short: "List the available arbiters",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range arbiter.Builtin().Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(arbitersCmd)
}
