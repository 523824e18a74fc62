package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim"
	"github.com/wdmsim/wdmsim/sim/design"
	"github.com/wdmsim/wdmsim/sim/experiment"
)

var (
	debugUntil     string // Exit status name to hunt for; empty runs once
	debugMaxTrials int    // Trial bound for the hunt
)

// debugCmd runs lock sequences and dumps the tick-by-tick state log of the
// last one. With --until it re-randomizes the hardware until a sequence ends
// with the wanted status, which is how rare failures get captured for study.
var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run lock sequences and dump per-tick snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadExperimentConfig()
		if err != nil {
			logrus.Fatalf("Invalid experiment config: %v", err)
		}

		s, err := experiment.New(cfg, design.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}

		var status sim.ExitStatus
		if debugUntil == "" {
			status = s.RunOnce(true)
		} else {
			want, err := sim.ParseExitStatus(debugUntil)
			if err != nil {
				logrus.Fatalf("Invalid --until value: %v", err)
			}
			trials, found := s.RunUntilExit(want, debugMaxTrials)
			if !found {
				logrus.Fatalf("No %v exit within %d sequences", want, debugMaxTrials)
			}
			logrus.Infof("Hit %v after %d sequences", want, trials)
			status = want
		}

		for _, snap := range s.SUT().Snapshots() {
			fmt.Printf("[tick %04d] laser grid %d, arbiter %s\n", snap.Clock, snap.LaserGridID, snap.ArbiterState)
			for i, slice := range snap.Slices {
				fmt.Printf("    slice %d: lock=%v code=%d tuned=%v wavelength=%.4gnm\n",
					i, slice.LockStatus, slice.LockCode, slice.Tuned, slice.CurrentWavelength*1e9)
				fmt.Printf("        in=%v\n", formatNm(slice.In))
				fmt.Printf("        thru=%v\n", formatNm(slice.Thru))
			}
		}
		fmt.Printf("exit status: %v\n", status)
	},
}

func formatNm(wavelengths []float64) []string {
	out := make([]string, len(wavelengths))
	for i, w := range wavelengths {
		out[i] = fmt.Sprintf("%.4gnm", w*1e9)
	}
	return out
}

func init() {
	addExperimentFlags(debugCmd)
	debugCmd.Flags().StringVar(&debugUntil, "until", "", "Re-randomize until this exit status (SUCCESS, ZERO_LOCK, DUPLICATE_LOCK, WRONG_LANE_ORDER)")
	debugCmd.Flags().IntVar(&debugMaxTrials, "max-trials", 1000, "Sequence bound for --until")
	rootCmd.AddCommand(debugCmd)
}
