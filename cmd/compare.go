package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim/design"
	"github.com/wdmsim/wdmsim/sim/experiment"
)

var (
	compareArbiterName string // Second arbiter, run over identical draws
	stopOnFailure      bool   // Abort on the first success/failure mismatch
)

// compareCmd runs two arbiters over identical hardware draws and laser
// bursts and reports where their success/failure outcomes diverge
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two arbiters on identical experiment draws",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadExperimentConfig()
		if err != nil {
			logrus.Fatalf("Invalid experiment config: %v", err)
		}

		logrus.Infof("Starting compare: %s vs %s, ring-swaps=%d laser-swaps=%d seed=%d",
			cfg.ArbiterName, compareArbiterName, numRingSwaps, numLaserSwaps, seed)

		s, err := experiment.New(cfg, design.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}

		out, err := s.DoCompareExperiment(compareArbiterName, numRingSwaps, numLaserSwaps, stopOnFailure)
		if err != nil {
			logrus.Fatalf("Compare failed: %v", err)
		}

		logrus.Infof("[Compare]")
		logrus.Infof("    - %06d sequences", out.NumSequences)
		logrus.Infof("    - %06d mismatches", out.NumMismatch)
		logrus.Infof("    - %f mismatch rate", out.MismatchRate)
		logrus.Infof("    - %f failure rate (%s)", out.FailureRatePrimary, cfg.ArbiterName)
		logrus.Infof("    - %f failure rate (%s)", out.FailureRateCompare, compareArbiterName)
		logrus.Infof("    - %f zero/duplicate lock mismatch rate", out.ZeroOrDuplicateRate)
		logrus.Infof("    - %f wrong lane order mismatch rate", out.WrongLaneOrderMismatch)
	},
}

func init() {
	addExperimentFlags(compareCmd)
	compareCmd.Flags().StringVar(&compareArbiterName, "compare-arbiter", "broadside", "Arbiter to compare against")
	compareCmd.Flags().BoolVar(&stopOnFailure, "stop-on-failure", false, "Abort on the first outcome mismatch")
	rootCmd.AddCommand(compareCmd)
}
