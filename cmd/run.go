package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim/design"
	"github.com/wdmsim/wdmsim/sim/experiment"
)

// runCmd executes one swap-loop experiment from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a wavelength lock experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadExperimentConfig()
		if err != nil {
			logrus.Fatalf("Invalid experiment config: %v", err)
		}

		logrus.Infof("Starting experiment: arbiter=%s channels=%d ring-swaps=%d laser-swaps=%d seed=%d",
			cfg.ArbiterName, cfg.Laser.NumChannels, numRingSwaps, numLaserSwaps, seed)
		startTime := time.Now()

		s, err := experiment.New(cfg, design.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		out := s.DoExperiment(numRingSwaps, numLaserSwaps)

		printOutcome(out)
		logrus.Infof("Experiment complete in %v.", time.Since(startTime))
	},
}

func printOutcome(out experiment.Outcome) {
	logrus.Infof("[Experiment]")
	logrus.Infof("    - %06d sequences", out.NumSequences)
	logrus.Infof("    - %06d successes", out.NumSuccess)
	logrus.Infof("    - %06d failures", out.NumFailure)
	logrus.Infof("    - %06d zero lock failures", out.NumZeroLock)
	logrus.Infof("    - %06d duplicate lock failures", out.NumDuplicateLock)
	logrus.Infof("    - %06d wrong lane order failures", out.NumWrongLaneOrder)
	logrus.Infof("    - %f failure in time", out.FailureInTime)
	logrus.Infof("    - %f failure in time by zero lock", out.FailureZeroLock)
	logrus.Infof("    - %f failure in time by duplicate lock", out.FailureDuplicateLock)
	logrus.Infof("    - %f failure in time by wrong lane order", out.FailureWrongLaneOrder)
}

func init() {
	addExperimentFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
