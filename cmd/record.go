package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim"
	"github.com/wdmsim/wdmsim/sim/design"
	"github.com/wdmsim/wdmsim/sim/experiment"
	"github.com/wdmsim/wdmsim/sim/replay"
)

var (
	recordOutput string // Replay JSON output path
	recordAll    bool   // Record every sequence, not just failures
)

// recordCmd runs the swap-loop experiment and writes failing sequences to a
// replay file so they can be re-run in isolation
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Run an experiment and record failing sequences for replay",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadExperimentConfig()
		if err != nil {
			logrus.Fatalf("Invalid experiment config: %v", err)
		}

		s, err := experiment.New(cfg, design.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}

		recorded := 0
		var out experiment.Outcome
		for r := 0; r < numRingSwaps; r++ {
			s.ShuffleRingRow()
			for l := 0; l < numLaserSwaps; l++ {
				status := s.RunOnce(false)
				out.Tally(status)
				if status == sim.ExitSuccess && !recordAll {
					continue
				}

				// Record the ring row in chain order so a replay rebuilds the
				// exact slice layout without reapplying the lane permutation.
				slices := s.SUT().RxSlices()
				ringWavelengths := make([]float64, len(slices))
				ringParams := make([]sim.RingParams, len(slices))
				for i, rx := range slices {
					ringWavelengths[i] = rx.Ring().Wavelength
					ringParams[i] = sim.RingParams{FSR: rx.Ring().FSR, TuningRange: rx.Ring().TuningRange}
				}

				rec := replay.NewRecord(
					cfg.Laser, cfg.Ring, cfg.InitLaneOrder, cfg.TargetLaneOrder, cfg.ArbiterName,
					s.Grid().Wavelengths(), ringWavelengths, ringParams, status,
				)
				if err := replay.Append(recordOutput, rec); err != nil {
					logrus.Fatalf("Unable to append replay record: %v", err)
				}
				recorded++
			}
		}
		out.Finalize()

		printOutcome(out)
		logrus.Infof("Recorded %d sequences to %s.", recorded, recordOutput)
	},
}

func init() {
	addExperimentFlags(recordCmd)
	recordCmd.Flags().StringVar(&recordOutput, "output", "replay.json", "Replay record output file")
	recordCmd.Flags().BoolVar(&recordAll, "record-all", false, "Record every sequence instead of failures only")
	rootCmd.AddCommand(recordCmd)
}
