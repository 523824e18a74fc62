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
	replayInput      string // Replay JSON input path
	replayPartitions int    // Total partitions of the replay file
	replayPartition  int    // Partition index this invocation runs
	replaySnapshots  bool   // Dump per-tick snapshots of mismatching replays
	replayArbiter    string // Override the recorded arbiter; empty keeps it
)

// replayCmd re-runs recorded sequences from their exact wavelength draws and
// verifies the outcomes still match. With --arbiter-override the recorded
// draws are replayed under a different arbiter, so a failure corpus recorded
// under one algorithm doubles as a regression suite for another.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-run recorded lock sequences and verify their outcomes",
	Run: func(cmd *cobra.Command, args []string) {
		records, err := replay.LoadPartition(replayInput, replayPartitions, replayPartition)
		if err != nil {
			logrus.Fatalf("Unable to load replay records: %v", err)
		}

		mismatches := 0
		for _, rec := range records {
			cfg := experiment.Config{
				Laser:           rec.LaserDesignParams,
				Ring:            rec.RingDesignParams,
				InitLaneOrder:   rec.InitLaneOrder,
				TargetLaneOrder: rec.TargetLaneOrder,
				ArbiterName:     rec.Arbiter,
			}
			if replayArbiter != "" {
				cfg.ArbiterName = replayArbiter
			}
			s, err := experiment.NewReplay(cfg, design.NewSimulationKey(seed),
				rec.LaserWavelengths, rec.RingWavelengths, rec.SimRingParams())
			if err != nil {
				logrus.Fatalf("Unable to build replay %s: %v", rec.ID, err)
			}

			status := s.SUT().RunLockSequence(s.Grid(), replaySnapshots)
			if int(status) != rec.ExitStatus {
				mismatches++
				logrus.Warnf("replay %s: got %v, recorded %v", rec.ID, status, sim.ExitStatus(rec.ExitStatus))
			} else {
				logrus.Debugf("replay %s: %v", rec.ID, status)
			}
		}

		logrus.Infof("Replayed %d sequences, %d outcome mismatches.", len(records), mismatches)
	},
}

func init() {
	replayCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for deterministic wavelength draws")
	replayCmd.Flags().StringVar(&replayInput, "input", "replay.json", "Replay record input file")
	replayCmd.Flags().IntVar(&replayPartitions, "total-partitions", 1, "Total partitions of the replay file")
	replayCmd.Flags().IntVar(&replayPartition, "partition", 0, "Partition index to replay")
	replayCmd.Flags().BoolVar(&replaySnapshots, "snapshots", false, "Record per-tick snapshots during replay")
	replayCmd.Flags().StringVar(&replayArbiter, "arbiter-override", "", "Replay under this arbiter instead of the recorded one")
	rootCmd.AddCommand(replayCmd)
}
