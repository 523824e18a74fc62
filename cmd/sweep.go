package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wdmsim/wdmsim/sim/experiment"
)

var (
	sweepTrials        int      // Independent experiment trials, seeded seed, seed+1, ...
	sweepWorkers       int      // Worker pool size; 0 means GOMAXPROCS
	sweepLaserSections []string // Laser sections to sweep; empty means --laser-section
	sweepRingSections  []string // Ring sections to sweep; empty means --ring-section
)

// sweepCmd fans one experiment out over many seeds, optionally crossed over
// several laser and ring design sections
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run many seeds of one experiment across a worker pool",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadExperimentConfig()
		if err != nil {
			logrus.Fatalf("Invalid experiment config: %v", err)
		}
		points, err := loadSweepPoints()
		if err != nil {
			logrus.Fatalf("Invalid sweep design points: %v", err)
		}

		logrus.Infof("Starting sweep: arbiter=%s points=%d trials=%d workers=%d base-seed=%d",
			cfg.ArbiterName, len(points), sweepTrials, sweepWorkers, seed)
		startTime := time.Now()

		pointResults, err := experiment.GridSweep(cfg, points, experiment.SweepConfig{
			Trials:        sweepTrials,
			NumRingSwaps:  numRingSwaps,
			NumLaserSwaps: numLaserSwaps,
			BaseSeed:      seed,
			Workers:       sweepWorkers,
		})
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}

		for _, pr := range pointResults {
			for _, r := range pr.Results {
				logrus.Debugf("    %s seed %d: failure in time %f", pr.Point.Name, r.Seed, r.Outcome.FailureInTime)
			}
			logrus.Infof("[Sweep %s]", pr.Point.Name)
			logrus.Infof("    - %06d trials", pr.Summary.Trials)
			logrus.Infof("    - %f mean failure in time", pr.Summary.MeanFailureInTime)
			logrus.Infof("    - %f stddev failure in time", pr.Summary.StdDevFailureInTime)
			logrus.Infof("    - %f mean zero lock rate", pr.Summary.MeanZeroLock)
			logrus.Infof("    - %f mean duplicate lock rate", pr.Summary.MeanDuplicateLock)
			logrus.Infof("    - %f mean wrong lane order rate", pr.Summary.MeanWrongLaneOrder)
		}
		logrus.Infof("Sweep complete in %v.", time.Since(startTime))
	},
}

// loadSweepPoints builds the cartesian product of the requested laser and
// ring sections. Without section lists the sweep has a single point taken
// from the shared --laser-section/--ring-section flags.
func loadSweepPoints() ([]experiment.DesignPoint, error) {
	laserSections := sweepLaserSections
	if len(laserSections) == 0 {
		laserSections = []string{laserConfigSection}
	}
	ringSections := sweepRingSections
	if len(ringSections) == 0 {
		ringSections = []string{ringConfigSection}
	}

	points := make([]experiment.DesignPoint, 0, len(laserSections)*len(ringSections))
	for _, ls := range laserSections {
		laser, err := LoadLaserParams(laserConfigFile, ls)
		if err != nil {
			return nil, err
		}
		for _, rs := range ringSections {
			ring, err := LoadRingParams(ringConfigFile, rs)
			if err != nil {
				return nil, err
			}
			points = append(points, experiment.DesignPoint{
				Name:  fmt.Sprintf("%s/%s", ls, rs),
				Laser: laser,
				Ring:  ring,
			})
		}
	}
	return points, nil
}

func init() {
	addExperimentFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepTrials, "trials", 16, "Number of independent trials per design point")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringSliceVar(&sweepLaserSections, "laser-sections", nil, "Laser sections to cross (default: --laser-section)")
	sweepCmd.Flags().StringSliceVar(&sweepRingSections, "ring-sections", nil, "Ring sections to cross (default: --ring-section)")
	rootCmd.AddCommand(sweepCmd)
}
