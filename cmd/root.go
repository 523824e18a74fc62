package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags shared by every experiment command
	seed     int64  // Master seed; subsystem RNGs derive from it
	logLevel string // Log verbosity level

	laserConfigFile        string // YAML file holding laser design sections
	laserConfigSection     string // Section name within the laser config file
	ringConfigFile         string // YAML file holding ring design sections
	ringConfigSection      string // Section name within the ring config file
	initLaneOrderFile      string // YAML file holding lane order sections
	initLaneOrderSection   string // Initial (as-placed) lane order section
	targetLaneOrderFile    string // YAML file holding lane order sections
	targetLaneOrderSection string // Required (target) lane order section

	arbiterName   string // Arbiter registry name
	numLaserSwaps int    // Inner loop: laser bursts per ring row
	numRingSwaps  int    // Outer loop: ring row draws per experiment
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "wdmsim",
	Short: "Behavioral simulator for WDM wavelength lock arbitration",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addExperimentFlags registers the design/arbiter/swap flags shared by the
// experiment commands.
func addExperimentFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for deterministic wavelength draws")

	cmd.Flags().StringVar(&laserConfigFile, "laser-config", "configs/laser.yml", "Laser design config file")
	cmd.Flags().StringVar(&laserConfigSection, "laser-section", "default", "Section within the laser config file")
	cmd.Flags().StringVar(&ringConfigFile, "ring-config", "configs/ring.yml", "Ring design config file")
	cmd.Flags().StringVar(&ringConfigSection, "ring-section", "default", "Section within the ring config file")
	cmd.Flags().StringVar(&initLaneOrderFile, "init-lane-order-config", "configs/lane_order.yml", "Lane order config file for initial placement")
	cmd.Flags().StringVar(&initLaneOrderSection, "init-lane-order-section", "any", "Initial lane order section")
	cmd.Flags().StringVar(&targetLaneOrderFile, "tgt-lane-order-config", "configs/lane_order.yml", "Lane order config file for the lock target")
	cmd.Flags().StringVar(&targetLaneOrderSection, "tgt-lane-order-section", "any", "Target lane order section")

	cmd.Flags().StringVar(&arbiterName, "arbiter", "one-by-one", "Arbiter registry name (see 'wdmsim arbiters')")
	cmd.Flags().IntVar(&numLaserSwaps, "num-laser-swaps", 100, "Laser grid hot swaps per ring row")
	cmd.Flags().IntVar(&numRingSwaps, "num-ring-swaps", 10, "Ring row swaps per experiment")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
