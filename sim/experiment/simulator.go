// Package experiment orchestrates randomized lock experiments: the swap-loop
// simulator around one system under test, arbiter-vs-arbiter compare runs,
// a single-sequence debug harness, and seed-parallel sweeps.
package experiment

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wdmsim/wdmsim/sim"
	"github.com/wdmsim/wdmsim/sim/arbiter"
	"github.com/wdmsim/wdmsim/sim/design"
)

// Config is everything a lock experiment needs besides its seed.
type Config struct {
	Laser           design.LaserDesignParams
	Ring            design.RingDesignParams
	InitLaneOrder   design.LaneOrderParams
	TargetLaneOrder design.LaneOrderParams
	ArbiterName     string
	// Registry resolves ArbiterName. Nil means the builtin registry.
	Registry *arbiter.Registry
}

// Validate checks the design parameters and the arbiter name.
func (c Config) Validate() error {
	if err := c.Laser.Validate(); err != nil {
		return err
	}
	if err := c.Ring.Validate(); err != nil {
		return err
	}
	if err := c.InitLaneOrder.Validate(); err != nil {
		return fmt.Errorf("init lane order: %w", err)
	}
	if err := c.TargetLaneOrder.Validate(); err != nil {
		return fmt.Errorf("target lane order: %w", err)
	}
	if _, ok := c.registry().Lookup(c.ArbiterName); !ok {
		return fmt.Errorf("arbiter %q not registered (have %v)", c.ArbiterName, c.registry().Names())
	}
	return nil
}

func (c Config) registry() *arbiter.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return arbiter.Builtin()
}

// Simulator drives one system under test through laser and ring swap loops.
// It owns its RNG, laser grid, and system exclusively, so independent
// simulators run in parallel workers with no shared state.
type Simulator struct {
	cfg Config
	rng *design.PartitionedRNG

	sut  *sim.SystemUnderTest
	grid *sim.LaserGrid

	initOrder   []int
	targetOrder []int

	ringParams      []sim.RingParams
	ringWavelengths []float64
}

// New builds a simulator from design parameters: one laser comb draw, one
// ring row draw, and a freshly booted system under test.
func New(cfg Config, key design.SimulationKey) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	initOrder, err := cfg.InitLaneOrder.Order()
	if err != nil {
		return nil, err
	}
	targetOrder, err := cfg.TargetLaneOrder.Order()
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:         cfg,
		rng:         design.NewPartitionedRNG(key),
		initOrder:   initOrder,
		targetOrder: targetOrder,
	}
	s.grid = sim.NewLaserGrid(design.LaserWavelengths(s.rng.ForSubsystem(design.SubsystemLaser), cfg.Laser))
	s.rebuildSystem()
	return s, nil
}

// NewReplay builds a simulator from recorded wavelengths instead of fresh
// draws. The initial lane order is not applied: the recorded ring wavelength
// ordering already encodes it, and applying it again would doubly reorder.
func NewReplay(
	cfg Config,
	key design.SimulationKey,
	laserWavelengths []float64,
	ringWavelengths []float64,
	ringParams []sim.RingParams,
) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	targetOrder, err := cfg.TargetLaneOrder.Order()
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:             cfg,
		rng:             design.NewPartitionedRNG(key),
		targetOrder:     targetOrder,
		ringParams:      append([]sim.RingParams(nil), ringParams...),
		ringWavelengths: append([]float64(nil), ringWavelengths...),
	}
	s.grid = sim.NewLaserGrid(laserWavelengths)
	s.sut = sim.Build(s.ringParams, s.ringWavelengths, nil, s.factory(), s.targetOrder)
	return s, nil
}

func (s *Simulator) factory() sim.ArbiterFactory {
	return s.cfg.registry().SUTFactory(s.cfg.ArbiterName)
}

// rebuildSystem draws a fresh ring row and constructs a new system under
// test around it. The ring wavelength ordering is unsorted; the initial lane
// order permutes it at construction.
func (s *Simulator) rebuildSystem() {
	rng := s.rng.ForSubsystem(design.SubsystemRing)
	s.ringParams = design.RingRowParams(rng, s.cfg.Laser.NumChannels, s.cfg.Ring)
	if s.cfg.Ring.InheritLaserVariance {
		s.ringWavelengths = s.grid.Wavelengths()
	} else {
		s.ringWavelengths = design.RingWavelengths(rng, s.cfg.Laser, s.cfg.Ring)
	}
	s.sut = sim.Build(s.ringParams, s.ringWavelengths, s.initOrder, s.factory(), s.targetOrder)
}

// SUT returns the current system under test. A ring swap replaces it.
func (s *Simulator) SUT() *sim.SystemUnderTest { return s.sut }

// Grid returns the laser grid.
func (s *Simulator) Grid() *sim.LaserGrid { return s.grid }

// RingParams returns the current ring row parameter draw.
func (s *Simulator) RingParams() []sim.RingParams {
	return append([]sim.RingParams(nil), s.ringParams...)
}

// RingWavelengths returns the current as-fabricated ring wavelength draw,
// before lane order permutation.
func (s *Simulator) RingWavelengths() []float64 {
	return append([]float64(nil), s.ringWavelengths...)
}

// ShuffleLaserGrid swaps a fresh laser comb draw into the grid in place,
// modeling a laser burst hot swap.
func (s *Simulator) ShuffleLaserGrid() {
	s.grid.Shuffle(design.LaserWavelengths(s.rng.ForSubsystem(design.SubsystemLaser), s.cfg.Laser))
}

// ShuffleRingRow swaps in a freshly drawn ring row by constructing a new
// system under test, modeling a different fabricated die.
func (s *Simulator) ShuffleRingRow() {
	s.rebuildSystem()
}

// RunOnce shuffles a fresh laser comb into the grid and runs one lock
// sequence to its terminal outcome.
func (s *Simulator) RunOnce(recordSnapshots bool) sim.ExitStatus {
	s.ShuffleLaserGrid()
	return s.sut.RunLockSequence(s.grid, recordSnapshots)
}

// RunUntilExit re-randomizes the hardware until a lock sequence ends with
// the wanted status, swapping the ring row between attempts so every sequence
// sees a fresh die and a fresh laser comb. It returns how many sequences ran
// and whether the status was hit within maxTrials. The snapshots of the last
// sequence stay on the system under test for inspection.
func (s *Simulator) RunUntilExit(want sim.ExitStatus, maxTrials int) (int, bool) {
	for t := 1; t <= maxTrials; t++ {
		if s.RunOnce(true) == want {
			return t, true
		}
		s.ShuffleRingRow()
	}
	return maxTrials, false
}

// DoExperiment runs the full swap-loop experiment: the outer loop swaps the
// ring row, the inner loop swaps the laser grid and runs one lock sequence
// per swap. Returns the tallied outcome over numRingSwaps*numLaserSwaps
// sequences.
func (s *Simulator) DoExperiment(numRingSwaps, numLaserSwaps int) Outcome {
	var out Outcome
	for r := 0; r < numRingSwaps; r++ {
		s.ShuffleRingRow()
		for l := 0; l < numLaserSwaps; l++ {
			out.Tally(s.RunOnce(false))
		}
	}
	out.Finalize()

	logrus.Infof("experiment done: %d sequences, %d failures (failure in time %.6f)",
		out.NumSequences, out.NumFailure, out.FailureInTime)
	logrus.Debugf("  zero lock %d, duplicate lock %d, wrong lane order %d",
		out.NumZeroLock, out.NumDuplicateLock, out.NumWrongLaneOrder)
	return out
}

// DoCompareExperiment runs the swap-loop experiment on two arbiters over
// identical hardware draws and laser bursts, and counts the sequences where
// one succeeded and the other failed. When stopOnFailure is set, the first
// mismatch aborts with an error carrying both statuses.
func (s *Simulator) DoCompareExperiment(
	compareArbiter string,
	numRingSwaps, numLaserSwaps int,
	stopOnFailure bool,
) (CompareOutcome, error) {
	var out CompareOutcome

	registry := s.cfg.registry()
	if _, ok := registry.Lookup(compareArbiter); !ok {
		return out, fmt.Errorf("compare arbiter %q not registered (have %v)", compareArbiter, registry.Names())
	}
	compareFactory := registry.SUTFactory(compareArbiter)

	for r := 0; r < numRingSwaps; r++ {
		s.ShuffleRingRow()
		sutCompare := sim.Build(s.ringParams, s.ringWavelengths, s.initOrder, compareFactory, s.targetOrder)

		for l := 0; l < numLaserSwaps; l++ {
			s.ShuffleLaserGrid()
			status := s.sut.RunLockSequence(s.grid, false)
			statusCompare := sutCompare.RunLockSequence(s.grid, false)
			if err := out.tally(status, statusCompare, stopOnFailure); err != nil {
				return out, err
			}
		}
	}
	out.finalize()

	logrus.Infof("compare experiment done: %d sequences, %d mismatches (mismatch rate %.6f)",
		out.NumSequences, out.NumMismatch, out.MismatchRate)
	return out, nil
}
