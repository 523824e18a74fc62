package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// ExitStatus classifies the terminal outcome of one lock sequence. Outcomes
// are values rather than errors so harnesses can tally them over thousands
// of runs without exception plumbing.
type ExitStatus int

const (
	ExitSuccess        ExitStatus = 0
	ExitZeroLock       ExitStatus = 1
	ExitDuplicateLock  ExitStatus = 2
	ExitWrongLaneOrder ExitStatus = 3
)

func (e ExitStatus) String() string {
	switch e {
	case ExitSuccess:
		return "SUCCESS"
	case ExitZeroLock:
		return "ZERO_LOCK"
	case ExitDuplicateLock:
		return "DUPLICATE_LOCK"
	case ExitWrongLaneOrder:
		return "WRONG_LANE_ORDER"
	}
	return fmt.Sprintf("ExitStatus(%d)", int(e))
}

// ParseExitStatus maps a status name back to its value.
func ParseExitStatus(name string) (ExitStatus, error) {
	for _, e := range []ExitStatus{ExitSuccess, ExitZeroLock, ExitDuplicateLock, ExitWrongLaneOrder} {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown exit status %q", name)
}

// Arbiter drives a pluggable lock-sequencing algorithm one step per tick.
// Concrete arbiters live in the arbiter sub-package; the engine only needs
// this surface.
type Arbiter interface {
	// Tick resumes the algorithm exactly once and reports whether progress
	// was made. It returns false without resuming once the end state or the
	// lock error state is set.
	Tick() bool
	HardReset()
	SoftReset()
	// TargetLaneOrder returns the required lane order, or nil for
	// lock-to-any.
	TargetLaneOrder() []int
	IsEndState() bool
	IsLockErrorState() bool
	// StateDescription renders the arbiter's current state for snapshots.
	StateDescription() string
}

// ArbiterFactory builds an arbiter over the given slices. targetLaneOrder
// nil means lock-to-any.
type ArbiterFactory func(slices []*RxSlice, targetLaneOrder []int) Arbiter

// duplicate-lock wavelength comparison tolerance: wavelengths are quantized
// to a 1 fm grid before set comparison. Locked wavelengths flow by value
// copy from the laser grid, so in practice equal means bit-equal; the
// quantization guards against analytically-equal wavelengths produced by
// different arithmetic paths in generators. 1 fm is six orders of magnitude
// below any channel spacing of interest.
const duplicateLockQuantum = 1e-15

// SystemUnderTest is the behavioral model of the receiver macro: a row of
// RxSlices plus one arbiter. It owns its slices and arbiter exclusively, so
// independent instances can run in parallel workers with no shared state.
//
// Lifecycle: hard reset at boot, soft reset before every lock sequence, and
// a ring-row reshuffle constructs a brand-new SystemUnderTest instead of
// mutating the old one.
type SystemUnderTest struct {
	rxSlices []*RxSlice
	arbiter  Arbiter
	row      *RingRow

	clock     int
	snapshots []Snapshot
}

// NewSystemUnderTest assembles a system from pre-built slices and an arbiter
// and hard-resets it.
func NewSystemUnderTest(rxSlices []*RxSlice, arb Arbiter) *SystemUnderTest {
	rings := make([]*RingSlice, len(rxSlices))
	for i, s := range rxSlices {
		rings[i] = s.Ring()
	}
	sut := &SystemUnderTest{
		rxSlices: rxSlices,
		arbiter:  arb,
		row:      NewRingRow(rings),
	}
	sut.HardReset()
	return sut
}

// Build constructs slices and arbiter from design values.
//
// When initLaneOrder is given, ring wavelengths are permuted by it before
// slice construction; replay callers pass nil because the recorded ring
// wavelength ordering already encodes the lane order. targetLaneOrder nil
// means lock-to-any and skips the lane order check entirely.
func Build(
	ringParams []RingParams,
	ringWavelengths []float64,
	initLaneOrder []int,
	factory ArbiterFactory,
	targetLaneOrder []int,
) *SystemUnderTest {
	if len(ringParams) != len(ringWavelengths) {
		panic(fmt.Sprintf("sim: %d ring params for %d ring wavelengths", len(ringParams), len(ringWavelengths)))
	}

	ordered := ringWavelengths
	if initLaneOrder != nil {
		if len(initLaneOrder) != len(ringWavelengths) {
			panic(fmt.Sprintf("sim: init lane order length %d does not match %d slices", len(initLaneOrder), len(ringWavelengths)))
		}
		ordered = make([]float64, len(ringWavelengths))
		for i, lane := range initLaneOrder {
			ordered[i] = ringWavelengths[lane]
		}
	}

	rxSlices := make([]*RxSlice, len(ordered))
	for i, wavelength := range ordered {
		rxSlices[i] = NewRxSlice(NewRingSlice(wavelength, ringParams[i]), NewTuner())
	}

	return NewSystemUnderTest(rxSlices, factory(rxSlices, targetLaneOrder))
}

// RxSlices returns the slices in chain order.
func (sut *SystemUnderTest) RxSlices() []*RxSlice { return sut.rxSlices }

// Arbiter returns the system's arbiter.
func (sut *SystemUnderTest) Arbiter() Arbiter { return sut.arbiter }

// RingRow returns the wired ring row.
func (sut *SystemUnderTest) RingRow() *RingRow { return sut.row }

// Clock returns the current tick count of the running sequence.
func (sut *SystemUnderTest) Clock() int { return sut.clock }

// Snapshots returns the state log of the last lock sequence.
func (sut *SystemUnderTest) Snapshots() []Snapshot { return sut.snapshots }

// HardReset wipes all slice and arbiter state. Performed at boot.
func (sut *SystemUnderTest) HardReset() {
	for _, s := range sut.rxSlices {
		s.HardReset()
	}
	sut.arbiter.HardReset()
	sut.snapshots = nil
	sut.clock = 0
}

// SoftReset wipes transient slice and arbiter state while preserving
// topology and tuner history. Performed before every lock sequence, which
// is what lets one SystemUnderTest be invoked repeatedly with fresh inputs
// without leaking state between runs.
func (sut *SystemUnderTest) SoftReset() {
	for _, s := range sut.rxSlices {
		s.SoftReset()
	}
	sut.arbiter.SoftReset()
	sut.snapshots = nil
	sut.clock = 0
}

// HotplugLaserGrid connects the grid to the row input, turns the lasers on,
// and seeds the row with one passthrough propagation.
func (sut *SystemUnderTest) HotplugLaserGrid(grid *LaserGrid) {
	sut.row.ConnectLaserGrid(grid)
	grid.TurnOn()
	sut.row.PassthroughWave()
}

// Tick runs one system tick: one arbiter step, then one wave propagation.
// The order is fixed — tuners and rings are modulated first, then the
// wavefront moves downstream. Returns false when the arbiter made no
// progress.
func (sut *SystemUnderTest) Tick() bool {
	if !sut.arbiter.Tick() {
		return false
	}
	sut.row.PropagateWave()
	sut.clock++
	return true
}

// RunLockSequence locks the system onto the given laser grid and classifies
// the terminal outcome.
//
// Classification runs in strict priority order: duplicate lock (computed
// post hoc from lock wavelengths — arbitration hardware cannot observe it),
// then the arbiter's lock error state, then the lane order check (only when
// a target order was specified), then success.
func (sut *SystemUnderTest) RunLockSequence(grid *LaserGrid, recordSnapshots bool) ExitStatus {
	sut.SoftReset()
	sut.HotplugLaserGrid(grid)

	if recordSnapshots {
		sut.snapshots = append(sut.snapshots, takeSnapshot(sut.clock, grid, sut.rxSlices, sut.arbiter))
	}

	for sut.Tick() {
		if recordSnapshots {
			sut.snapshots = append(sut.snapshots, takeSnapshot(sut.clock, grid, sut.rxSlices, sut.arbiter))
		}
	}

	status := sut.classify()
	logrus.Debugf("[tick %07d] lock sequence on laser grid %d finished: %v", sut.clock, grid.ID(), status)
	return status
}

func (sut *SystemUnderTest) classify() ExitStatus {
	if sut.isDuplicateLock() {
		return ExitDuplicateLock
	}
	if sut.arbiter.IsLockErrorState() {
		return ExitZeroLock
	}
	if target := sut.arbiter.TargetLaneOrder(); target != nil {
		if !sut.isCorrectLaneOrder(target) {
			return ExitWrongLaneOrder
		}
	}
	return ExitSuccess
}

// isDuplicateLock reports whether two slices hold the same lock wavelength.
// Only locked slices participate; wavelengths are compared on a quantized
// grid (see duplicateLockQuantum).
func (sut *SystemUnderTest) isDuplicateLock() bool {
	seen := make(map[int64]struct{}, len(sut.rxSlices))
	for _, s := range sut.rxSlices {
		wavelength, ok := s.Tuner().LockWavelength()
		if !ok {
			continue
		}
		key := int64(math.Round(wavelength / duplicateLockQuantum))
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

// isCorrectLaneOrder checks the locked lane order against the target up to
// cyclic rotation. Physical lane numbering has no fixed origin; only
// relative cyclic adjacency matters.
func (sut *SystemUnderTest) isCorrectLaneOrder(target []int) bool {
	current := sut.currentLaneOrder()
	if len(current) != len(target) {
		return false
	}
	n := len(target)
	for shift := 0; shift < n; shift++ {
		match := true
		for j := 0; j < n; j++ {
			if (target[j]+shift)%n != current[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// currentLaneOrder ranks each slice by its lock wavelength: entry i is the
// position slice i's wavelength takes in the ascending wavelength order.
func (sut *SystemUnderTest) currentLaneOrder() []int {
	type lockedSlice struct {
		wavelength float64
		slice      int
	}
	entries := make([]lockedSlice, len(sut.rxSlices))
	for i, s := range sut.rxSlices {
		wavelength, _ := s.Tuner().LockWavelength()
		entries[i] = lockedSlice{wavelength: wavelength, slice: i}
	}

	ranked := append([]lockedSlice(nil), entries...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].wavelength != ranked[j].wavelength {
			return ranked[i].wavelength < ranked[j].wavelength
		}
		return ranked[i].slice < ranked[j].slice
	})

	rank := make(map[int]int, len(ranked))
	for pos, e := range ranked {
		rank[e.slice] = pos
	}

	order := make([]int, len(entries))
	for i := range entries {
		order[i] = rank[i]
	}
	return order
}
