package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedArbiter runs one scripted step per tick. It stands in for the real
// arbitration engine so the system-level classification can be exercised
// with exactly controlled lock behavior.
type scriptedArbiter struct {
	steps     []func(a *scriptedArbiter)
	pos       int
	lockError bool
	target    []int
}

func (a *scriptedArbiter) Tick() bool {
	if a.lockError || a.pos >= len(a.steps) {
		return false
	}
	step := a.steps[a.pos]
	a.pos++
	step(a)
	return true
}

func (a *scriptedArbiter) HardReset()             { a.pos = 0; a.lockError = false }
func (a *scriptedArbiter) SoftReset()             { a.pos = 0; a.lockError = false }
func (a *scriptedArbiter) TargetLaneOrder() []int { return a.target }
func (a *scriptedArbiter) IsEndState() bool       { return a.pos >= len(a.steps) }
func (a *scriptedArbiter) IsLockErrorState() bool { return a.lockError }
func (a *scriptedArbiter) StateDescription() string {
	if a.lockError {
		return "scripted:lock_error"
	}
	return "scripted:running"
}

// sequentialLockFactory scripts the canonical slice-by-slice lock sequence:
// one search-and-lock per tick in chain order, escalating to the lock error
// state when a slice finds nothing.
func sequentialLockFactory(slices []*RxSlice, target []int) Arbiter {
	a := &scriptedArbiter{target: target}
	for i := range slices {
		s := slices[i]
		a.steps = append(a.steps, func(arb *scriptedArbiter) {
			s.SearchAndLock(LockLeastSignificant, 0)
			switch s.Tuner().LockStatus() {
			case LockNoWave, LockNotInRange:
				arb.lockError = true
			}
		})
	}
	return a
}

// allAtOnceLockFactory scripts every slice locking in a single tick, before
// any grabbed wavelength can propagate out of the downstream waves.
func allAtOnceLockFactory(slices []*RxSlice, target []int) Arbiter {
	a := &scriptedArbiter{target: target}
	a.steps = append(a.steps, func(arb *scriptedArbiter) {
		for _, s := range slices {
			s.SearchAndLock(LockLeastSignificant, 0)
		}
	})
	return a
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

var (
	testLaserWavelengths = []float64{1303.52e-9, 1305.76e-9, 1308.00e-9, 1310.24e-9}
	testRingWavelengths  = []float64{1295.52e-9, 1303.66e-9, 1308.00e-9, 1312.34e-9}
)

func fourRingParams() []RingParams {
	params := make([]RingParams, 4)
	for i := range params {
		params[i] = testRingParams()
	}
	return params
}

func TestSystemUnderTest_RunLockSequence_SuccessUpToRotation(t *testing.T) {
	// GIVEN a four-slice system whose reachable wavelengths force the locked
	// lane order into a cyclic rotation of the identity target
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, identityOrder(4))
	grid := NewLaserGrid(testLaserWavelengths)

	// WHEN a full lock sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN every slice locks the expected wavelength
	wantLocks := []float64{1305.76e-9, 1308.00e-9, 1310.24e-9, 1303.52e-9}
	for i, s := range sut.RxSlices() {
		wavelength, locked := s.Tuner().LockWavelength()
		require.True(t, locked, "slice %d not locked", i)
		assert.InDelta(t, wantLocks[i], wavelength, 1e-15, "slice %d lock wavelength", i)
	}

	// AND the rotated lane order [1 2 3 0] classifies as success
	assert.Equal(t, ExitSuccess, status)
	assert.Equal(t, 4, sut.Clock())
}

func TestSystemUnderTest_RunLockSequence_WrongLaneOrder(t *testing.T) {
	// GIVEN the same system but a target order that is not a rotation of the
	// locked order [1 2 3 0]
	target := []int{0, 2, 1, 3}
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, target)
	grid := NewLaserGrid(testLaserWavelengths)

	// WHEN a full lock sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN the sequence classifies as wrong lane order
	assert.Equal(t, ExitWrongLaneOrder, status)
}

func TestSystemUnderTest_RunLockSequence_LockToAny_SkipsOrderCheck(t *testing.T) {
	// GIVEN the same system with no target lane order
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, nil)
	grid := NewLaserGrid(testLaserWavelengths)

	// WHEN a full lock sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN any distinct lock assignment is a success
	assert.Equal(t, ExitSuccess, status)
}

func TestSystemUnderTest_RunLockSequence_DuplicateLock(t *testing.T) {
	// GIVEN identical rings locking simultaneously, before the grabbed
	// wavelength can leave the downstream waves
	ringWavelengths := []float64{1303.52e-9, 1303.52e-9}
	sut := Build([]RingParams{testRingParams(), testRingParams()}, ringWavelengths, nil, allAtOnceLockFactory, identityOrder(2))
	grid := NewLaserGrid([]float64{1303.52e-9, 1305.76e-9})

	// WHEN a full lock sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN both slices hold the same wavelength and the sequence classifies
	// as duplicate lock, taking priority over the lane order check
	w0, _ := sut.RxSlices()[0].Tuner().LockWavelength()
	w1, _ := sut.RxSlices()[1].Tuner().LockWavelength()
	assert.Equal(t, w0, w1)
	assert.Equal(t, ExitDuplicateLock, status)
}

func TestSystemUnderTest_RunLockSequence_ZeroLock(t *testing.T) {
	// GIVEN an empty laser grid
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, identityOrder(4))
	grid := NewLaserGrid(nil)

	// WHEN a lock sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN the first slice's no-wave lock escalates to zero lock
	assert.Equal(t, ExitZeroLock, status)
}

func TestSystemUnderTest_Classify_DuplicateBeatsZeroLock(t *testing.T) {
	// GIVEN an arbiter that produces a duplicate lock and then flags the
	// lock error state
	factory := func(slices []*RxSlice, target []int) Arbiter {
		a := &scriptedArbiter{target: target}
		a.steps = append(a.steps, func(arb *scriptedArbiter) {
			for _, s := range slices {
				s.SearchAndLock(LockLeastSignificant, 0)
			}
			arb.lockError = true
		})
		return a
	}
	ringWavelengths := []float64{1303.52e-9, 1303.52e-9}
	sut := Build([]RingParams{testRingParams(), testRingParams()}, ringWavelengths, nil, factory, nil)
	grid := NewLaserGrid([]float64{1303.52e-9, 1305.76e-9})

	// WHEN the sequence runs
	status := sut.RunLockSequence(grid, false)

	// THEN duplicate lock wins the classification priority
	assert.Equal(t, ExitDuplicateLock, status)
}

func TestSystemUnderTest_Build_AppliesInitLaneOrder(t *testing.T) {
	// GIVEN an initial lane order that reverses the ring wavelengths
	initOrder := []int{3, 2, 1, 0}

	// WHEN the system is built
	sut := Build(fourRingParams(), testRingWavelengths, initOrder, sequentialLockFactory, nil)

	// THEN slice i carries ring wavelength initOrder[i]
	for i, s := range sut.RxSlices() {
		assert.Equal(t, testRingWavelengths[initOrder[i]], s.Ring().Wavelength, "slice %d", i)
	}
}

func TestSystemUnderTest_Build_LengthMismatch_Panics(t *testing.T) {
	// WHEN params and wavelengths disagree in length THEN Build panics
	defer func() {
		if recover() == nil {
			t.Errorf("length mismatch did not panic")
		}
	}()
	Build([]RingParams{testRingParams()}, testRingWavelengths, nil, sequentialLockFactory, nil)
}

func TestSystemUnderTest_RunLockSequence_RecordsSnapshots(t *testing.T) {
	// GIVEN a four-slice system
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, nil)
	grid := NewLaserGrid(testLaserWavelengths)

	// WHEN the sequence runs with snapshot recording
	sut.RunLockSequence(grid, true)

	// THEN one snapshot exists per tick plus the initial state
	snaps := sut.Snapshots()
	require.Len(t, snaps, 5)
	assert.Equal(t, 0, snaps[0].Clock)
	assert.Equal(t, 4, snaps[4].Clock)
	assert.Len(t, snaps[0].Slices, 4)

	// AND a later sequence without recording clears the log
	grid.Shuffle(testLaserWavelengths)
	sut.RunLockSequence(grid, false)
	assert.Empty(t, sut.Snapshots())
}

func TestSystemUnderTest_RunLockSequence_RepeatedSwaps(t *testing.T) {
	// GIVEN a system that already completed a sequence
	sut := Build(fourRingParams(), testRingWavelengths, nil, sequentialLockFactory, identityOrder(4))
	grid := NewLaserGrid(testLaserWavelengths)
	require.Equal(t, ExitSuccess, sut.RunLockSequence(grid, false))

	// WHEN the laser grid is hot swapped and the sequence reruns
	grid.Shuffle([]float64{1303.62e-9, 1305.86e-9, 1308.10e-9, 1310.34e-9})
	status := sut.RunLockSequence(grid, false)

	// THEN the fresh sequence runs from a clean soft-reset state
	assert.Equal(t, ExitSuccess, status)
	assert.Equal(t, 4, sut.Clock())
}

func TestParseExitStatus_RoundTrip(t *testing.T) {
	// GIVEN every exit status
	for _, want := range []ExitStatus{ExitSuccess, ExitZeroLock, ExitDuplicateLock, ExitWrongLaneOrder} {
		// WHEN its name is parsed back THEN the value round-trips
		got, err := ParseExitStatus(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// AND an unknown name is rejected
	_, err := ParseExitStatus("PARTIAL_LOCK")
	assert.Error(t, err)
}
