package arbiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdmsim/wdmsim/sim"
)

func TestInstr_SingleStep_DoneAfterOneStep(t *testing.T) {
	// GIVEN a fresh no-op instruction
	d := NewDriver("empty", nil, nil, newOneByOne(sim.LockLeastSignificant))
	in := NewNop()
	require.False(t, in.Done())

	// WHEN it steps once
	in.Step(d)

	// THEN it reports completion
	assert.True(t, in.Done())
}

func TestInstr_Run_StepsToCompletion(t *testing.T) {
	// GIVEN a single-tick instruction
	d := NewDriver("empty", nil, nil, newOneByOne(sim.LockLeastSignificant))
	in := NewNop()

	// WHEN it runs
	Run(in, d)

	// THEN it is done
	assert.True(t, in.Done())
}

func TestInstr_Step_AfterCompletion_Panics(t *testing.T) {
	// GIVEN a completed instruction
	d := NewDriver("empty", nil, nil, newOneByOne(sim.LockLeastSignificant))
	in := NewNop()
	in.Step(d)
	require.True(t, in.Done())

	// WHEN it steps again THEN the contract violation panics
	defer func() {
		if recover() == nil {
			t.Errorf("step after completion did not panic")
		}
	}()
	in.Step(d)
}

func TestInstr_LockThenSearch_SpansTwoSteps(t *testing.T) {
	// GIVEN a driver whose slice 0 holds search data but no lock
	sut := buildSUT(t, "one-by-one", testRingWavelengths, fourRingParams(), nil)
	grid := sim.NewLaserGrid(testLaserWavelengths)
	require.Equal(t, sim.ExitSuccess, sut.RunLockSequence(grid, false))
	d := sut.Arbiter().(*Driver)
	Run(NewUnlock(d, 0), d)

	in := NewLockThenSearch(d, 0, sim.LockLeastSignificant, 0)

	// WHEN the first step runs
	in.Step(d)

	// THEN the lock landed but the instruction is still pending, leaving the
	// program a tick to yield before the follow-up search
	assert.False(t, in.Done())
	rank, ok := d.Memory().LockEntry(0)
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	_, locked := d.Slice(0).Tuner().LockWavelength()
	assert.True(t, locked)

	// WHEN the second step runs
	in.Step(d)

	// THEN the instruction completes with the refreshed search table
	// published: slice 0 still reaches codes 73 and 201
	assert.True(t, in.Done())
	table, ok := d.Memory().SearchTable(0)
	require.True(t, ok)
	assert.Equal(t, CodeSet{73: {}, 201: {}}, table)
}
