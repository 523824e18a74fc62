package replay

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdmsim/wdmsim/sim"
	"github.com/wdmsim/wdmsim/sim/design"
)

func testRecord(status sim.ExitStatus) Record {
	return NewRecord(
		design.LaserDesignParams{NumChannels: 2, CenterWavelength: 1310e-9, GridSpacing: 2.24e-9},
		design.RingDesignParams{FSRMean: 8.96e-9, TuningRangeMean: 4.48e-9},
		design.LaneOrderParams{Alias: "any"},
		design.LaneOrderParams{Alias: "any"},
		"one-by-one",
		[]float64{1303.52e-9, 1305.76e-9},
		[]float64{1295.52e-9, 1303.66e-9},
		[]sim.RingParams{{FSR: 8.96e-9, TuningRange: 4.48e-9}, {FSR: 8.97e-9, TuningRange: 4.47e-9}},
		status,
	)
}

func TestRecord_AppendLoad_Roundtrip(t *testing.T) {
	// GIVEN two records appended to a fresh file
	path := filepath.Join(t.TempDir(), "replay.json")
	recA := testRecord(sim.ExitSuccess)
	recB := testRecord(sim.ExitDuplicateLock)
	require.NoError(t, Append(path, recA))
	require.NoError(t, Append(path, recB))

	// WHEN the file is loaded
	records, err := Load(path)
	require.NoError(t, err)

	// THEN both records come back intact, in order
	require.Len(t, records, 2)
	assert.Equal(t, recA, records[0])
	assert.Equal(t, recB, records[1])
	assert.Equal(t, int(sim.ExitDuplicateLock), records[1].ExitStatus)
}

func TestRecord_IDsAreUnique(t *testing.T) {
	// GIVEN two records built from identical inputs
	a := testRecord(sim.ExitSuccess)
	b := testRecord(sim.ExitSuccess)

	// THEN their IDs differ
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.ID)
}

func TestRecord_SimRingParams_RendersBack(t *testing.T) {
	// GIVEN a record with per-ring parameters
	rec := testRecord(sim.ExitSuccess)

	// WHEN they are rendered back into sim values
	params := rec.SimRingParams()

	// THEN the values survive the JSON-shaped indirection
	require.Len(t, params, 2)
	assert.Equal(t, sim.RingParams{FSR: 8.96e-9, TuningRange: 4.48e-9}, params[0])
	assert.Equal(t, sim.RingParams{FSR: 8.97e-9, TuningRange: 4.47e-9}, params[1])
}

func TestLoad_MissingFile_Errors(t *testing.T) {
	// WHEN a nonexistent file is loaded THEN the error surfaces
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadPartition_SplitsWithRemainderInLast(t *testing.T) {
	// GIVEN a file with five records
	path := filepath.Join(t.TempDir(), "replay.json")
	for i := 0; i < 5; i++ {
		require.NoError(t, Append(path, testRecord(sim.ExitSuccess)))
	}

	// WHEN it is split into two partitions
	first, err := LoadPartition(path, 2, 0)
	require.NoError(t, err)
	second, err := LoadPartition(path, 2, 1)
	require.NoError(t, err)

	// THEN the last partition absorbs the remainder
	assert.Len(t, first, 2)
	assert.Len(t, second, 3)
}

func TestLoadPartition_InvalidIndex_Errors(t *testing.T) {
	// GIVEN a file with one record
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, Append(path, testRecord(sim.ExitSuccess)))

	// THEN out-of-range partitioning fails
	_, err := LoadPartition(path, 2, 2)
	assert.Error(t, err)
	_, err = LoadPartition(path, 0, 0)
	assert.Error(t, err)
}
