package arbiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetSearchTable_StoresCopy(t *testing.T) {
	// GIVEN a memory and a caller-owned code set
	m := NewMemory()
	codes := CodeSet{64: {}, 128: {}}
	m.SetSearchTable(0, codes)

	// WHEN the caller mutates its set afterwards
	codes[192] = struct{}{}

	// THEN the stored table is unaffected
	stored, ok := m.SearchTable(0)
	require.True(t, ok)
	assert.Len(t, stored, 2)
}

func TestMemory_SearchTable_ReadReturnsCopy(t *testing.T) {
	// GIVEN a stored search table
	m := NewMemory()
	m.SetSearchTable(0, CodeSet{64: {}})

	// WHEN a read result is mutated
	got, ok := m.SearchTable(0)
	require.True(t, ok)
	got[128] = struct{}{}

	// THEN the stored table is unaffected
	again, _ := m.SearchTable(0)
	assert.Len(t, again, 1)
}

func TestMemory_SearchTable_Missing(t *testing.T) {
	// GIVEN an empty memory
	m := NewMemory()

	// WHEN an absent slice is read
	_, ok := m.SearchTable(3)

	// THEN the read reports absence
	assert.False(t, ok)
}

func TestMemory_LockTable_CopyVsView(t *testing.T) {
	// GIVEN a lock table entry
	m := NewMemory()
	m.SetLockEntry(1, 0)

	// WHEN the copy is mutated
	m.LockTableCopy()[1] = 99

	// THEN the memory is unaffected
	idx, ok := m.LockEntry(1)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// WHEN the view is mutated
	m.LockTableView()[1] = 99

	// THEN the mutation is visible, aliasing is the view's contract
	idx, _ = m.LockEntry(1)
	assert.Equal(t, 99, idx)
}

func TestMemory_DeleteLockEntry(t *testing.T) {
	// GIVEN a lock table entry
	m := NewMemory()
	m.SetLockEntry(2, 1)

	// WHEN it is deleted
	m.DeleteLockEntry(2)

	// THEN the entry is gone
	_, ok := m.LockEntry(2)
	assert.False(t, ok)
}

func TestMemory_Flush_UnknownLabel_Panics(t *testing.T) {
	// GIVEN a memory
	m := NewMemory()

	// WHEN flushing a label outside the schema THEN it panics
	defer func() {
		if recover() == nil {
			t.Errorf("flushing unknown label did not panic")
		}
	}()
	m.Flush(Label("HEAP"))
}

func TestMemory_Flush_EmptiesOnlyNamedContainer(t *testing.T) {
	// GIVEN entries in two containers
	m := NewMemory()
	m.SetSearchTable(0, CodeSet{64: {}})
	m.SetLockEntry(0, 0)

	// WHEN only the lock table is flushed
	m.Flush(LockTable)

	// THEN the lock table is empty and the search tables survive
	_, lockOK := m.LockEntry(0)
	assert.False(t, lockOK)
	_, searchOK := m.SearchTable(0)
	assert.True(t, searchOK)
}

func TestMemory_Reset_EmptiesEverything(t *testing.T) {
	// GIVEN entries in every container
	m := NewMemory()
	m.SetSearchTable(0, CodeSet{64: {}})
	m.SetRelationIndex(1, 2)
	m.SetLockEntry(0, 0)
	m.ScratchpadAdd(7)

	// WHEN the memory resets
	m.Reset()

	// THEN every container is empty
	assert.Empty(t, m.SearchTablesCopy())
	assert.Empty(t, m.RelationIndexCopy())
	assert.Empty(t, m.LockTableCopy())
	assert.Empty(t, m.ScratchpadCopy())
}

func TestMemory_Scratchpad_SetSemanticsAndSortedCopy(t *testing.T) {
	// GIVEN scratchpad values added out of order, one twice
	m := NewMemory()
	m.ScratchpadAdd(9)
	m.ScratchpadAdd(3)
	m.ScratchpadAdd(9)

	// THEN membership holds and the copy is sorted and deduplicated
	assert.True(t, m.ScratchpadContains(3))
	assert.Equal(t, []int{3, 9}, m.ScratchpadCopy())

	// WHEN a value is removed
	m.ScratchpadRemove(9)

	// THEN it is gone
	assert.False(t, m.ScratchpadContains(9))
}
