// Package arbiter implements the instruction-driven arbitration engine: the
// driver that resumes a pluggable lock-sequencing algorithm one step per
// tick, the single-step hardware instructions it issues, the fixed-schema
// working memory, and the built-in algorithms behind an explicit registry.
package arbiter

import (
	"fmt"
	"sort"
	"strings"
)

// Label names one of the four containers of the arbiter memory schema.
type Label string

const (
	SearchTables       Label = "SEARCH_TABLES"
	RelationIndexTable Label = "RELATION_INDEX_TABLE"
	LockTable          Label = "LOCK_TABLE"
	Scratchpad         Label = "SCRATCHPAD"
)

// Labels returns the schema labels in declaration order.
func Labels() []Label {
	return []Label{SearchTables, RelationIndexTable, LockTable, Scratchpad}
}

// CodeSet is a set of quantized voltage codes.
type CodeSet map[int]struct{}

func copyCodeSet(s CodeSet) CodeSet {
	out := make(CodeSet, len(s))
	for code := range s {
		out[code] = struct{}{}
	}
	return out
}

// Memory is the arbiter's fixed-schema working memory: search tables per
// slice, a relation index table, the lock table, and a free-form scratchpad.
//
// Reads return independent copies so algorithm state cannot be corrupted
// through aliasing; the explicit *View accessors return the live containers
// for the rare case where aliasing is wanted.
type Memory struct {
	searchTables  map[int]CodeSet
	relationIndex map[int]int
	lockTable     map[int]int
	scratchpad    map[int]struct{}
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset empties every container.
func (m *Memory) Reset() {
	m.searchTables = make(map[int]CodeSet)
	m.relationIndex = make(map[int]int)
	m.lockTable = make(map[int]int)
	m.scratchpad = make(map[int]struct{})
}

// Flush empties the named container. An unknown label is a schema violation
// and panics.
func (m *Memory) Flush(label Label) {
	switch label {
	case SearchTables:
		m.searchTables = make(map[int]CodeSet)
	case RelationIndexTable:
		m.relationIndex = make(map[int]int)
	case LockTable:
		m.lockTable = make(map[int]int)
	case Scratchpad:
		m.scratchpad = make(map[int]struct{})
	default:
		panic(fmt.Sprintf("arbiter: label %q not in memory schema", label))
	}
}

// SetSearchTable stores a copy of the slice's search table.
func (m *Memory) SetSearchTable(sliceIdx int, codes CodeSet) {
	m.searchTables[sliceIdx] = copyCodeSet(codes)
}

// SearchTable returns a copy of the slice's stored search table.
func (m *Memory) SearchTable(sliceIdx int) (CodeSet, bool) {
	codes, ok := m.searchTables[sliceIdx]
	if !ok {
		return nil, false
	}
	return copyCodeSet(codes), true
}

// SearchTablesCopy returns a copy of the whole SEARCH_TABLES container.
func (m *Memory) SearchTablesCopy() map[int]CodeSet {
	out := make(map[int]CodeSet, len(m.searchTables))
	for idx, codes := range m.searchTables {
		out[idx] = copyCodeSet(codes)
	}
	return out
}

// SetRelationIndex stores one relation index entry.
func (m *Memory) SetRelationIndex(key, value int) {
	m.relationIndex[key] = value
}

// RelationIndexCopy returns a copy of the RELATION_INDEX_TABLE container.
func (m *Memory) RelationIndexCopy() map[int]int {
	out := make(map[int]int, len(m.relationIndex))
	for k, v := range m.relationIndex {
		out[k] = v
	}
	return out
}

// SetLockEntry records a slice's lock index in the LOCK_TABLE.
func (m *Memory) SetLockEntry(sliceIdx, lockIdx int) {
	m.lockTable[sliceIdx] = lockIdx
}

// DeleteLockEntry removes a slice's LOCK_TABLE entry, if present.
func (m *Memory) DeleteLockEntry(sliceIdx int) {
	delete(m.lockTable, sliceIdx)
}

// LockEntry returns a slice's lock index.
func (m *Memory) LockEntry(sliceIdx int) (int, bool) {
	idx, ok := m.lockTable[sliceIdx]
	return idx, ok
}

// LockTableCopy returns a copy of the LOCK_TABLE container.
func (m *Memory) LockTableCopy() map[int]int {
	out := make(map[int]int, len(m.lockTable))
	for k, v := range m.lockTable {
		out[k] = v
	}
	return out
}

// LockTableView returns the live LOCK_TABLE container. Mutations through
// the view are visible to the memory; use LockTableCopy unless aliasing is
// the point.
func (m *Memory) LockTableView() map[int]int { return m.lockTable }

// ScratchpadAdd adds a value to the scratchpad set.
func (m *Memory) ScratchpadAdd(v int) { m.scratchpad[v] = struct{}{} }

// ScratchpadRemove removes a value from the scratchpad set.
func (m *Memory) ScratchpadRemove(v int) { delete(m.scratchpad, v) }

// ScratchpadContains reports scratchpad membership.
func (m *Memory) ScratchpadContains(v int) bool {
	_, ok := m.scratchpad[v]
	return ok
}

// ScratchpadCopy returns the scratchpad contents sorted ascending.
func (m *Memory) ScratchpadCopy() []int {
	out := make([]int, 0, len(m.scratchpad))
	for v := range m.scratchpad {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (m *Memory) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%v ", SearchTables, m.searchTables)
	fmt.Fprintf(&b, "%s=%v ", RelationIndexTable, m.relationIndex)
	fmt.Fprintf(&b, "%s=%v ", LockTable, m.lockTable)
	fmt.Fprintf(&b, "%s=%v", Scratchpad, m.ScratchpadCopy())
	return b.String()
}
