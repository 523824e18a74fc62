package arbiter

import (
	"fmt"

	"github.com/wdmsim/wdmsim/sim"
)

// Instruction is one hardware operation the arbiter can issue to a slice.
// Step advances the operation by exactly one tick and Done reports
// completion, so an operation may span several ticks with the program
// yielding between steps while the wave propagates. The shipped operations
// all finish in a single step except LockThenSearchInstr.
//
// Programs issue at most one step per Resume; the driver never batches them.
type Instruction interface {
	// Step advances the operation by one tick against the driver's hardware
	// and memory. Stepping a completed instruction panics.
	Step(d *Driver)
	// Done reports whether the operation has completed.
	Done() bool
	String() string
}

// Run steps an instruction to completion. Only single-tick instructions
// should run this way; a multi-tick instruction run to completion collapses
// its steps into one tick and skips the propagation between them.
func Run(in Instruction, d *Driver) {
	for !in.Done() {
		in.Step(d)
	}
}

// instrState tracks completion, shared by every instruction.
type instrState struct {
	done bool
}

func (s *instrState) Done() bool { return s.done }

func (s *instrState) finish() { s.done = true }

func (s *instrState) mustPending(in Instruction) {
	if s.done {
		panic(fmt.Sprintf("arbiter: %v stepped after completion", in))
	}
}

func mustSliceIdx(d *Driver, sliceIdx int) {
	if sliceIdx < 0 || sliceIdx >= d.NumSlices() {
		panic(fmt.Sprintf("arbiter: instruction targets slice %d, have %d slices", sliceIdx, d.NumSlices()))
	}
}

// SearchInstr sweeps one slice and publishes its search table to the
// SEARCH_TABLES container.
type SearchInstr struct {
	instrState
	sliceIdx int
}

// NewSearch builds a search instruction. Panics on an invalid slice index.
func NewSearch(d *Driver, sliceIdx int) *SearchInstr {
	mustSliceIdx(d, sliceIdx)
	return &SearchInstr{sliceIdx: sliceIdx}
}

func (in *SearchInstr) Step(d *Driver) {
	in.mustPending(in)
	s := d.Slice(in.sliceIdx)
	s.Search()
	d.Memory().SetSearchTable(in.sliceIdx, s.Tuner().SearchTable())
	d.logStep("%v: %v", in, s.Tuner().SearchStatus())
	in.finish()
}

func (in *SearchInstr) String() string {
	return fmt.Sprintf("SEARCH slice=%d", in.sliceIdx)
}

// LockInstr locks one slice from its existing search data and, on success,
// records the lock index in the LOCK_TABLE.
type LockInstr struct {
	instrState
	sliceIdx int
	mode     sim.LockMode
	sel      int
}

// NewLock builds a lock instruction. Panics on an invalid slice index; mode
// and select are validated by the tuner at run time.
func NewLock(d *Driver, sliceIdx int, mode sim.LockMode, sel int) *LockInstr {
	mustSliceIdx(d, sliceIdx)
	return &LockInstr{sliceIdx: sliceIdx, mode: mode, sel: sel}
}

func (in *LockInstr) Step(d *Driver) {
	in.mustPending(in)
	s := d.Slice(in.sliceIdx)
	s.Lock(in.mode, in.sel)
	if s.Tuner().LockStatus() == sim.LockDone {
		d.Memory().SetLockEntry(in.sliceIdx, s.Tuner().LockIndex())
	}
	d.logStep("%v: %v", in, s.Tuner().LockStatus())
	in.finish()
}

func (in *LockInstr) String() string {
	return fmt.Sprintf("LOCK slice=%d mode=%s sel=%d", in.sliceIdx, in.mode, in.sel)
}

// SearchAndLockInstr runs search followed by lock on one slice in a single
// tick, publishing both the search table and the lock entry.
type SearchAndLockInstr struct {
	instrState
	sliceIdx int
	mode     sim.LockMode
	sel      int
}

// NewSearchAndLock builds a combined search+lock instruction. Panics on an
// invalid slice index.
func NewSearchAndLock(d *Driver, sliceIdx int, mode sim.LockMode, sel int) *SearchAndLockInstr {
	mustSliceIdx(d, sliceIdx)
	return &SearchAndLockInstr{sliceIdx: sliceIdx, mode: mode, sel: sel}
}

func (in *SearchAndLockInstr) Step(d *Driver) {
	in.mustPending(in)
	s := d.Slice(in.sliceIdx)
	s.SearchAndLock(in.mode, in.sel)
	d.Memory().SetSearchTable(in.sliceIdx, s.Tuner().SearchTable())
	if s.Tuner().LockStatus() == sim.LockDone {
		d.Memory().SetLockEntry(in.sliceIdx, s.Tuner().LockIndex())
	}
	d.logStep("%v: search=%v lock=%v", in, s.Tuner().SearchStatus(), s.Tuner().LockStatus())
	in.finish()
}

func (in *SearchAndLockInstr) String() string {
	return fmt.Sprintf("SEARCH_AND_LOCK slice=%d mode=%s sel=%d", in.sliceIdx, in.mode, in.sel)
}

// LockThenSearchInstr locks one slice on its first step, then on a later
// step re-runs the search and republishes the table. With a propagation in
// between, the refreshed table reflects the wave as thinned by the lock's
// own grab working through the chain.
type LockThenSearchInstr struct {
	instrState
	sliceIdx int
	mode     sim.LockMode
	sel      int
	locking  bool
}

// NewLockThenSearch builds a two-tick lock-then-search instruction. Panics
// on an invalid slice index.
func NewLockThenSearch(d *Driver, sliceIdx int, mode sim.LockMode, sel int) *LockThenSearchInstr {
	mustSliceIdx(d, sliceIdx)
	return &LockThenSearchInstr{sliceIdx: sliceIdx, mode: mode, sel: sel, locking: true}
}

func (in *LockThenSearchInstr) Step(d *Driver) {
	in.mustPending(in)
	s := d.Slice(in.sliceIdx)
	if in.locking {
		s.Lock(in.mode, in.sel)
		if s.Tuner().LockStatus() == sim.LockDone {
			d.Memory().SetLockEntry(in.sliceIdx, s.Tuner().LockIndex())
		}
		d.logStep("%v: lock=%v", in, s.Tuner().LockStatus())
		in.locking = false
		return
	}
	s.Search()
	d.Memory().SetSearchTable(in.sliceIdx, s.Tuner().SearchTable())
	d.logStep("%v: search=%v", in, s.Tuner().SearchStatus())
	in.finish()
}

func (in *LockThenSearchInstr) String() string {
	return fmt.Sprintf("LOCK_THEN_SEARCH slice=%d mode=%s sel=%d", in.sliceIdx, in.mode, in.sel)
}

// UnlockInstr releases one slice's lock and removes its LOCK_TABLE entry.
type UnlockInstr struct {
	instrState
	sliceIdx int
}

// NewUnlock builds an unlock instruction. Panics on an invalid slice index.
func NewUnlock(d *Driver, sliceIdx int) *UnlockInstr {
	mustSliceIdx(d, sliceIdx)
	return &UnlockInstr{sliceIdx: sliceIdx}
}

func (in *UnlockInstr) Step(d *Driver) {
	in.mustPending(in)
	d.Slice(in.sliceIdx).Unlock()
	d.Memory().DeleteLockEntry(in.sliceIdx)
	d.logStep("%v", in)
	in.finish()
}

func (in *UnlockInstr) String() string {
	return fmt.Sprintf("UNLOCK slice=%d", in.sliceIdx)
}

// NopInstr burns one tick without touching hardware. Programs use it to let
// a grabbed wavelength propagate out of downstream slices before the next
// operation.
type NopInstr struct {
	instrState
}

// NewNop builds a one-tick no-op instruction.
func NewNop() *NopInstr { return &NopInstr{} }

func (in *NopInstr) Step(d *Driver) {
	in.mustPending(in)
	d.logStep("NOP")
	in.finish()
}

func (in *NopInstr) String() string { return "NOP" }
