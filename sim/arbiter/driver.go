package arbiter

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wdmsim/wdmsim/sim"
)

// StepResult is what a Program reports back to the driver after one resume.
type StepResult int

const (
	// Suspended means the program performed one logical unit of work and
	// paused at its next suspension point.
	Suspended StepResult = iota
	// Done means the program was resumed past its completion. A well-formed
	// program sets the end state before its final suspension, so the driver
	// treats Done as a usage error.
	Done
)

// Program is a lock-sequencing algorithm expressed as an explicit
// continuation: each Resume call performs exactly one logical unit of work
// and returns where a generator would yield. Program state (a position
// counter, a phase tag) lives in the implementing struct.
type Program interface {
	Resume() StepResult
}

// ProgramFactory builds a fresh program over a driver. Drivers rebuild
// their program on every reset so a new lock sequence always starts from
// the beginning of the algorithm.
type ProgramFactory func(*Driver) Program

// Driver is the arbiter core: it owns the slices under arbitration, the
// optional target lane order, the working memory, and the two terminal
// flags, and it resumes the plugged-in program exactly once per tick.
type Driver struct {
	name            string
	slices          []*sim.RxSlice
	targetLaneOrder []int

	mem        *Memory
	newProgram ProgramFactory
	program    Program

	endState       bool
	lockErrorState bool
}

// NewDriver assembles a driver around a program factory. targetLaneOrder
// nil means lock-to-any.
func NewDriver(name string, slices []*sim.RxSlice, targetLaneOrder []int, factory ProgramFactory) *Driver {
	d := &Driver{
		name:            name,
		slices:          slices,
		targetLaneOrder: append([]int(nil), targetLaneOrder...),
		mem:             NewMemory(),
		newProgram:      factory,
	}
	if targetLaneOrder == nil {
		d.targetLaneOrder = nil
	}
	d.program = factory(d)
	return d
}

// Name returns the registry name of the arbiter.
func (d *Driver) Name() string { return d.name }

// Slices returns the slices under arbitration.
func (d *Driver) Slices() []*sim.RxSlice { return d.slices }

// NumSlices returns the number of slices under arbitration.
func (d *Driver) NumSlices() int { return len(d.slices) }

// Slice returns the slice at the given index. Panics on an invalid index.
func (d *Driver) Slice(idx int) *sim.RxSlice {
	if idx < 0 || idx >= len(d.slices) {
		panic(fmt.Sprintf("arbiter: invalid slice index %d, have %d slices", idx, len(d.slices)))
	}
	return d.slices[idx]
}

// Memory returns the arbiter's working memory.
func (d *Driver) Memory() *Memory { return d.mem }

// TargetLaneOrder returns the required lane order, or nil for lock-to-any.
func (d *Driver) TargetLaneOrder() []int { return d.targetLaneOrder }

// SetEndState marks the algorithm's sequence as complete. Terminal for the
// run.
func (d *Driver) SetEndState() { d.endState = true }

// SetLockErrorState marks that some slice cannot be locked validly (no
// wavelength found, or only wavelength zero). Terminal for the run.
func (d *Driver) SetLockErrorState() { d.lockErrorState = true }

// IsEndState reports whether the algorithm has completed its sequence.
func (d *Driver) IsEndState() bool { return d.endState }

// IsLockErrorState reports whether the algorithm has flagged an unlockable
// slice.
func (d *Driver) IsLockErrorState() bool { return d.lockErrorState }

// Tick resumes the algorithm exactly once, or reports no progress when a
// terminal flag is already set. Resuming a program past its completion is a
// fatal usage error: the driver, not the simulation, is misbehaving.
func (d *Driver) Tick() bool {
	if d.endState || d.lockErrorState {
		return false
	}
	if d.program.Resume() == Done {
		panic(fmt.Sprintf("arbiter: %q resumed after completion", d.name))
	}
	return true
}

// HardReset wipes terminal flags and memory and restarts the algorithm.
func (d *Driver) HardReset() { d.reset() }

// SoftReset wipes terminal flags and memory and restarts the algorithm.
// Tuner-side history survives in the slices; the algorithm itself always
// restarts from the top for a new lock sequence.
func (d *Driver) SoftReset() { d.reset() }

func (d *Driver) reset() {
	d.endState = false
	d.lockErrorState = false
	d.mem.Reset()
	d.program = d.newProgram(d)
}

// StateDescription renders the driver state for snapshots.
func (d *Driver) StateDescription() string {
	switch {
	case d.lockErrorState:
		return d.name + ":lock_error"
	case d.endState:
		return d.name + ":end"
	default:
		return d.name + ":running"
	}
}

// CheckLockDone reports whether any of the given slices (all slices when
// none are given) holds a completed lock.
func (d *Driver) CheckLockDone(sliceIdx ...int) bool {
	for _, s := range d.selected(sliceIdx) {
		if s.Tuner().LockStatus() == sim.LockDone {
			return true
		}
	}
	return false
}

// CheckZeroLock reports whether any of the given slices (all slices when
// none are given) failed its lock with no wave or out-of-range — the zero
// lock condition an algorithm escalates to the lock error state.
func (d *Driver) CheckZeroLock(sliceIdx ...int) bool {
	for _, s := range d.selected(sliceIdx) {
		switch s.Tuner().LockStatus() {
		case sim.LockNoWave, sim.LockNotInRange:
			return true
		}
	}
	return false
}

func (d *Driver) selected(sliceIdx []int) []*sim.RxSlice {
	if len(sliceIdx) == 0 {
		return d.slices
	}
	out := make([]*sim.RxSlice, len(sliceIdx))
	for i, idx := range sliceIdx {
		out[i] = d.Slice(idx)
	}
	return out
}

func (d *Driver) logStep(format string, args ...any) {
	logrus.Debugf("[arbiter %s] "+format, append([]any{d.name}, args...)...)
}
