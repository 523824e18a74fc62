package arbiter

import "github.com/wdmsim/wdmsim/sim"

// broadsideProgram locks every slice in a single tick. All slices see the
// same un-thinned wave, so with overlapping sweep windows they converge on
// the same wavelength. It is the duplicate-prone baseline the sequential
// algorithms are measured against.
type broadsideProgram struct {
	d        *Driver
	mode     sim.LockMode
	finished bool
}

func newBroadside(mode sim.LockMode) ProgramFactory {
	return func(d *Driver) Program {
		return &broadsideProgram{d: d, mode: mode}
	}
}

func (p *broadsideProgram) Resume() StepResult {
	if p.finished {
		return Done
	}

	for i := 0; i < p.d.NumSlices(); i++ {
		Run(NewSearchAndLock(p.d, i, p.mode, 0), p.d)
	}
	if p.d.CheckZeroLock() {
		p.d.SetLockErrorState()
	} else {
		p.d.SetEndState()
	}
	p.finished = true
	return Suspended
}
