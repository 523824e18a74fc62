package arbiter

import "github.com/wdmsim/wdmsim/sim"

// oneByOneProgram locks slices strictly in chain order, one slice per tick.
// Each step issues a combined search+lock on the next slice and escalates to
// the lock error state when that slice found nothing to lock. Because a
// grabbed wavelength leaves the downstream wave on the propagation that
// follows the step, each later slice searches a wave already thinned by its
// predecessors, which is what makes this algorithm duplicate-free.
type oneByOneProgram struct {
	d        *Driver
	mode     sim.LockMode
	pos      int
	finished bool
}

func newOneByOne(mode sim.LockMode) ProgramFactory {
	return func(d *Driver) Program {
		return &oneByOneProgram{d: d, mode: mode}
	}
}

func (p *oneByOneProgram) Resume() StepResult {
	if p.finished {
		return Done
	}

	Run(NewSearchAndLock(p.d, p.pos, p.mode, 0), p.d)
	if p.d.CheckZeroLock(p.pos) {
		p.d.SetLockErrorState()
		p.finished = true
		return Suspended
	}

	p.pos++
	if p.pos == p.d.NumSlices() {
		p.d.SetEndState()
		p.finished = true
	}
	return Suspended
}
