package sim

import "fmt"

// RxSlice is one receiver unit: a ring slice paired with its tuner. Its
// search/lock/unlock operations are the only way arbitration logic touches
// hardware state.
type RxSlice struct {
	ring  *RingSlice
	tuner *Tuner
}

// NewRxSlice pairs a ring with a tuner and hard-resets the pair.
func NewRxSlice(ring *RingSlice, tuner *Tuner) *RxSlice {
	s := &RxSlice{ring: ring, tuner: tuner}
	s.HardReset()
	return s
}

// Ring returns the slice's ring.
func (s *RxSlice) Ring() *RingSlice { return s.ring }

// Tuner returns the slice's tuner.
func (s *RxSlice) Tuner() *Tuner { return s.tuner }

// HardReset wipes tuner state including history. Performed at boot.
func (s *RxSlice) HardReset() { s.tuner.HardReset() }

// SoftReset wipes per-sequence tuner state. Performed at laser hot swap.
func (s *RxSlice) SoftReset() { s.tuner.SoftReset() }

// Search runs a wavelength search sweep on the incoming wave.
func (s *RxSlice) Search() { s.tuner.Search(s.ring) }

// Lock acquires a lock from the existing search data.
func (s *RxSlice) Lock(mode LockMode, sel int) { s.tuner.Lock(s.ring, mode, sel) }

// SearchAndLock runs search followed by lock in one hardware operation.
func (s *RxSlice) SearchAndLock(mode LockMode, sel int) { s.tuner.SearchAndLock(s.ring, mode, sel) }

// Unlock releases the lock and detunes the ring.
func (s *RxSlice) Unlock() { s.tuner.Unlock(s.ring) }

func (s *RxSlice) String() string {
	return fmt.Sprintf("RxSlice(%v)", s.ring.Ring)
}
