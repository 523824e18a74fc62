package sim

// SliceState captures one slice's optical and lock state at a tick.
type SliceState struct {
	In                []float64
	Thru              []float64
	Tuned             bool
	CurrentWavelength float64
	LockStatus        LockStatus
	LockCode          int
}

// Snapshot is one entry of the system state log, recorded after each
// propagation step for external plotting and replay inspection. It copies
// everything it captures so later ticks cannot mutate it.
type Snapshot struct {
	Clock        int
	LaserGridID  int
	Slices       []SliceState
	ArbiterState string
}

func takeSnapshot(clock int, grid *LaserGrid, slices []*RxSlice, arb Arbiter) Snapshot {
	states := make([]SliceState, len(slices))
	for i, s := range slices {
		states[i] = SliceState{
			In:                s.Ring().In().Wave().Wavelengths(),
			Thru:              s.Ring().Thru().Wave().Wavelengths(),
			Tuned:             s.Ring().IsTuned(),
			CurrentWavelength: s.Ring().CurrentWavelength(),
			LockStatus:        s.Tuner().LockStatus(),
			LockCode:          s.Tuner().LockCode(),
		}
	}
	return Snapshot{
		Clock:        clock,
		LaserGridID:  grid.ID(),
		Slices:       states,
		ArbiterState: arb.StateDescription(),
	}
}
