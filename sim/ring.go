package sim

import "fmt"

// RingParams are the fabrication parameters of one ring that vary per slice.
type RingParams struct {
	FSR         float64 // free spectral range (m)
	TuningRange float64 // sweep span with full-scale tuning voltage (m)
}

// Ring holds the immutable physical parameters of a voltage-tuned photonic
// microring: its post-fabrication resonance wavelength, free spectral range,
// and tuning range. All in meters.
type Ring struct {
	Wavelength  float64
	FSR         float64
	TuningRange float64
}

func (r Ring) String() string {
	return fmt.Sprintf("Ring(wavelength=%s, fsr=%s, tuning_range=%s)",
		formatWavelength(r.Wavelength), formatWavelength(r.FSR), formatWavelength(r.TuningRange))
}

// RingSlice is the behavioral model of one receive ring in a WDM row: a Ring
// plus its IN/THRU ports and the mutable tuned state set by the tuner.
//
// The tuned wavelength is dropped from the THRU wave, which models laser
// grabbing: wavelengths absorbed by upstream rings are not visible
// downstream. The current wavelength field mirrors the tuned state for
// snapshots and is not consulted by any decision logic.
type RingSlice struct {
	Ring

	in   *Port
	thru *Port

	tuned          bool
	currWavelength float64
}

// NewRingSlice creates an untuned ring slice with disconnected ports.
func NewRingSlice(wavelength float64, params RingParams) *RingSlice {
	ring := Ring{Wavelength: wavelength, FSR: params.FSR, TuningRange: params.TuningRange}
	device := ring.String()
	return &RingSlice{
		Ring:           ring,
		in:             NewPort(device, "in", PortIn),
		thru:           NewPort(device, "thru", PortOut),
		currWavelength: wavelength,
	}
}

// In returns the input port.
func (r *RingSlice) In() *Port { return r.in }

// Thru returns the pass-through output port.
func (r *RingSlice) Thru() *Port { return r.thru }

// IsTuned reports whether the ring is currently dropping a wavelength.
func (r *RingSlice) IsTuned() bool { return r.tuned }

// CurrentWavelength returns the wavelength the ring is tuned to, or its
// resonance wavelength when untuned. Snapshot use only.
func (r *RingSlice) CurrentWavelength() float64 { return r.currWavelength }

// PassthroughWave seeds the slice before any tuning decision exists: IN is
// copied from the connection and THRU passes IN through unfiltered. Run once
// per hot-plug.
func (r *RingSlice) PassthroughWave() {
	r.in.PropagateFromConn()
	r.thru.SetWave(r.in.Wave())
}

// PropagateWave advances the slice by one tick: IN is copied from the
// connection, then THRU becomes IN minus the tuned wavelength (or IN
// unchanged when untuned).
//
// IN is re-read from the connection here and nowhere else. Lock decisions
// made by the arbiter earlier in the same tick therefore act on the wave
// state of the previous propagation, which is precisely how a tuner backend
// indexing into its last search sweep behaves. Duplicate locks are not
// observable on the waves and must be detected post hoc from lock values.
func (r *RingSlice) PropagateWave() {
	r.in.PropagateFromConn()
	if r.tuned {
		r.thru.SetWave(r.in.Wave().FilterByWavelength(r.currWavelength, true))
	} else {
		r.thru.SetWave(r.in.Wave())
	}
}

// AcquireLockByWaveIdx tunes the ring onto the wavelength at the given
// sorted position of its IN wave. The THRU wave drops the locked wavelength
// immediately.
func (r *RingSlice) AcquireLockByWaveIdx(waveIdx int) {
	wavelength := r.in.Wave().Get(waveIdx)
	r.thru.SetWave(r.in.Wave().FilterByIndex(waveIdx, true))
	r.tuned = true
	r.currWavelength = wavelength
}

// ReleaseLock detunes the ring and restores full passthrough.
func (r *RingSlice) ReleaseLock() {
	r.tuned = false
	r.currWavelength = r.Wavelength
	r.PassthroughWave()
}

// RingRow is a fixed-order daisy chain of ring slices. Slice i's IN is wired
// from slice i-1's THRU; slice 0's IN is wired from the laser grid; the last
// slice's THRU is unterminated. The chain is acyclic and its order is fixed
// at construction: reordering means building a new row.
//
//	LaserGrid --- RingSlice 0 --- RingSlice 1 --- ... --- RingSlice N-1 ---
type RingRow struct {
	slices []*RingSlice
}

// NewRingRow wires the given slices into a row. Panics on an empty list.
func NewRingRow(slices []*RingSlice) *RingRow {
	if len(slices) == 0 {
		panic("sim: ring row must contain at least one slice")
	}
	for i := 1; i < len(slices); i++ {
		slices[i].In().ConnectFrom(slices[i-1].Thru())
	}
	return &RingRow{slices: slices}
}

// Slices returns the row in chain order.
func (rr *RingRow) Slices() []*RingSlice { return rr.slices }

// Len returns the number of slices in the row.
func (rr *RingRow) Len() int { return len(rr.slices) }

// In returns the row's input port (slice 0's IN).
func (rr *RingRow) In() *Port { return rr.slices[0].In() }

// Thru returns the row's output port (the last slice's THRU).
func (rr *RingRow) Thru() *Port { return rr.slices[len(rr.slices)-1].Thru() }

// ConnectLaserGrid wires the grid output into the first slice. The laser
// grid can later be shuffled in place without rewiring.
func (rr *RingRow) ConnectLaserGrid(grid *LaserGrid) {
	rr.slices[0].In().ConnectFrom(grid.Out())
}

// PassthroughWave seeds the whole row with the incoming wavefront, in chain
// order. Run once per hot-plug, before any tuning decision exists.
func (rr *RingRow) PassthroughWave() {
	for _, s := range rr.slices {
		s.PassthroughWave()
	}
}

// PropagateWave advances the row by one tick, visiting slices strictly in
// chain order so a wavelength grabbed upstream disappears downstream.
func (rr *RingRow) PropagateWave() {
	for _, s := range rr.slices {
		s.PropagateWave()
	}
}
