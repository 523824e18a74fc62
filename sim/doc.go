// Package sim provides the core lock simulation engine for wdmsim: a
// behavioral model of a dense-WDM photonic receiver whose tunable ring
// resonators must each lock onto a distinct incoming laser wavelength.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - wave.go: WaveSet algebra — the optical signal as an ordered set of
//     wavelengths
//   - ring.go: per-ring filtering and the daisy-chained RingRow with its
//     laser-grabbing propagation order
//   - tuner.go: the search/lock state machine and the four lock selection
//     policies
//   - sut.go: the SystemUnderTest tick loop and terminal-outcome
//     classification
//
// # Architecture
//
// The sim package defines the hardware model and the Arbiter interface;
// implementations live in sub-packages:
//   - sim/arbiter/: instruction engine, arbiter memory, and the built-in
//     lock-sequencing algorithms behind an explicit string-keyed registry
//   - sim/design/: design-parameter structs and deterministic randomized
//     generation of laser grids and ring rows
//   - sim/experiment/: swap-loop orchestration, compare experiments, debug
//     harness, and parallel parameter sweeps
//   - sim/replay/: JSON record/replay of individual runs
//
// # Model
//
// One tick is one arbiter step followed by one wave propagation, in that
// order. Propagation visits slices strictly in chain order, so a wavelength
// grabbed by an upstream ring disappears downstream with one tick of
// latency. Duplicate locks are therefore invisible to arbitration hardware
// and are classified post hoc from the tuners' lock wavelengths.
package sim
