// Package design holds the process-design parameter sets of the receiver and
// the deterministic randomized generation of laser grids and ring rows from
// them. Generation draws from a partitioned RNG so laser and ring draws are
// isolated: changing how many ring values are sampled never perturbs the
// laser stream of the same seed.
package design

import (
	"fmt"
	"sort"
)

// LaserDesignParams describes the transmit-side laser grid: a nominal
// wavelength comb plus its fabrication and drift tolerances.
type LaserDesignParams struct {
	// NumChannels is the channel count of the comb.
	NumChannels int `yaml:"num_channel" json:"num_channel"`
	// CenterWavelength is the nominal comb center in meters.
	CenterWavelength float64 `yaml:"center_wavelength" json:"center_wavelength"`
	// GridSpacing is the nominal channel pitch in meters.
	GridSpacing float64 `yaml:"grid_spacing" json:"grid_spacing"`
	// GridVariance is the per-channel wavelength variance as a fraction of
	// the grid spacing.
	GridVariance float64 `yaml:"grid_variance" json:"grid_variance"`
	// GridMaxOffset is the maximum common-mode comb offset in meters,
	// modeling a shared thermal drift of the whole comb.
	GridMaxOffset float64 `yaml:"grid_max_offset" json:"grid_max_offset"`
}

// Validate checks the parameter set for physical plausibility.
func (p LaserDesignParams) Validate() error {
	if p.NumChannels <= 0 {
		return fmt.Errorf("laser num_channel must be positive, got %d", p.NumChannels)
	}
	if p.CenterWavelength <= 0 {
		return fmt.Errorf("laser center_wavelength must be positive, got %g", p.CenterWavelength)
	}
	if p.GridSpacing <= 0 {
		return fmt.Errorf("laser grid_spacing must be positive, got %g", p.GridSpacing)
	}
	if p.GridVariance < 0 {
		return fmt.Errorf("laser grid_variance must be non-negative, got %g", p.GridVariance)
	}
	if p.GridMaxOffset < 0 {
		return fmt.Errorf("laser grid_max_offset must be non-negative, got %g", p.GridMaxOffset)
	}
	return nil
}

// RingDesignParams describes the receive-side ring row: nominal FSR and
// tuning range with their fabrication variances, and the static resonance
// placement spread.
type RingDesignParams struct {
	// FSRMean is the nominal free spectral range in meters.
	FSRMean float64 `yaml:"fsr_mean" json:"fsr_mean"`
	// FSRVariance is the per-ring FSR variance as a fraction of the mean.
	FSRVariance float64 `yaml:"fsr_variance" json:"fsr_variance"`
	// TuningRangeMean is the nominal tuning range in meters.
	TuningRangeMean float64 `yaml:"tuning_range_mean" json:"tuning_range_mean"`
	// TuningRangeVariance is the per-ring tuning range variance as a
	// fraction of the mean.
	TuningRangeVariance float64 `yaml:"tuning_range_variance" json:"tuning_range_variance"`
	// ResonanceVariance is the as-fabricated resonance placement spread in
	// meters.
	ResonanceVariance float64 `yaml:"resonance_variance" json:"resonance_variance"`
	// InheritLaserVariance models an aligned system: ring resonances start
	// exactly on the laser wavelengths instead of being drawn independently.
	InheritLaserVariance bool `yaml:"inherit_laser_variance" json:"inherit_laser_variance"`
}

// Validate checks the parameter set for physical plausibility.
func (p RingDesignParams) Validate() error {
	if p.FSRMean <= 0 {
		return fmt.Errorf("ring fsr_mean must be positive, got %g", p.FSRMean)
	}
	if p.FSRVariance < 0 || p.FSRVariance >= 1 {
		return fmt.Errorf("ring fsr_variance must be in [0, 1), got %g", p.FSRVariance)
	}
	if p.TuningRangeMean <= 0 {
		return fmt.Errorf("ring tuning_range_mean must be positive, got %g", p.TuningRangeMean)
	}
	if p.TuningRangeVariance < 0 || p.TuningRangeVariance >= 1 {
		return fmt.Errorf("ring tuning_range_variance must be in [0, 1), got %g", p.TuningRangeVariance)
	}
	if p.ResonanceVariance < 0 {
		return fmt.Errorf("ring resonance_variance must be non-negative, got %g", p.ResonanceVariance)
	}
	return nil
}

// LaneOrderParams names a lane permutation. A nil Lane map means no
// constraint: identity placement when used as the initial order, lock-to-any
// when used as the target order.
type LaneOrderParams struct {
	Alias string      `yaml:"alias" json:"alias"`
	Lane  map[int]int `yaml:"lane" json:"lane"`
}

// Order renders the permutation as a list indexed by position, or nil when
// unconstrained. The Lane keys must form a contiguous 0..n-1 range.
func (p LaneOrderParams) Order() ([]int, error) {
	if p.Lane == nil {
		return nil, nil
	}
	keys := make([]int, 0, len(p.Lane))
	for k := range p.Lane {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	order := make([]int, 0, len(keys))
	for i, k := range keys {
		if k != i {
			return nil, fmt.Errorf("lane order %q: positions must be contiguous from 0, got %v", p.Alias, keys)
		}
		order = append(order, p.Lane[k])
	}
	return order, nil
}

// Validate checks that the permutation, when present, maps n positions onto
// the full 0..n-1 lane set.
func (p LaneOrderParams) Validate() error {
	order, err := p.Order()
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(order))
	for _, lane := range order {
		if lane < 0 || lane >= len(order) {
			return fmt.Errorf("lane order %q: lane %d out of range [0, %d)", p.Alias, lane, len(order))
		}
		if _, dup := seen[lane]; dup {
			return fmt.Errorf("lane order %q: lane %d assigned twice", p.Alias, lane)
		}
		seen[lane] = struct{}{}
	}
	return nil
}
