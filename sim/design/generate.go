package design

import (
	"math/rand"

	"github.com/wdmsim/wdmsim/sim"
)

// LaserWavelengths draws one laser comb realization: the nominal grid around
// the center wavelength, one common-mode offset shared by all channels, and
// an independent per-channel variance scaled by the grid spacing. The result
// is in channel order, not sorted; a large variance can reorder neighbors.
func LaserWavelengths(rng *rand.Rand, p LaserDesignParams) []float64 {
	offset := p.GridMaxOffset * uniform(rng, -1, 1)

	wavelengths := make([]float64, p.NumChannels)
	for i := range wavelengths {
		variance := p.GridSpacing * uniform(rng, -p.GridVariance, p.GridVariance)
		wavelengths[i] = p.CenterWavelength +
			p.GridSpacing*(float64(i)-float64(p.NumChannels)/2) +
			offset +
			variance
	}
	return wavelengths
}

// RingRowParams draws per-ring FSR and tuning range realizations, uniform
// within the fractional variance band around each mean.
func RingRowParams(rng *rand.Rand, numRings int, p RingDesignParams) []sim.RingParams {
	params := make([]sim.RingParams, numRings)
	for i := range params {
		params[i] = sim.RingParams{
			FSR:         uniform(rng, p.FSRMean*(1-p.FSRVariance), p.FSRMean*(1+p.FSRVariance)),
			TuningRange: uniform(rng, p.TuningRangeMean*(1-p.TuningRangeVariance), p.TuningRangeMean*(1+p.TuningRangeVariance)),
		}
	}
	return params
}

// RingWavelengths draws one as-fabricated resonance placement per ring: the
// nominal laser grid, shifted down by half the mean FSR (a fabrication bias
// large enough that red-shift-only tuners can always reach their channel
// through some sweep window), plus an independent uniform placement spread.
func RingWavelengths(rng *rand.Rand, laser LaserDesignParams, ring RingDesignParams) []float64 {
	staticOffset := -ring.FSRMean / 2

	wavelengths := make([]float64, laser.NumChannels)
	for i := range wavelengths {
		variance := ring.ResonanceVariance * uniform(rng, -1, 1)
		wavelengths[i] = laser.CenterWavelength +
			laser.GridSpacing*(float64(i)-float64(laser.NumChannels)/2) +
			staticOffset +
			variance
	}
	return wavelengths
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
