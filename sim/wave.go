package sim

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// WaveSet models a continuous-wave optical signal as an ordered set of
// wavelengths (in meters). It defines a small algebra for signal propagation
// and filtering. Every operation is pure: the receiver is never mutated and
// results are freshly allocated, so WaveSets can be passed between ports
// without aliasing concerns.
//
// Invariant: wavelengths are sorted ascending and duplicate-free.
type WaveSet struct {
	wavelengths []float64
}

// NewWaveSet builds a WaveSet from the given wavelengths. Duplicates are
// collapsed and the result is sorted ascending.
func NewWaveSet(wavelengths ...float64) WaveSet {
	ws := make([]float64, 0, len(wavelengths))
	seen := make(map[float64]struct{}, len(wavelengths))
	for _, w := range wavelengths {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		ws = append(ws, w)
	}
	sort.Float64s(ws)
	return WaveSet{wavelengths: ws}
}

// Len returns the number of wavelengths present.
func (w WaveSet) Len() int { return len(w.wavelengths) }

// IsEmpty reports whether no wavelength is present.
func (w WaveSet) IsEmpty() bool { return len(w.wavelengths) == 0 }

// Get returns the wavelength at sorted position i. The index is how real
// tuner hardware refers to a sweep match, so by-index lookup is part of the
// algebra. Panics if i is out of range.
func (w WaveSet) Get(i int) float64 {
	if i < 0 || i >= len(w.wavelengths) {
		panic(fmt.Sprintf("sim: wave index %d out of range [0, %d)", i, len(w.wavelengths)))
	}
	return w.wavelengths[i]
}

// Wavelengths returns an independent copy of the sorted wavelength list.
func (w WaveSet) Wavelengths() []float64 {
	out := make([]float64, len(w.wavelengths))
	copy(out, w.wavelengths)
	return out
}

// Contains reports whether the exact wavelength is present.
func (w WaveSet) Contains(wavelength float64) bool {
	i := sort.SearchFloat64s(w.wavelengths, wavelength)
	return i < len(w.wavelengths) && w.wavelengths[i] == wavelength
}

// Equal reports set equality.
func (w WaveSet) Equal(other WaveSet) bool {
	if len(w.wavelengths) != len(other.wavelengths) {
		return false
	}
	for i := range w.wavelengths {
		if w.wavelengths[i] != other.wavelengths[i] {
			return false
		}
	}
	return true
}

// Union models wave combination.
func (w WaveSet) Union(other WaveSet) WaveSet {
	merged := make([]float64, 0, len(w.wavelengths)+len(other.wavelengths))
	merged = append(merged, w.wavelengths...)
	merged = append(merged, other.wavelengths...)
	return NewWaveSet(merged...)
}

// Difference models wave filtering: every wavelength of w not in other.
func (w WaveSet) Difference(other WaveSet) WaveSet {
	kept := make([]float64, 0, len(w.wavelengths))
	for _, wl := range w.wavelengths {
		if !other.Contains(wl) {
			kept = append(kept, wl)
		}
	}
	return NewWaveSet(kept...)
}

// FilterByWavelength selects the target wavelength (invert=false) or
// everything except it (invert=true). Exact float comparison, matching the
// value-copy propagation model: wavelengths are never recomputed in flight.
func (w WaveSet) FilterByWavelength(target float64, invert bool) WaveSet {
	if invert {
		return w.Difference(NewWaveSet(target))
	}
	if w.Contains(target) {
		return NewWaveSet(target)
	}
	return NewWaveSet()
}

// FilterByWavelengthRange keeps wavelengths in [lo, hi], inclusive on both
// ends.
func (w WaveSet) FilterByWavelengthRange(lo, hi float64) WaveSet {
	kept := make([]float64, 0, len(w.wavelengths))
	for _, wl := range w.wavelengths {
		if wl >= lo && wl <= hi {
			kept = append(kept, wl)
		}
	}
	return NewWaveSet(kept...)
}

// FilterByIndex selects the wavelength at sorted position i (invert=false)
// or everything except it (invert=true). Tuner hardware only acknowledges a
// match by its ordinal position in the search sweep, hence index-based
// filtering. Panics if i is out of range.
func (w WaveSet) FilterByIndex(i int, invert bool) WaveSet {
	target := w.Get(i)
	return w.FilterByWavelength(target, invert)
}

// String renders the wavelengths in nm for logging.
func (w WaveSet) String() string {
	parts := make([]string, len(w.wavelengths))
	for i, wl := range w.wavelengths {
		parts[i] = formatWavelength(wl)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatWavelength(wavelength float64) string {
	if math.IsNaN(wavelength) {
		return "-"
	}
	return fmt.Sprintf("%.2fnm", wavelength*1e9)
}
