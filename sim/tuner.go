package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// VDACFullScale is the full-scale range of the 8-bit tuning voltage DAC.
const VDACFullScale = 256

// midScaleCode is the default reference for the nearest lock policy when the
// tuner has never locked before.
const midScaleCode = VDACFullScale / 2

// SearchStatus is the outcome of the tuner's wavelength search.
type SearchStatus int

const (
	SearchNotStarted SearchStatus = iota
	SearchDone
	SearchNoWave
	SearchNotInRange
)

func (s SearchStatus) String() string {
	switch s {
	case SearchNotStarted:
		return "SEARCH_NOT_STARTED"
	case SearchDone:
		return "SEARCH_DONE"
	case SearchNoWave:
		return "SEARCH_NO_WAVE"
	case SearchNotInRange:
		return "SEARCH_NOT_IN_RANGE"
	}
	return fmt.Sprintf("SearchStatus(%d)", int(s))
}

// LockStatus is the outcome of the tuner's lock acquisition.
type LockStatus int

const (
	LockNotStarted LockStatus = iota
	LockDone
	LockNoWave
	LockNotInRange
)

func (s LockStatus) String() string {
	switch s {
	case LockNotStarted:
		return "LOCK_NOT_STARTED"
	case LockDone:
		return "LOCK_DONE"
	case LockNoWave:
		return "LOCK_NO_WAVE"
	case LockNotInRange:
		return "LOCK_NOT_IN_RANGE"
	}
	return fmt.Sprintf("LockStatus(%d)", int(s))
}

// LockMode selects how the tuner picks one entry from its search data.
type LockMode string

const (
	// LockLeastSignificant sorts by voltage code ascending; select 0 is the
	// lowest code (lock-to-first).
	LockLeastSignificant LockMode = "least_significant"
	// LockMostSignificant sorts by voltage code ascending; select 0 is the
	// highest code (lock-to-last).
	LockMostSignificant LockMode = "most_significant"
	// LockNearest sorts by distance to the previous lock code (mid-scale
	// when never locked); select 0 is the nearest (lock-to-nearest).
	LockNearest LockMode = "nearest"
	// LockMiddle sorts by absolute code; select 0 is the code nearest zero.
	LockMiddle LockMode = "middle"
)

// Valid reports whether the mode is one of the four selection policies.
func (m LockMode) Valid() bool {
	switch m {
	case LockLeastSignificant, LockMostSignificant, LockNearest, LockMiddle:
		return true
	}
	return false
}

// SweepWindow is one periodic interval of wavelengths the tuner can dial in.
type SweepWindow struct {
	Start float64
	End   float64
}

// Contains reports whether the wavelength falls inside the window, inclusive
// on both ends.
func (w SweepWindow) Contains(wavelength float64) bool {
	return wavelength >= w.Start && wavelength <= w.End
}

// SearchPeak is one resolvable peak of the search sweep: its quantized
// voltage code and the wavelength behind it. Peaks are indexed by rank of
// code ascending.
type SearchPeak struct {
	Code       int
	Wavelength float64
}

// Tuner is the behavioral model of a single-ring digital tuner backend with
// a voltage-driven sweep. Search and lock are computed mathematically over
// an idealized sweep range rather than simulated sample by sample.
//
// Beyond the hardware-visible registers (search table, lock code), the tuner
// keeps simulation-side state such as the locked wavelength. The simulation
// needs it to classify duplicate locks post hoc, and the search data bridges
// the wave index found at search time into lock acquisition.
type Tuner struct {
	searchStatus SearchStatus
	lockStatus   LockStatus

	// searchTable is the set of quantized voltage codes reachable in the
	// last sweep — the hardware-visible search result.
	searchTable map[int]struct{}
	// searchData maps wave index (position in the IN WaveSet) to voltage
	// code.
	searchData map[int]int
	// searchPeaks maps peak index (rank of code ascending) to code and
	// wavelength. Helper data for ideal arbiters.
	searchPeaks map[int]SearchPeak

	// lockData holds the single wave index -> code entry while locked.
	lockData map[int]int

	lockCode     int
	lockCodePrev int

	lockWavelength float64
	locked         bool
}

// NewTuner creates a tuner in the not-started state.
func NewTuner() *Tuner {
	t := &Tuner{}
	t.HardReset()
	return t
}

// HardReset wipes all tuner state, including lock code history. Performed at
// system boot.
func (t *Tuner) HardReset() {
	t.searchTable = make(map[int]struct{})
	t.searchStatus = SearchNotStarted
	t.lockStatus = LockNotStarted
	t.lockCode = -1
	t.lockCodePrev = -1
	t.clearTransients()
}

// SoftReset wipes the per-sequence state but keeps the search table and lock
// code history, modeling an RTL reset between laser hot swaps where the
// history register survives for the nearest policy.
func (t *Tuner) SoftReset() {
	t.searchStatus = SearchNotStarted
	t.lockStatus = LockNotStarted
	t.clearTransients()
}

func (t *Tuner) clearTransients() {
	t.searchData = make(map[int]int)
	t.searchPeaks = make(map[int]SearchPeak)
	t.lockData = make(map[int]int)
	t.lockWavelength = 0
	t.locked = false
}

// SearchStatus returns the outcome of the last search.
func (t *Tuner) SearchStatus() SearchStatus { return t.searchStatus }

// LockStatus returns the outcome of the last lock attempt.
func (t *Tuner) LockStatus() LockStatus { return t.lockStatus }

// LockCode returns the voltage code of the current lock, -1 when unlocked.
func (t *Tuner) LockCode() int { return t.lockCode }

// LockWavelength returns the locked wavelength, with ok=false when the tuner
// holds no lock.
func (t *Tuner) LockWavelength() (float64, bool) { return t.lockWavelength, t.locked }

// SearchTable returns a copy of the reachable voltage code set.
func (t *Tuner) SearchTable() map[int]struct{} {
	out := make(map[int]struct{}, len(t.searchTable))
	for code := range t.searchTable {
		out[code] = struct{}{}
	}
	return out
}

// SearchData returns a copy of the wave index -> voltage code map.
func (t *Tuner) SearchData() map[int]int {
	out := make(map[int]int, len(t.searchData))
	for idx, code := range t.searchData {
		out[idx] = code
	}
	return out
}

// SearchPeaks returns a copy of the peak index -> {code, wavelength} map.
func (t *Tuner) SearchPeaks() map[int]SearchPeak {
	out := make(map[int]SearchPeak, len(t.searchPeaks))
	for idx, p := range t.searchPeaks {
		out[idx] = p
	}
	return out
}

// LockWaveIdx returns the wave index of the current lock. Panics when the
// tuner is not locked.
func (t *Tuner) LockWaveIdx() int {
	t.mustBeLocked()
	for idx := range t.lockData {
		return idx
	}
	panic("sim: tuner locked without lock data")
}

// LockIndex returns the rank of the lock code within the sorted search
// table. Panics when the tuner is not locked.
func (t *Tuner) LockIndex() int {
	t.mustBeLocked()
	codes := t.sortedSearchCodes()
	for rank, code := range codes {
		if code == t.lockCode {
			return rank
		}
	}
	panic(fmt.Sprintf("sim: lock code %d missing from search table", t.lockCode))
}

func (t *Tuner) mustBeLocked() {
	if t.lockStatus != LockDone {
		panic("sim: tuner is not locked")
	}
}

// SweepWindows returns the nine periodic windows the tuner can dial the ring
// into: offsets of -4*FSR .. +4*FSR from the resonance wavelength, each of
// width TuningRange. Red-shift-only tuning, so windows extend from each
// offset upward.
func (t *Tuner) SweepWindows(ring *RingSlice) []SweepWindow {
	windows := make([]SweepWindow, 0, 9)
	for k := -4; k <= 4; k++ {
		start := ring.Wavelength + float64(k)*ring.FSR
		windows = append(windows, SweepWindow{Start: start, End: start + ring.TuningRange})
	}
	return windows
}

// Search sweeps the ring's IN wave against the tuner's reachable windows and
// rebuilds the search table, search data, and peak map.
//
// Status: SearchNoWave when the IN wave is empty, SearchDone when at least
// one wavelength is reachable, SearchNotInRange otherwise.
func (t *Tuner) Search(ring *RingSlice) {
	waves := ring.In().Wave()
	if waves.IsEmpty() {
		t.searchStatus = SearchNoWave
		return
	}

	windows := t.SweepWindows(ring)

	t.searchTable = make(map[int]struct{})
	t.searchData = make(map[int]int)
	t.searchPeaks = make(map[int]SearchPeak)
	codeToWavelength := make(map[int]float64)

	for waveIdx, wavelength := range waves.Wavelengths() {
		for _, w := range windows {
			if !w.Contains(wavelength) {
				continue
			}
			code := quantizeVoltageCode(wavelength, w)
			t.searchTable[code] = struct{}{}
			t.searchData[waveIdx] = code
			codeToWavelength[code] = wavelength
		}
	}

	for peakIdx, code := range t.sortedSearchCodes() {
		t.searchPeaks[peakIdx] = SearchPeak{Code: code, Wavelength: codeToWavelength[code]}
	}

	if len(t.searchData) > 0 {
		t.searchStatus = SearchDone
	} else {
		t.searchStatus = SearchNotInRange
	}

	logrus.Debugf("tuner search on %v: status=%v table=%v", ring, t.searchStatus, t.sortedSearchCodes())
}

// Lock picks one entry from the search data according to mode and select and
// tunes the ring onto it.
//
// A lock attempt after an unsuccessful search is a no-op except that the
// lock status mirrors the search failure. A select index beyond the search
// data is a no-op with status unchanged. Invalid mode or negative select is
// a programmer error and panics.
func (t *Tuner) Lock(ring *RingSlice, mode LockMode, sel int) {
	if !mode.Valid() {
		panic(fmt.Sprintf("sim: invalid lock mode %q", mode))
	}
	if sel < 0 {
		panic(fmt.Sprintf("sim: lock select must be non-negative, got %d", sel))
	}

	if t.searchStatus != SearchDone {
		switch t.searchStatus {
		case SearchNotStarted:
			t.lockStatus = LockNotStarted
		case SearchNoWave:
			t.lockStatus = LockNoWave
		case SearchNotInRange:
			t.lockStatus = LockNotInRange
		}
		return
	}

	entry, ok := t.selectLockEntry(mode, sel)
	if !ok {
		logrus.Debugf("tuner lock found nothing for mode=%s select=%d", mode, sel)
		return
	}

	t.lockStatus = LockDone
	t.lockData = map[int]int{entry.waveIdx: entry.code}
	t.lockCodePrev = t.lockCode
	t.lockCode = entry.code
	t.lockWavelength = ring.In().Wave().Get(entry.waveIdx)
	t.locked = true

	ring.AcquireLockByWaveIdx(entry.waveIdx)
}

// SearchAndLock runs a search sweep followed by a lock acquisition in one
// hardware operation.
func (t *Tuner) SearchAndLock(ring *RingSlice, mode LockMode, sel int) {
	t.Search(ring)
	t.Lock(ring, mode, sel)
}

// Unlock releases the lock and detunes the ring (lock-to-minimum track).
func (t *Tuner) Unlock(ring *RingSlice) {
	t.lockStatus = LockNotStarted
	t.lockData = make(map[int]int)
	t.lockWavelength = 0
	t.locked = false
	t.lockCode = -1

	ring.ReleaseLock()
}

type lockEntry struct {
	waveIdx int
	code    int
}

// selectLockEntry orders the search data per the mode and returns the
// select'th entry. Ties sort by wave index so selection is deterministic.
func (t *Tuner) selectLockEntry(mode LockMode, sel int) (lockEntry, bool) {
	if sel >= len(t.searchData) {
		return lockEntry{}, false
	}

	entries := make([]lockEntry, 0, len(t.searchData))
	for waveIdx, code := range t.searchData {
		entries = append(entries, lockEntry{waveIdx: waveIdx, code: code})
	}

	var key func(e lockEntry) int
	switch mode {
	case LockLeastSignificant, LockMostSignificant:
		key = func(e lockEntry) int { return e.code }
	case LockNearest:
		ref := t.lockCodePrev
		if ref < 0 {
			ref = midScaleCode
		}
		key = func(e lockEntry) int { return abs(e.code - ref) }
	case LockMiddle:
		key = func(e lockEntry) int { return abs(e.code) }
	}

	sort.Slice(entries, func(i, j int) bool {
		if key(entries[i]) != key(entries[j]) {
			return key(entries[i]) < key(entries[j])
		}
		return entries[i].waveIdx < entries[j].waveIdx
	})

	if mode == LockMostSignificant {
		return entries[len(entries)-1-sel], true
	}
	return entries[sel], true
}

func (t *Tuner) sortedSearchCodes() []int {
	codes := make([]int, 0, len(t.searchTable))
	for code := range t.searchTable {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// quantizeVoltageCode maps a wavelength's position within a sweep window to
// the 8-bit DAC code that dials it in.
func quantizeVoltageCode(wavelength float64, w SweepWindow) int {
	return int(math.Round((wavelength - w.Start) / (w.End - w.Start) * VDACFullScale))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
