package sim

import (
	"reflect"
	"testing"
)

func TestWaveSet_New_SortsAndDedupes(t *testing.T) {
	// GIVEN wavelengths given unsorted with a duplicate
	ws := NewWaveSet(1310e-9, 1305e-9, 1310e-9, 1302e-9)

	// THEN the set is sorted ascending and duplicate-free
	want := []float64{1302e-9, 1305e-9, 1310e-9}
	if !reflect.DeepEqual(ws.Wavelengths(), want) {
		t.Errorf("Wavelengths: got %v, want %v", ws.Wavelengths(), want)
	}
	if ws.Len() != 3 {
		t.Errorf("Len: got %d, want 3", ws.Len())
	}
}

func TestWaveSet_Get_OutOfRange_Panics(t *testing.T) {
	// GIVEN a two-element set
	ws := NewWaveSet(1302e-9, 1305e-9)

	// WHEN Get is called past the end THEN it panics
	defer func() {
		if recover() == nil {
			t.Errorf("Get(2) on a 2-element set did not panic")
		}
	}()
	ws.Get(2)
}

func TestWaveSet_Union_MergesWithoutMutating(t *testing.T) {
	// GIVEN two overlapping sets
	a := NewWaveSet(1302e-9, 1305e-9)
	b := NewWaveSet(1305e-9, 1310e-9)

	// WHEN they are unioned
	got := a.Union(b)

	// THEN the result merges both and the operands are unchanged
	want := NewWaveSet(1302e-9, 1305e-9, 1310e-9)
	if !got.Equal(want) {
		t.Errorf("Union: got %v, want %v", got, want)
	}
	if a.Len() != 2 || b.Len() != 2 {
		t.Errorf("Union mutated operands: %v, %v", a, b)
	}
}

func TestWaveSet_Difference_RemovesCommon(t *testing.T) {
	// GIVEN two overlapping sets
	a := NewWaveSet(1302e-9, 1305e-9, 1310e-9)
	b := NewWaveSet(1305e-9)

	// WHEN b is subtracted from a
	got := a.Difference(b)

	// THEN only the uncommon wavelengths remain
	if !got.Equal(NewWaveSet(1302e-9, 1310e-9)) {
		t.Errorf("Difference: got %v", got)
	}
}

func TestWaveSet_FilterByWavelength_SelectAndReject(t *testing.T) {
	// GIVEN a three-element set
	ws := NewWaveSet(1302e-9, 1305e-9, 1310e-9)

	// WHEN filtering for one wavelength
	selected := ws.FilterByWavelength(1305e-9, false)
	rejected := ws.FilterByWavelength(1305e-9, true)

	// THEN select keeps only it and invert drops only it
	if !selected.Equal(NewWaveSet(1305e-9)) {
		t.Errorf("select: got %v", selected)
	}
	if !rejected.Equal(NewWaveSet(1302e-9, 1310e-9)) {
		t.Errorf("invert: got %v", rejected)
	}
}

func TestWaveSet_FilterByWavelength_Absent(t *testing.T) {
	// GIVEN a set without the target
	ws := NewWaveSet(1302e-9, 1310e-9)

	// WHEN filtering for an absent wavelength
	selected := ws.FilterByWavelength(1305e-9, false)
	rejected := ws.FilterByWavelength(1305e-9, true)

	// THEN select is empty and invert is the full set
	if !selected.IsEmpty() {
		t.Errorf("select of absent wavelength: got %v, want empty", selected)
	}
	if !rejected.Equal(ws) {
		t.Errorf("invert of absent wavelength: got %v, want %v", rejected, ws)
	}
}

func TestWaveSet_FilterByWavelengthRange_Inclusive(t *testing.T) {
	// GIVEN a set with wavelengths on the range boundaries
	ws := NewWaveSet(1302e-9, 1305e-9, 1310e-9)

	// WHEN filtering [1302nm, 1305nm]
	got := ws.FilterByWavelengthRange(1302e-9, 1305e-9)

	// THEN both boundary wavelengths are kept
	if !got.Equal(NewWaveSet(1302e-9, 1305e-9)) {
		t.Errorf("range filter: got %v", got)
	}
}

func TestWaveSet_FilterByIndex_UsesSortedPosition(t *testing.T) {
	// GIVEN wavelengths inserted unsorted
	ws := NewWaveSet(1310e-9, 1302e-9, 1305e-9)

	// WHEN filtering by sorted index 1
	got := ws.FilterByIndex(1, false)

	// THEN the middle wavelength of the sorted order is selected
	if !got.Equal(NewWaveSet(1305e-9)) {
		t.Errorf("FilterByIndex(1): got %v", got)
	}
}

func TestWaveSet_Wavelengths_ReturnsCopy(t *testing.T) {
	// GIVEN a set
	ws := NewWaveSet(1302e-9, 1305e-9)

	// WHEN the returned slice is mutated
	out := ws.Wavelengths()
	out[0] = 0

	// THEN the set is unaffected
	if !ws.Contains(1302e-9) {
		t.Errorf("mutating Wavelengths() output corrupted the set: %v", ws)
	}
}
