package experiment

import (
	"fmt"

	"github.com/wdmsim/wdmsim/sim"
)

// Outcome tallies the terminal statuses of one swap-loop experiment. Rates
// are fractions of the sequence count, filled in by finalize.
type Outcome struct {
	NumSequences      int
	NumSuccess        int
	NumFailure        int
	NumZeroLock       int
	NumDuplicateLock  int
	NumWrongLaneOrder int

	FailureInTime         float64
	FailureZeroLock       float64
	FailureDuplicateLock  float64
	FailureWrongLaneOrder float64
}

// Tally counts one terminal status.
func (o *Outcome) Tally(status sim.ExitStatus) {
	o.NumSequences++
	switch status {
	case sim.ExitSuccess:
		o.NumSuccess++
	case sim.ExitZeroLock:
		o.NumZeroLock++
	case sim.ExitDuplicateLock:
		o.NumDuplicateLock++
	case sim.ExitWrongLaneOrder:
		o.NumWrongLaneOrder++
	}
}

// Finalize fills in the failure totals and rates from the tallies.
func (o *Outcome) Finalize() {
	o.NumFailure = o.NumZeroLock + o.NumDuplicateLock + o.NumWrongLaneOrder
	if o.NumSequences == 0 {
		return
	}
	n := float64(o.NumSequences)
	o.FailureInTime = float64(o.NumFailure) / n
	o.FailureZeroLock = float64(o.NumZeroLock) / n
	o.FailureDuplicateLock = float64(o.NumDuplicateLock) / n
	o.FailureWrongLaneOrder = float64(o.NumWrongLaneOrder) / n
}

// CompareOutcome tallies an arbiter-vs-arbiter compare run. A mismatch is a
// sequence where exactly one of the two arbiters succeeded; comparing
// success/failure rather than exact statuses avoids false mismatches where
// the two arbiters fail the same draw for different reasons.
type CompareOutcome struct {
	NumSequences int
	NumMismatch  int

	// Mismatches split by the failing side's failure class.
	NumZeroOrDuplicateMismatch int
	NumWrongLaneOrderMismatch  int

	// Per-arbiter failure counts across all sequences, mismatched or not.
	NumFailurePrimary int
	NumFailureCompare int

	MismatchRate           float64
	FailureRatePrimary     float64
	FailureRateCompare     float64
	ZeroOrDuplicateRate    float64
	WrongLaneOrderMismatch float64
}

func (o *CompareOutcome) tally(status, statusCompare sim.ExitStatus, stopOnFailure bool) error {
	o.NumSequences++

	if status != sim.ExitSuccess {
		o.NumFailurePrimary++
	}
	if statusCompare != sim.ExitSuccess {
		o.NumFailureCompare++
	}

	if (status == sim.ExitSuccess) == (statusCompare == sim.ExitSuccess) {
		return nil
	}
	if stopOnFailure {
		return fmt.Errorf("exit status mismatch: %v vs %v", status, statusCompare)
	}
	o.NumMismatch++

	failing := status
	if status == sim.ExitSuccess {
		failing = statusCompare
	}
	switch failing {
	case sim.ExitZeroLock, sim.ExitDuplicateLock:
		o.NumZeroOrDuplicateMismatch++
	case sim.ExitWrongLaneOrder:
		o.NumWrongLaneOrderMismatch++
	}
	return nil
}

func (o *CompareOutcome) finalize() {
	if o.NumSequences == 0 {
		return
	}
	n := float64(o.NumSequences)
	o.MismatchRate = float64(o.NumMismatch) / n
	o.FailureRatePrimary = float64(o.NumFailurePrimary) / n
	o.FailureRateCompare = float64(o.NumFailureCompare) / n
	o.ZeroOrDuplicateRate = float64(o.NumZeroOrDuplicateMismatch) / n
	o.WrongLaneOrderMismatch = float64(o.NumWrongLaneOrderMismatch) / n
}
