package experiment

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/wdmsim/wdmsim/sim/design"
)

// SweepConfig sizes a seed sweep: how many independent trials, how many
// swap-loop iterations each, and how many workers run them concurrently.
type SweepConfig struct {
	Trials        int
	NumRingSwaps  int
	NumLaserSwaps int
	// BaseSeed seeds trial t with BaseSeed+t, so a sweep is reproducible
	// and any single trial can be re-run standalone with run --seed.
	BaseSeed int64
	// Workers is the worker pool size; 0 means GOMAXPROCS.
	Workers int
}

// TrialResult is one trial's outcome together with the seed that produced
// it, so interesting trials can be reproduced in isolation.
type TrialResult struct {
	Seed    int64
	Outcome Outcome
}

// SweepSummary aggregates failure-in-time statistics across trials.
type SweepSummary struct {
	Trials int

	MeanFailureInTime   float64
	StdDevFailureInTime float64

	MeanZeroLock       float64
	MeanDuplicateLock  float64
	MeanWrongLaneOrder float64
}

// Sweep runs cfg.Trials independent swap-loop experiments across a worker
// pool. Each worker builds its own simulator from a derived seed, so trials
// share no state and the result is independent of scheduling. Results come
// back in trial order.
func Sweep(cfg Config, sweep SweepConfig) ([]TrialResult, SweepSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, SweepSummary{}, err
	}
	if sweep.Trials <= 0 {
		return nil, SweepSummary{}, fmt.Errorf("sweep trials must be positive, got %d", sweep.Trials)
	}

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > sweep.Trials {
		workers = sweep.Trials
	}

	results := make([]TrialResult, sweep.Trials)
	errs := make([]error, sweep.Trials)
	trials := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range trials {
				seed := sweep.BaseSeed + int64(t)
				s, err := New(cfg, design.NewSimulationKey(seed))
				if err != nil {
					errs[t] = err
					continue
				}
				results[t] = TrialResult{
					Seed:    seed,
					Outcome: s.DoExperiment(sweep.NumRingSwaps, sweep.NumLaserSwaps),
				}
			}
		}()
	}

	for t := 0; t < sweep.Trials; t++ {
		trials <- t
	}
	close(trials)
	wg.Wait()

	for t, err := range errs {
		if err != nil {
			return nil, SweepSummary{}, fmt.Errorf("trial %d (seed %d): %w", t, sweep.BaseSeed+int64(t), err)
		}
	}

	summary := summarize(results)
	logrus.Infof("sweep done: %d trials, failure in time %.6f +/- %.6f",
		summary.Trials, summary.MeanFailureInTime, summary.StdDevFailureInTime)
	return results, summary, nil
}

// DesignPoint names one laser/ring design combination of a grid sweep.
type DesignPoint struct {
	Name  string
	Laser design.LaserDesignParams
	Ring  design.RingDesignParams
}

// PointResult couples one design point with its trial results and summary.
type PointResult struct {
	Point   DesignPoint
	Results []TrialResult
	Summary SweepSummary
}

// GridSweep runs the seed sweep at every design point, holding the rest of
// the experiment config fixed. Points run in order; within a point the trials
// fan out to the worker pool, so two grid sweeps over the same points and
// seeds produce identical results.
func GridSweep(base Config, points []DesignPoint, sweep SweepConfig) ([]PointResult, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("grid sweep needs at least one design point")
	}

	out := make([]PointResult, 0, len(points))
	for _, p := range points {
		cfg := base
		cfg.Laser = p.Laser
		cfg.Ring = p.Ring
		results, summary, err := Sweep(cfg, sweep)
		if err != nil {
			return nil, fmt.Errorf("design point %s: %w", p.Name, err)
		}
		out = append(out, PointResult{Point: p, Results: results, Summary: summary})
	}
	return out, nil
}

func summarize(results []TrialResult) SweepSummary {
	fit := make([]float64, len(results))
	zero := make([]float64, len(results))
	dupl := make([]float64, len(results))
	wrong := make([]float64, len(results))
	for i, r := range results {
		fit[i] = r.Outcome.FailureInTime
		zero[i] = r.Outcome.FailureZeroLock
		dupl[i] = r.Outcome.FailureDuplicateLock
		wrong[i] = r.Outcome.FailureWrongLaneOrder
	}

	summary := SweepSummary{
		Trials:             len(results),
		MeanFailureInTime:  stat.Mean(fit, nil),
		MeanZeroLock:       stat.Mean(zero, nil),
		MeanDuplicateLock:  stat.Mean(dupl, nil),
		MeanWrongLaneOrder: stat.Mean(wrong, nil),
	}
	if len(results) > 1 {
		summary.StdDevFailureInTime = stat.StdDev(fit, nil)
	}
	return summary
}
