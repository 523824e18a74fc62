// Package replay records individual lock sequences as JSON so a failing
// draw from a long randomized experiment can be replayed and debugged in
// isolation.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/wdmsim/wdmsim/sim"
	"github.com/wdmsim/wdmsim/sim/design"
)

// RingParams mirrors sim.RingParams with JSON field names.
type RingParams struct {
	FSR         float64 `json:"fsr"`
	TuningRange float64 `json:"tuning_range"`
}

// Record captures one lock sequence completely: the design parameters, the
// concrete wavelength draws the RNG produced, the arbiter, and the outcome.
// The wavelength lists carry the exact values, so a replay reproduces the
// sequence bit for bit without re-running the RNG.
type Record struct {
	ID string `json:"id"`

	LaserDesignParams design.LaserDesignParams `json:"laser_design_params"`
	RingDesignParams  design.RingDesignParams  `json:"ring_design_params"`
	InitLaneOrder     design.LaneOrderParams   `json:"init_lane_order_params"`
	TargetLaneOrder   design.LaneOrderParams   `json:"tgt_lane_order_params"`
	Arbiter           string                   `json:"arbiter"`

	LaserWavelengths []float64    `json:"laser_wavelengths"`
	RingWavelengths  []float64    `json:"ring_wavelengths"`
	RingRowParams    []RingParams `json:"ring_row_params"`

	ExitStatus int `json:"exit_status"`
}

// NewRecord assembles a record with a fresh unique ID.
func NewRecord(
	laser design.LaserDesignParams,
	ring design.RingDesignParams,
	initOrder, targetOrder design.LaneOrderParams,
	arbiterName string,
	laserWavelengths, ringWavelengths []float64,
	ringParams []sim.RingParams,
	status sim.ExitStatus,
) Record {
	rp := make([]RingParams, len(ringParams))
	for i, p := range ringParams {
		rp[i] = RingParams{FSR: p.FSR, TuningRange: p.TuningRange}
	}
	return Record{
		ID:                uuid.NewString(),
		LaserDesignParams: laser,
		RingDesignParams:  ring,
		InitLaneOrder:     initOrder,
		TargetLaneOrder:   targetOrder,
		Arbiter:           arbiterName,
		LaserWavelengths:  append([]float64(nil), laserWavelengths...),
		RingWavelengths:   append([]float64(nil), ringWavelengths...),
		RingRowParams:     rp,
		ExitStatus:        int(status),
	}
}

// SimRingParams renders the recorded ring parameters back into sim values.
func (r Record) SimRingParams() []sim.RingParams {
	out := make([]sim.RingParams, len(r.RingRowParams))
	for i, p := range r.RingRowParams {
		out[i] = sim.RingParams{FSR: p.FSR, TuningRange: p.TuningRange}
	}
	return out
}

// Append adds the record to the JSON array at path, creating the file when
// absent. The file is rewritten whole; records are small and append volume
// is one per interesting sequence, not per sequence.
func Append(path string, rec Record) error {
	records, err := Load(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal replay records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write replay file %s: %w", path, err)
	}
	return nil
}

// Load reads all records from the JSON array at path.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse replay file %s: %w", path, err)
	}
	return records, nil
}

// LoadPartition reads one contiguous partition of the records at path,
// splitting the list into totalPartitions near-equal chunks; the last
// partition absorbs the remainder. Used to fan a large replay file out
// across parallel jobs.
func LoadPartition(path string, totalPartitions, partitionIdx int) ([]Record, error) {
	if totalPartitions <= 0 {
		return nil, fmt.Errorf("total partitions must be positive, got %d", totalPartitions)
	}
	if partitionIdx < 0 || partitionIdx >= totalPartitions {
		return nil, fmt.Errorf("partition index %d out of range [0, %d)", partitionIdx, totalPartitions)
	}

	records, err := Load(path)
	if err != nil {
		return nil, err
	}

	size := len(records) / totalPartitions
	start := size * partitionIdx
	end := start + size
	if partitionIdx == totalPartitions-1 {
		end = len(records)
	}
	return records[start:end], nil
}
