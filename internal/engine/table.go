package engine

import (
	"fmt"
	"math"

	"github.com/miradorstack/mirador-rul/internal/models"
	"github.com/miradorstack/mirador-rul/internal/taxonomy"
	"github.com/miradorstack/mirador-rul/internal/utils"
)

// GroupEstimate is one cell of the parameter grid.
type GroupEstimate struct {
	MachineCategory     int     `json:"machine_category"`
	FailureType         int     `json:"failure_type"`
	Samples             int     `json:"samples"`
	CharacteristicHours float64 `json:"characteristic_hours"`
}

// Sentinel reports whether the cell holds the insufficient-data value 0.
func (g GroupEstimate) Sentinel() bool {
	return g.CharacteristicHours == 0
}

// ParameterTable holds the characteristic time of every (machine category, failure type)
// pair at flat index machine*12+failure. It is immutable once built and safe to share
// between concurrent scoring passes.
type ParameterTable struct {
	groups [taxonomy.GroupCount]GroupEstimate
}

// BuildParameterTable partitions corpus by exact (machine category, failure type) match and
// estimates every group with at least MinGroupSamples records. Smaller or empty groups keep
// the sentinel 0. Any record with an out-of-range index aborts the build.
func BuildParameterTable(corpus []models.FailureRecord) (*ParameterTable, error) {
	var buckets [taxonomy.GroupCount][]float64
	for i, rec := range corpus {
		if err := taxonomy.Validate(rec.MachineCategory, rec.FailureType); err != nil {
			return nil, utils.NewAppError("engine.BuildParameterTable", fmt.Sprintf("record %d", i), err)
		}
		if rec.DurationHours < 0 || math.IsNaN(rec.DurationHours) || math.IsInf(rec.DurationHours, 0) {
			return nil, utils.NewAppError("engine.BuildParameterTable", fmt.Sprintf("record %d has invalid duration %v", i, rec.DurationHours), nil)
		}
		flat := taxonomy.FlatIndex(rec.MachineCategory, rec.FailureType)
		buckets[flat] = append(buckets[flat], rec.DurationHours)
	}

	table := &ParameterTable{}
	for flat := range buckets {
		m, f := taxonomy.SplitIndex(flat)
		group := GroupEstimate{MachineCategory: m, FailureType: f, Samples: len(buckets[flat])}
		if group.Samples >= MinGroupSamples {
			value, err := CharacteristicTime(buckets[flat])
			if err != nil {
				return nil, utils.NewAppError("engine.BuildParameterTable", groupName(m, f), err)
			}
			group.CharacteristicHours = value
		}
		table.groups[flat] = group
	}
	return table, nil
}

// TableFromSnapshot rebuilds a table from the output of Snapshot. Every pair must appear
// exactly once.
func TableFromSnapshot(groups []GroupEstimate) (*ParameterTable, error) {
	if len(groups) != taxonomy.GroupCount {
		return nil, fmt.Errorf("snapshot has %d groups, want %d", len(groups), taxonomy.GroupCount)
	}
	table := &ParameterTable{}
	var seen [taxonomy.GroupCount]bool
	for _, g := range groups {
		if err := taxonomy.Validate(g.MachineCategory, g.FailureType); err != nil {
			return nil, fmt.Errorf("snapshot group: %w", err)
		}
		flat := taxonomy.FlatIndex(g.MachineCategory, g.FailureType)
		if seen[flat] {
			return nil, fmt.Errorf("snapshot repeats group %s", groupName(g.MachineCategory, g.FailureType))
		}
		if g.CharacteristicHours < 0 || math.IsNaN(g.CharacteristicHours) {
			return nil, fmt.Errorf("snapshot group %s has invalid value %v", groupName(g.MachineCategory, g.FailureType), g.CharacteristicHours)
		}
		seen[flat] = true
		table.groups[flat] = g
	}
	return table, nil
}

// Snapshot returns all 144 groups in flat order.
func (t *ParameterTable) Snapshot() []GroupEstimate {
	return append([]GroupEstimate(nil), t.groups[:]...)
}

// Values returns the flattened characteristic times, sentinels included.
func (t *ParameterTable) Values() []float64 {
	values := make([]float64, taxonomy.GroupCount)
	for i, g := range t.groups {
		values[i] = g.CharacteristicHours
	}
	return values
}

// Group returns the cell for a pair. Indices must be valid.
func (t *ParameterTable) Group(machineCategory, failureType int) (GroupEstimate, error) {
	if err := taxonomy.Validate(machineCategory, failureType); err != nil {
		return GroupEstimate{}, err
	}
	return t.groups[taxonomy.FlatIndex(machineCategory, failureType)], nil
}

// CharacteristicTime returns the usable characteristic time for a pair, or an error
// wrapping ErrInsufficientTrainingData when the cell holds the sentinel.
func (t *ParameterTable) CharacteristicTime(machineCategory, failureType int) (float64, error) {
	g, err := t.Group(machineCategory, failureType)
	if err != nil {
		return 0, err
	}
	if g.Sentinel() {
		msg := fmt.Sprintf("group %s has %d samples", groupName(machineCategory, failureType), g.Samples)
		if g.Samples >= MinGroupSamples {
			// A zero estimate cannot be told apart from the sentinel.
			msg = fmt.Sprintf("group %s estimated 0 hours from %d samples", groupName(machineCategory, failureType), g.Samples)
		}
		return 0, utils.NewAppError("engine.CharacteristicTime", msg, ErrInsufficientTrainingData)
	}
	return g.CharacteristicHours, nil
}

// Counts reports how many groups carry an estimate and how many hold the sentinel.
func (t *ParameterTable) Counts() (estimated, insufficient int) {
	for _, g := range t.groups {
		if g.Sentinel() {
			insufficient++
		} else {
			estimated++
		}
	}
	return estimated, insufficient
}

func groupName(machineCategory, failureType int) string {
	return taxonomy.MachineLabel(machineCategory) + "/" + taxonomy.FailureLabel(failureType)
}
