package models

import "time"

// RULResult is the remaining-useful-life outcome for a single observation.
// RawRatio is unclamped and is what priority normalisation consumes.
type RULResult struct {
	Observation         int
	CharacteristicHours float64
	ElapsedHours        float64
	RawRatio            float64
	DisplayedPercent    float64
}

// ReportRow is one ranked line of the maintenance report.
type ReportRow struct {
	Observation         int
	MachineID           string
	LastFailure         time.Time
	MachineCategory     string
	FailureType         string
	CharacteristicHours float64
	RULPercent          float64
	RawRatio            float64
	PriorityWeight      float64
}

// FlaggedObservation is an observation whose group has no usable characteristic time.
type FlaggedObservation struct {
	Observation     int
	MachineID       string
	LastFailure     time.Time
	MachineCategory string
	FailureType     string
	Reason          string
}

// Report is the output of one scoring pass.
type Report struct {
	GeneratedAt time.Time
	Rows        []ReportRow
	Flagged     []FlaggedObservation
}
