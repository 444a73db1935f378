package models

import "time"

// FailureRecord is one historical inter-failure duration from the training corpus.
type FailureRecord struct {
	MachineCategory int
	FailureType     int
	DurationHours   float64
}

// Observation is the current monitoring state of one machine for one failure type.
type Observation struct {
	MachineID       string
	LastFailure     time.Time
	MachineCategory int
	FailureType     int
}
