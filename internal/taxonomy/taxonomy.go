package taxonomy

import (
	"errors"
	"fmt"
)

// Size is the number of machine categories and, separately, of failure categories.
const Size = 12

// GroupCount is the number of (machine category, failure type) pairs.
const GroupCount = Size * Size

// ErrInvalidIndex reports a machine-category or failure-type index outside [0, Size).
var ErrInvalidIndex = errors.New("invalid taxonomy index")

// Order defines index assignment and must stay identical between training and scoring.
var machineCategories = [Size]string{
	"AR_Robotics",
	"Generator",
	"Polisher",
	"Blocker",
	"Laser",
	"Deblocker",
	"Lens Washer",
	"Backside Coater",
	"Vacuum Coater",
	"Tape Stripper",
	"Generator Separator",
	"Surface Taper",
}

var failureCategories = [Size]string{
	"Other",
	"Cal./Diamond",
	"Polish",
	"Axis",
	"Suction",
	"Missing/Lost Lens",
	"Sensor",
	"Pump",
	"Gripper",
	"Leak",
	"Freezing",
	"Dropping Lens",
}

// MachineCategories returns the machine labels in index order.
func MachineCategories() []string {
	return append([]string(nil), machineCategories[:]...)
}

// FailureCategories returns the failure labels in index order.
func FailureCategories() []string {
	return append([]string(nil), failureCategories[:]...)
}

// MachineLabel returns the display label for a machine category index.
func MachineLabel(i int) string {
	if i < 0 || i >= Size {
		return fmt.Sprintf("machine#%d", i)
	}
	return machineCategories[i]
}

// FailureLabel returns the display label for a failure type index.
func FailureLabel(i int) string {
	if i < 0 || i >= Size {
		return fmt.Sprintf("failure#%d", i)
	}
	return failureCategories[i]
}

// Validate checks both indices and wraps ErrInvalidIndex on the first violation.
func Validate(machineCategory, failureType int) error {
	if machineCategory < 0 || machineCategory >= Size {
		return fmt.Errorf("machine category %d outside [0,%d): %w", machineCategory, Size, ErrInvalidIndex)
	}
	if failureType < 0 || failureType >= Size {
		return fmt.Errorf("failure type %d outside [0,%d): %w", failureType, Size, ErrInvalidIndex)
	}
	return nil
}

// FlatIndex maps a validated pair onto the flattened parameter grid.
func FlatIndex(machineCategory, failureType int) int {
	return machineCategory*Size + failureType
}

// SplitIndex is the inverse of FlatIndex.
func SplitIndex(flat int) (machineCategory, failureType int) {
	return flat / Size, flat % Size
}
