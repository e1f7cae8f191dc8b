package enums

import "fmt"

// TimeSlotStatus tracks the lifecycle of a collection time slot.
type TimeSlotStatus string

const (
	TimeSlotStatusActive    TimeSlotStatus = "active"
	TimeSlotStatusFull      TimeSlotStatus = "full"
	TimeSlotStatusCompleted TimeSlotStatus = "completed"
	TimeSlotStatusCancelled TimeSlotStatus = "cancelled"
)

var validTimeSlotStatuses = []TimeSlotStatus{
	TimeSlotStatusActive,
	TimeSlotStatusFull,
	TimeSlotStatusCompleted,
	TimeSlotStatusCancelled,
}

// IsValid reports whether the value matches the canonical time slot status enum.
func (s TimeSlotStatus) IsValid() bool {
	for _, candidate := range validTimeSlotStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s TimeSlotStatus) String() string {
	return string(s)
}

// ParseTimeSlotStatus converts the raw string to TimeSlotStatus.
func ParseTimeSlotStatus(value string) (TimeSlotStatus, error) {
	for _, candidate := range validTimeSlotStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid time slot status %q", value)
}
