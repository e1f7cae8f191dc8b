package enums

import "fmt"

// ComplaintStatus is the review state of a filed complaint.
type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "pending"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusResolved,
}

// IsValid reports whether the value matches the canonical complaint status enum.
func (s ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s ComplaintStatus) String() string {
	return string(s)
}

// ParseComplaintStatus converts the raw string to ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}
