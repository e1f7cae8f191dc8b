package enums

import "fmt"

// BookingStatus is the state of a user's slot booking. Cancelled rows are kept.
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusBooked,
	BookingStatusCancelled,
}

// IsValid reports whether the value matches the canonical booking status enum.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts the raw string to BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
