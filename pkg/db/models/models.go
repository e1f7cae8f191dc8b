package models

// All returns every model tracked by auto migration, ordered so foreign key
// targets are created first.
func All() []any {
	return []any{
		&User{},
		&Stock{},
		&Allocation{},
		&TimeSlot{},
		&Booking{},
		&Complaint{},
		&Notification{},
	}
}
