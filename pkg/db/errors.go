package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. Postgres errors name the constraint; sqlite only
// reports the columns, so the generic markers are always checked too.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
