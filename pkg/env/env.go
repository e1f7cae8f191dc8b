// Package env provides small helpers for reading process environment values.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when the variable is
// unset or blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if val = strings.TrimSpace(val); val == "" {
		return fallback
	}
	return val
}
