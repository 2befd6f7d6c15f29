package repository

import (
	"time"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

// parseTimestamp parses an RFC3339 column value.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// timestamp formats t for storage, falling back to now when t is zero.
func timestamp(t time.Time) string {
	if t.IsZero() {
		return nowUTC()
	}
	return t.UTC().Format(time.RFC3339)
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseSlotKey converts stored date and role columns back into domain values.
func parseSlotKey(dateStr, roleStr string) (domain.Date, domain.Role, error) {
	d, err := domain.ParseDate(dateStr)
	if err != nil {
		return domain.Date{}, "", err
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Date{}, "", err
	}
	return d, role, nil
}
