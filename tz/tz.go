// Package tz converts between wall-clock date/time parts in an IANA
// zone and UTC instants.
package tz

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	slotLayout  = "2006-01-02T15:04:05"
)

// ToUTC reinterprets localDate+localTime as wall-clock time in the
// given zone and returns the UTC instant, DST offset included.
func ToUTC(localDate, localTime, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}

	t, err := time.ParseInLocation(dateLayout+" "+clockLayout, localDate+" "+localTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", localDate, localTime, err)
	}

	return t.UTC(), nil
}

// ToLocalParts splits an instant into YYYY-MM-DD and HH:MM strings as
// seen from the given zone.
func ToLocalParts(instant time.Time, timezone string) (string, string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", "", fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}

	local := instant.In(loc)
	return local.Format(dateLayout), local.Format(clockLayout), nil
}

// IsFutureSlot reports whether the candidate slot is strictly after
// now when both are rendered in the target zone. Comparison is over
// the formatted strings, matching how event dates are validated.
func IsFutureSlot(localDate, localTime, timezone string, now time.Time) (bool, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return false, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}

	slot, err := time.ParseInLocation(dateLayout+" "+clockLayout, localDate+" "+localTime, loc)
	if err != nil {
		return false, fmt.Errorf("invalid slot %q %q: %w", localDate, localTime, err)
	}

	return slot.Format(slotLayout) > now.In(loc).Format(slotLayout), nil
}

// FormatInZone renders an instant with the lexically ordered layout
// used by the validator's date comparison.
func FormatInZone(instant time.Time, timezone string) (string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return instant.In(loc).Format(slotLayout), nil
}
