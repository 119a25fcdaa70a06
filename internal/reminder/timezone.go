// Package reminder decides which users are due a meal, sleep or water
// reminder at a given UTC instant. Decisions are pure functions over
// preference snapshots; nothing here touches the database or the network.
package reminder

import "time"

// ResolveTimezone returns the IANA location for tz. Empty or unrecognized
// identifiers degrade to UTC instead of failing; callers that care about the
// substitution log it themselves.
func ResolveTimezone(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsValidTimezone reports whether tz is a non-empty identifier known to the
// IANA timezone database.
func IsValidTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LocalMinutes converts a UTC instant to the user's wall clock expressed as
// minutes since local midnight, in [0,1439]. Conversion goes through the full
// tz database so DST transitions come out right; a fixed-offset shortcut does
// not. Seconds are truncated, never rounded up.
func LocalMinutes(utc time.Time, tz string) int {
	local := utc.In(ResolveTimezone(tz))
	return local.Hour()*60 + local.Minute()
}
