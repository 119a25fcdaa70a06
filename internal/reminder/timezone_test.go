package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "America/New_York", "Asia/Ho_Chi_Minh", "Europe/Moscow"} {
		assert.True(t, IsValidTimezone(tz), "expected %q to be valid", tz)
	}
	for _, tz := range []string{"", "Not/AZone", "not a zone", "America/Springfield"} {
		assert.False(t, IsValidTimezone(tz), "expected %q to be invalid", tz)
	}
}

func TestResolveTimezoneKnownZone(t *testing.T) {
	loc := ResolveTimezone("America/New_York")
	assert.Equal(t, "America/New_York", loc.String())

	loc = ResolveTimezone("UTC")
	assert.Equal(t, time.UTC, loc)
}

func TestResolveTimezoneFallsBackToUTC(t *testing.T) {
	for _, tz := range []string{"", "Not/AZone", "garbage"} {
		assert.Equal(t, time.UTC, ResolveTimezone(tz), "input %q", tz)
	}
}

func TestLocalMinutesAcrossDSTTransition(t *testing.T) {
	// US spring-forward on 2024-03-10: clocks jump 02:00 EST -> 03:00 EDT at
	// 07:00 UTC. A fixed UTC-5 offset would get every post-transition case
	// wrong by an hour.
	cases := []struct {
		utc  string
		want int
	}{
		{"2024-03-10T06:00:00Z", 60},  // 01:00 EST
		{"2024-03-10T07:00:00Z", 180}, // 03:00 EDT, the 02:00 hour does not exist
		{"2024-03-10T09:00:00Z", 300}, // 05:00 EDT
	}
	for _, c := range cases {
		now, err := time.Parse(time.RFC3339, c.utc)
		if err != nil {
			t.Fatalf("parse %s: %v", c.utc, err)
		}
		assert.Equal(t, c.want, LocalMinutes(now, "America/New_York"), "at %s", c.utc)
	}
}

func TestLocalMinutesFixedOffsetZone(t *testing.T) {
	// Asia/Ho_Chi_Minh is UTC+7 year round.
	now := time.Date(2024, time.December, 7, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, 540, LocalMinutes(now, "Asia/Ho_Chi_Minh")) // 09:00 local
}

func TestLocalMinutesTruncatesSeconds(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 5, 59, 999_000_000, time.UTC)
	assert.Equal(t, 605, LocalMinutes(now, "UTC"))
}

func TestLocalMinutesUnknownZoneBehavesAsUTC(t *testing.T) {
	now := time.Date(2024, time.June, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, LocalMinutes(now, "UTC"), LocalMinutes(now, "Not/AZone"))
	assert.Equal(t, 1439, LocalMinutes(now, "Not/AZone"))
}
