package reminder

// Quiet window bounds used when a user has not configured sleep and wake
// times: 22:00 until 08:00 local.
const (
	DefaultQuietStartMinutes = 1320
	DefaultQuietEndMinutes   = 480
)

// InQuietHours reports whether localMinutes falls inside the do-not-disturb
// window [start, end). Nil bounds take the defaults above. A window whose
// start is later than its end wraps past midnight, e.g. 22:00-08:00. The
// interval is half-open: the start minute is quiet, the end minute is not.
func InQuietHours(localMinutes int, start, end *int) bool {
	s := DefaultQuietStartMinutes
	if start != nil {
		s = *start
	}
	e := DefaultQuietEndMinutes
	if end != nil {
		e = *end
	}
	if s <= e {
		// Same-day window; s == e is an empty window.
		return localMinutes >= s && localMinutes < e
	}
	// Wraps past midnight: [s..1440) or [0..e).
	return localMinutes >= s || localMinutes < e
}
