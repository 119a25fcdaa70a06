package reminder

import (
	"time"

	"go.uber.org/zap"
)

// MealKind identifies one of the three daily meal reminders.
type MealKind string

const (
	MealBreakfast MealKind = "breakfast"
	MealLunch     MealKind = "lunch"
	MealDinner    MealKind = "dinner"
)

// MealKinds lists every meal reminder in serving order.
var MealKinds = []MealKind{MealBreakfast, MealLunch, MealDinner}

// WaterPolicy selects how water reminders are timed. Both strategies are
// supported; the active one is a deployment setting (WATER_REMINDER_POLICY).
type WaterPolicy string

const (
	// WaterPolicyFixedTime fires at one configured minute of the local day,
	// regardless of quiet hours.
	WaterPolicyFixedTime WaterPolicy = "fixed"
	// WaterPolicyInterval fires once the configured number of hours has
	// passed since the previous water reminder, outside quiet hours.
	WaterPolicyInterval WaterPolicy = "interval"
)

// DefaultWaterTimeMinutes is the fixed-time policy fallback when the user has
// not picked a time: 16:00 local.
const DefaultWaterTimeMinutes = 960

// Snapshot is a read-only view of one user's reminder preferences joined with
// their timezone. The persistence layer guarantees minute fields are within
// [0,1439] at write time; they are trusted here. Snapshots are fetched fresh
// each scheduling pass and never mutated by this package.
type Snapshot struct {
	UserID   string
	Timezone string

	MealRemindersEnabled  bool
	WaterRemindersEnabled bool
	SleepRemindersEnabled bool

	BreakfastTimeMinutes     *int
	LunchTimeMinutes         *int
	DinnerTimeMinutes        *int
	SleepReminderTimeMinutes *int
	WaterReminderTimeMinutes *int

	WaterReminderIntervalHours int
	LastWaterReminderAt        *time.Time
}

func (s *Snapshot) mealTime(kind MealKind) *int {
	switch kind {
	case MealBreakfast:
		return s.BreakfastTimeMinutes
	case MealLunch:
		return s.LunchTimeMinutes
	case MealDinner:
		return s.DinnerTimeMinutes
	}
	return nil
}

// MealReminderDue reports whether the user's reminder for kind lands exactly
// on the current local minute. Matching is exact, not a window: the scheduler
// must tick at least once per minute or matches are skipped.
func MealReminderDue(now time.Time, s Snapshot, kind MealKind) bool {
	if !s.MealRemindersEnabled {
		return false
	}
	t := s.mealTime(kind)
	if t == nil {
		return false
	}
	return LocalMinutes(now, s.Timezone) == *t
}

// SleepReminderDue applies the same exact-minute rule to the sleep reminder.
func SleepReminderDue(now time.Time, s Snapshot) bool {
	if !s.SleepRemindersEnabled || s.SleepReminderTimeMinutes == nil {
		return false
	}
	return LocalMinutes(now, s.Timezone) == *s.SleepReminderTimeMinutes
}

// WaterReminderDue evaluates the water reminder under the given policy.
//
// Fixed-time matches one minute of the local day and deliberately ignores
// quiet hours. Interval suppresses inside the user's sleep window (sleep
// reminder time until breakfast time, defaults 22:00-08:00) and otherwise
// fires when LastWaterReminderAt is unset or at least the configured number
// of hours old. The elapsed comparison is fractional, so 1h59m against a 2h
// interval is not due.
func WaterReminderDue(now time.Time, s Snapshot, policy WaterPolicy) bool {
	if !s.WaterRemindersEnabled {
		return false
	}
	switch policy {
	case WaterPolicyFixedTime:
		target := DefaultWaterTimeMinutes
		if s.WaterReminderTimeMinutes != nil {
			target = *s.WaterReminderTimeMinutes
		}
		return LocalMinutes(now, s.Timezone) == target
	case WaterPolicyInterval:
		local := LocalMinutes(now, s.Timezone)
		if InQuietHours(local, s.SleepReminderTimeMinutes, s.BreakfastTimeMinutes) {
			return false
		}
		if s.LastWaterReminderAt == nil {
			return true
		}
		elapsed := now.Sub(*s.LastWaterReminderAt).Hours()
		return elapsed >= float64(s.WaterReminderIntervalHours)
	}
	return false
}

// Result groups the user ids due for each reminder kind in one pass.
type Result struct {
	Breakfast []string
	Lunch     []string
	Dinner    []string
	Sleep     []string
	Water     []string
}

// Total returns the number of due entries across all kinds.
func (r Result) Total() int {
	return len(r.Breakfast) + len(r.Lunch) + len(r.Dinner) + len(r.Sleep) + len(r.Water)
}

// Evaluator runs the decision functions over snapshot batches. It holds no
// mutable state once configured, so one instance may be shared across
// goroutines.
type Evaluator struct {
	policy WaterPolicy
	log    *zap.Logger

	// QuietStart and QuietEnd replace the package quiet-window defaults for
	// users who have set neither a sleep nor a breakfast time. They only
	// gate the interval water policy. Nil keeps 22:00-08:00.
	QuietStart *int
	QuietEnd   *int
}

// NewEvaluator returns an evaluator using the given water policy. A nil
// logger disables logging.
func NewEvaluator(policy WaterPolicy, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{policy: policy, log: log}
}

// forWater substitutes the evaluator's quiet-window bounds into a copy of the
// snapshot where the user left them unset. Only the water check sees the
// copy; meal matching must never inherit a synthetic breakfast time.
func (e *Evaluator) forWater(s Snapshot) Snapshot {
	if s.SleepReminderTimeMinutes == nil {
		s.SleepReminderTimeMinutes = e.QuietStart
	}
	if s.BreakfastTimeMinutes == nil {
		s.BreakfastTimeMinutes = e.QuietEnd
	}
	return s
}

// usable filters out snapshots that cannot be evaluated. A bad entry is
// skipped and logged rather than aborting the whole batch. An unknown
// timezone is not a skip: it evaluates under UTC per ResolveTimezone, with a
// warning here on the evaluator's behalf.
func (e *Evaluator) usable(s Snapshot) bool {
	if s.UserID == "" {
		e.log.Warn("skipping reminder snapshot with blank user id")
		return false
	}
	if s.Timezone != "" && !IsValidTimezone(s.Timezone) {
		e.log.Warn("unknown timezone, using UTC",
			zap.String("user_id", s.UserID),
			zap.String("timezone", s.Timezone))
	}
	return true
}

// DueForMeal returns the ids of users whose reminder for kind matches now.
func (e *Evaluator) DueForMeal(now time.Time, snaps []Snapshot, kind MealKind) []string {
	var due []string
	for _, s := range snaps {
		if e.usable(s) && MealReminderDue(now, s, kind) {
			due = append(due, s.UserID)
		}
	}
	return due
}

// DueForSleep returns the ids of users whose sleep reminder matches now.
func (e *Evaluator) DueForSleep(now time.Time, snaps []Snapshot) []string {
	var due []string
	for _, s := range snaps {
		if e.usable(s) && SleepReminderDue(now, s) {
			due = append(due, s.UserID)
		}
	}
	return due
}

// DueForWater returns the ids of users due a water reminder under the
// evaluator's policy.
func (e *Evaluator) DueForWater(now time.Time, snaps []Snapshot) []string {
	var due []string
	for _, s := range snaps {
		if e.usable(s) && WaterReminderDue(now, e.forWater(s), e.policy) {
			due = append(due, s.UserID)
		}
	}
	return due
}

// Evaluate runs every reminder kind over the batch in a single pass.
func (e *Evaluator) Evaluate(now time.Time, snaps []Snapshot) Result {
	var r Result
	for _, s := range snaps {
		if !e.usable(s) {
			continue
		}
		if MealReminderDue(now, s, MealBreakfast) {
			r.Breakfast = append(r.Breakfast, s.UserID)
		}
		if MealReminderDue(now, s, MealLunch) {
			r.Lunch = append(r.Lunch, s.UserID)
		}
		if MealReminderDue(now, s, MealDinner) {
			r.Dinner = append(r.Dinner, s.UserID)
		}
		if SleepReminderDue(now, s) {
			r.Sleep = append(r.Sleep, s.UserID)
		}
		if WaterReminderDue(now, e.forWater(s), e.policy) {
			r.Water = append(r.Water, s.UserID)
		}
	}
	return r
}
