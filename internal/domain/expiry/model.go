package expiry

import (
	"fmt"
	"math"
	"time"

	"gritgym/internal/domain/timestamp"
)

// Category is the urgency bucket derived from days until expiry.
type Category string

// Category constants, in display precedence order.
const (
	CategoryUnknown      Category = "unknown"
	CategoryExpired      Category = "expired"
	CategoryExpiringSoon Category = "expiring-soon"
	CategoryRenewalSoon  Category = "renewal-soon"
	CategoryActive       Category = "active"
)

// Thresholds in days.
const (
	ExpiringSoonDays = 7
	RenewalSoonDays  = 30
)

const secondsPerDay = 24 * 60 * 60

var labels = map[Category]string{
	CategoryUnknown:      "N/A",
	CategoryExpired:      "Expired",
	CategoryExpiringSoon: "Expiring Soon",
	CategoryRenewalSoon:  "Renewal Soon",
	CategoryActive:       "Active",
}

var tones = map[Category]string{
	CategoryUnknown:      "gray",
	CategoryExpired:      "red",
	CategoryExpiringSoon: "red",
	CategoryRenewalSoon:  "yellow",
	CategoryActive:       "green",
}

// Label returns the fixed display label for the category.
func (c Category) Label() string {
	return labels[c]
}

// Tone returns the display color name for the category.
func (c Category) Tone() string {
	return tones[c]
}

// DaysUntil returns ceil((at - now) / 24h).
// PRE: now is sampled once per render pass by the caller
// POST: ok is false when at is Unknown
func DaysUntil(at timestamp.Instant, now time.Time) (int, bool) {
	t, ok := at.Time()
	if !ok {
		return 0, false
	}
	// Seconds arithmetic; time.Duration saturates at about 292 years.
	secs := float64(t.Unix()-now.Unix()) + float64(t.Nanosecond()-now.Nanosecond())/1e9
	return int(math.Ceil(secs / secondsPerDay)), true
}

// Categorize maps a signed day count to its category.
// INVARIANT: 0 days is expiring-soon, not expired
func Categorize(days int, known bool) Category {
	switch {
	case !known:
		return CategoryUnknown
	case days < 0:
		return CategoryExpired
	case days <= ExpiringSoonDays:
		return CategoryExpiringSoon
	case days <= RenewalSoonDays:
		return CategoryRenewalSoon
	default:
		return CategoryActive
	}
}

// Status is the derived expiry view for one payment.
type Status struct {
	Days     int
	Known    bool
	Category Category
}

// Evaluate derives the expiry status of at relative to now.
func Evaluate(at timestamp.Instant, now time.Time) Status {
	days, ok := DaysUntil(at, now)
	return Status{Days: days, Known: ok, Category: Categorize(days, ok)}
}

// Label returns the category label.
func (s Status) Label() string {
	return s.Category.Label()
}

// Tone returns the category tone.
func (s Status) Tone() string {
	return s.Category.Tone()
}

// Caption is "N days left" while a day or more remains, "Expired" from day 0 on.
func (s Status) Caption() string {
	if !s.Known {
		return s.Label()
	}
	if s.Days > 0 {
		return fmt.Sprintf("%d days left", s.Days)
	}
	return CategoryExpired.Label()
}
