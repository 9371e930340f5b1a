package billing

import (
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// BufferMinutes is the grace period added once a session runs past BufferThresholdMinutes.
	BufferMinutes          = 10
	BufferThresholdMinutes = 60

	// DefaultHourlyRate and DefaultNightRate are used when a record is created without a rate.
	DefaultHourlyRate = 5.0
	DefaultNightRate  = 30.0
)

// HourlyFee is the billing breakdown of one hourly session.
type HourlyFee struct {
	ElapsedMinutes  int     `json:"elapsedMinutes"`
	BillableMinutes int     `json:"billableMinutes"`
	BillableHours   int     `json:"billableHours"`
	TotalPrice      float64 `json:"totalPrice"`
	BufferApplied   bool    `json:"bufferApplied"`
}

// ComputeHourlyFee converts the time between start and end into billable hours.
//
// Sessions longer than an hour get a fixed buffer before rounding up to whole hours.
// Anything shorter (including a zero or negative span) bills at least one minute, and
// therefore at least one hour.
func ComputeHourlyFee(start, end time.Time, hourlyRate float64) HourlyFee {
	elapsed := int(math.Floor(float64(end.Sub(start)) / float64(time.Minute)))
	if elapsed < 0 {
		elapsed = 0
	}

	buffered := elapsed > BufferThresholdMinutes
	billable := elapsed
	if buffered {
		billable = elapsed + BufferMinutes
	} else if billable < 1 {
		billable = 1
	}

	hours := int(math.Ceil(float64(billable) / 60.0))
	if hours < 1 {
		hours = 1
	}

	rate := hourlyRate
	if !isFinite(rate) || rate < 0 {
		rate = 0
	}

	return HourlyFee{
		ElapsedMinutes:  elapsed,
		BillableMinutes: billable,
		BillableHours:   hours,
		TotalPrice:      mulAmount(rate, hours),
		BufferApplied:   buffered,
	}
}

// ComputeLiveFee is ComputeHourlyFee for a session that is still open.
func ComputeLiveFee(clock clockwork.Clock, start time.Time, hourlyRate float64) HourlyFee {
	return ComputeHourlyFee(start, clock.Now(), hourlyRate)
}

// ValidateRate rejects rates that cannot be billed.
func ValidateRate(rate float64) error {
	if !isFinite(rate) || rate <= 0 {
		return Validation("hourly rate must be a positive number")
	}
	return nil
}

// NightPrice returns the flat price for a night record, falling back to the configured rate.
func NightPrice(price *float64, configured float64) (float64, error) {
	if price == nil {
		if configured <= 0 {
			configured = DefaultNightRate
		}
		return roundAmount(configured), nil
	}
	if !isFinite(*price) || *price < 0 {
		return 0, Validation("price must be a non-negative number")
	}
	return roundAmount(*price), nil
}

// PlanType is the recurrence unit of a subscription vehicle.
type PlanType string

const (
	PlanMonthly  PlanType = "monthly"
	PlanWeekly   PlanType = "weekly"
	PlanBiWeekly PlanType = "bi-weekly"
)

// Known reports whether p is one of the recognised plans.
func (p PlanType) Known() bool {
	switch p {
	case PlanMonthly, PlanWeekly, PlanBiWeekly:
		return true
	}
	return false
}

// ParsePlanType trims and lower-cases s. An empty value means monthly. Unknown values are
// returned as-is; ComputeExpiry treats them as monthly.
func ParsePlanType(s string) PlanType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PlanMonthly
	}
	return PlanType(s)
}

// ComputeExpiry returns the end of the plan period that starts at anchor.
//
// Days and months are counted on the calendar of loc, whatever zone anchor carries; a nil loc
// uses anchor's own. Monthly goes through time.AddDate, which normalises overflowing days:
// 2024-01-31 + 1 month is 2024-03-02. Unrecognised plans fall back to monthly.
func ComputeExpiry(anchor time.Time, plan PlanType, loc *time.Location) (time.Time, error) {
	if anchor.IsZero() {
		return time.Time{}, Validation("invalid anchor date")
	}
	if loc != nil {
		anchor = anchor.In(loc)
	}
	switch plan {
	case PlanWeekly:
		return anchor.AddDate(0, 0, 7), nil
	case PlanBiWeekly:
		return anchor.AddDate(0, 0, 14), nil
	default:
		return anchor.AddDate(0, 1, 0), nil
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an RFC 3339 timestamp or a zone-less date/time. Zone-less values are read in
// loc, the deployment calendar.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Validation("date is required")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Validation("invalid date %q", s)
}
