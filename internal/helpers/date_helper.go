package helpers

import "time"

// DateLayout is the wire format for event dates, e.g. "2026-08-29".
const DateLayout = "2006-01-02"

// CurrentSaturday returns the date of the event instance a ticket bought now
// admits to: today if it is Saturday, otherwise the upcoming Saturday.
func CurrentSaturday(now time.Time) string {
	days := int(time.Saturday - now.Weekday())
	return now.AddDate(0, 0, days).Format(DateLayout)
}
