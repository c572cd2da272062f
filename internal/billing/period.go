package billing

import "time"

// BillingGracePeriod is how long a new bill stays payable before it counts as overdue.
const BillingGracePeriod = 7 * 24 * time.Hour

// Day truncates t to its calendar day in UTC, matching how DATE columns are read back.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, days int) time.Time {
	return Day(t).AddDate(0, 0, days)
}

// NextPeriod returns the start and end days of a new subscription.
// When the user still holds a paid period ending on lastEnd, the new one is queued to start the day after;
// otherwise it starts today.
func NextPeriod(lastEnd *time.Time, today time.Time, durationDays int) (start, end time.Time) {
	start = Day(today)
	if lastEnd != nil {
		start = addDays(*lastEnd, 1)
	}
	return start, addDays(start, durationDays)
}

// Reanchor moves a period whose start has already arrived so that it begins on the payment day.
// A period starting after the payment day (a queued renewal) is left alone.
func Reanchor(start, paidAt time.Time, durationDays int) (newStart, newEnd time.Time, changed bool) {
	paidDay := Day(paidAt)
	if Day(start).After(paidDay) {
		return time.Time{}, time.Time{}, false
	}
	return paidDay, addDays(paidDay, durationDays), true
}

func dateOnly(t time.Time) string {
	return Day(t).Format(time.DateOnly)
}
