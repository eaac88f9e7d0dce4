// internal/app/billing/duedate.go
package billing

import "time"

// DueDay is the day of month every membership charge falls due.
const DueDay = 10

// DueHour is the local hour charges fall due, chosen away from midnight
// so DST shifts and date-boundary comparisons stay unambiguous.
const DueHour = 12

// NextDueDate returns day 10, 12:00 local, of the month strictly after
// ref's month. The day is pinned to 1 before the month is added so that
// month-end references (the 29th..31st) can never overflow into the
// month after next.
func NextDueDate(ref time.Time) time.Time {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	next := firstOfMonth.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), DueDay, DueHour, 0, 0, 0, ref.Location())
}
