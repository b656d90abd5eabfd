package recurrence

import (
	"cmp"
	"slices"
	"time"

	"github.com/dukerupert/twoof/internal/model"
)

// OccurrenceIn returns the yearly occurrence of event in the given year.
// Feb 29 falls back to Feb 28 in non-leap years.
func OccurrenceIn(event model.Date, year int) model.Date {
	if event.Month() == time.February && event.Day() == 29 && !isLeap(year) {
		return model.NewDate(year, time.February, 28)
	}
	return model.NewDate(year, event.Month(), event.Day())
}

// NextOccurrence returns the first occurrence of event on or after today.
// A non-recurring event in the past has no next occurrence.
func NextOccurrence(event, today model.Date, recurring bool) (model.Date, bool) {
	if !recurring {
		if event.Before(today) {
			return model.Date{}, false
		}
		return event, true
	}

	occ := OccurrenceIn(event, today.Year())
	if occ.Before(today) {
		occ = OccurrenceIn(event, today.Year()+1)
	}
	return occ, true
}

// DaysUntil returns the number of days from today to the next occurrence of
// event, or nil when there is none.
func DaysUntil(event, today model.Date, recurring bool) *int {
	occ, ok := NextOccurrence(event, today, recurring)
	if !ok {
		return nil
	}
	days := occ.DaysSince(today)
	return &days
}

// Annotate sets DaysUntil on every milestone relative to today.
func Annotate(milestones []model.Milestone, today model.Date) {
	for i := range milestones {
		m := &milestones[i]
		m.DaysUntil = DaysUntil(m.MilestoneDate, today, m.Recurring)
	}
}

// SortByDaysUntil orders milestones soonest first. Milestones with no
// upcoming occurrence go last. Ties keep their existing order.
func SortByDaysUntil(milestones []model.Milestone) {
	slices.SortStableFunc(milestones, func(a, b model.Milestone) int {
		switch {
		case a.DaysUntil == nil && b.DaysUntil == nil:
			return 0
		case a.DaysUntil == nil:
			return 1
		case b.DaysUntil == nil:
			return -1
		}
		return cmp.Compare(*a.DaysUntil, *b.DaysUntil)
	})
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
