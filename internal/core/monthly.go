package core

import "time"

// MonthSummary drives the dashboard for one calendar month. It carries the
// full aggregate plus the month's lessons sorted newest first.
type MonthSummary struct {
	Year   int
	Month  int
	Summary
	Lessons []Lesson
}

// TotalIncome is the plain gross figure for the single-number KPI card:
// invoiced gross plus non-invoiced profit, no tax adjustment.
func (m MonthSummary) TotalIncome() Money {
	return m.Totals.GrossOverall()
}

// NetIncome is the tax-aware overall figure, in euros. Both variants are
// exposed so either display mode can be built on top.
func (m MonthSummary) NetIncome() float64 {
	return m.Totals.Overall(true)
}

// MonthlyView filters lessons to the calendar month of ref and aggregates
// them. Pure function over snapshots; every call recomputes from scratch.
func MonthlyView(lessons []Lesson, settings Settings, ref time.Time) MonthSummary {
	monthly := MonthLessons(lessons, ref)
	return MonthSummary{
		Year:    ref.Year(),
		Month:   int(ref.Month()),
		Summary: Aggregate(monthly, settings),
		Lessons: monthly,
	}
}
