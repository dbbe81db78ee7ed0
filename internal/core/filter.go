package core

import (
	"sort"
	"time"
)

// InvoiceFilter selects lessons by their invoiced flag.
type InvoiceFilter string

const (
	InvoiceAll         InvoiceFilter = "all"
	InvoiceOnly        InvoiceFilter = "invoiced"
	InvoiceExcluded    InvoiceFilter = "not-invoiced"
	// FilterAny is the sentinel for sport/location filters that impose
	// no constraint.
	FilterAny = "all"
)

// Valid reports whether the filter value is one of the recognized options.
func (f InvoiceFilter) Valid() bool {
	switch f {
	case InvoiceAll, InvoiceOnly, InvoiceExcluded:
		return true
	}
	return false
}

// LessonFilter selects lessons for a report. Date bounds are inclusive and
// compared date-only. SportID and LocationID restrict to an exact id match
// unless empty or the FilterAny sentinel.
type LessonFilter struct {
	Start      Date
	End        Date
	Invoice    InvoiceFilter
	SportID    string
	LocationID string
}

func (f LessonFilter) matches(l Lesson) bool {
	if l.Date.Before(f.Start) || l.Date.After(f.End) {
		return false
	}
	switch f.Invoice {
	case InvoiceOnly:
		if !l.Invoiced {
			return false
		}
	case InvoiceExcluded:
		if l.Invoiced {
			return false
		}
	}
	if f.SportID != "" && f.SportID != FilterAny && l.SportID != f.SportID {
		return false
	}
	if f.LocationID != "" && f.LocationID != FilterAny && l.LocationID != f.LocationID {
		return false
	}
	return true
}

// Filter returns the matching subset sorted ascending by date, the order
// report composition itemizes rows in. The input slice is not modified and
// no match yields an empty, non-nil slice.
func Filter(lessons []Lesson, f LessonFilter) []Lesson {
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// MonthLessons returns the lessons falling in the calendar month of ref,
// sorted descending by date for on-screen display.
func MonthLessons(lessons []Lesson, ref time.Time) []Lesson {
	year, month := ref.Year(), int(ref.Month())
	out := make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.Date.SameMonth(year, month) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
