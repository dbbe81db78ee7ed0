package core

import (
	"testing"
	"time"
)

func mkLesson(id string, date Date, sportID, locationID string, invoiced bool) Lesson {
	return Lesson{
		ID:           id,
		Date:         date,
		SportID:      sportID,
		LessonTypeID: "t-single",
		LocationID:   locationID,
		Price:        Money{Cents: 3000},
		Cost:         Money{Cents: 1000},
		Invoiced:     invoiced,
	}
}

func ids(lessons []Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.ID
	}
	return out
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterDateRangeInclusive(t *testing.T) {
	lessons := []Lesson{
		mkLesson("a", NewDate(2024, 4, 30), "tennis", "sede-a", true),
		mkLesson("b", NewDate(2024, 5, 1), "tennis", "sede-a", true),
		mkLesson("c", NewDate(2024, 5, 31), "tennis", "sede-a", false),
		mkLesson("d", NewDate(2024, 6, 1), "tennis", "sede-a", false),
	}
	f := LessonFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31), Invoice: InvoiceAll}
	got := Filter(lessons, f)
	if !sameIDs(ids(got), "b", "c") {
		t.Fatalf("expected [b c], got %v", ids(got))
	}
	for _, l := range got {
		if l.Date.Before(f.Start) || l.Date.After(f.End) {
			t.Fatalf("lesson %s outside range", l.ID)
		}
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	lessons := []Lesson{
		mkLesson("a", NewDate(2024, 5, 10), "tennis", "sede-a", true),
		mkLesson("b", NewDate(2024, 5, 3), "padel", "padel-center", false),
	}
	f := LessonFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31), Invoice: InvoiceAll}
	once := Filter(lessons, f)
	twice := Filter(once, f)
	if !sameIDs(ids(twice), ids(once)...) {
		t.Fatalf("expected %v, got %v", ids(once), ids(twice))
	}
}

func TestFilterInvoiceStatus(t *testing.T) {
	lessons := []Lesson{
		mkLesson("inv", NewDate(2024, 5, 3), "tennis", "sede-a", true),
		mkLesson("not", NewDate(2024, 5, 4), "tennis", "sede-a", false),
	}
	base := LessonFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31)}

	cases := []struct {
		filter InvoiceFilter
		want   []string
	}{
		{InvoiceAll, []string{"inv", "not"}},
		{InvoiceOnly, []string{"inv"}},
		{InvoiceExcluded, []string{"not"}},
	}
	for _, tc := range cases {
		f := base
		f.Invoice = tc.filter
		got := ids(Filter(lessons, f))
		if !sameIDs(got, tc.want...) {
			t.Fatalf("%s: expected %v, got %v", tc.filter, tc.want, got)
		}
	}
}

func TestFilterSportAndLocation(t *testing.T) {
	lessons := []Lesson{
		mkLesson("t1", NewDate(2024, 5, 3), "tennis", "sede-a", true),
		mkLesson("t2", NewDate(2024, 5, 4), "tennis", "sede-b", true),
		mkLesson("p1", NewDate(2024, 5, 5), "padel", "padel-center", true),
	}
	base := LessonFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31), Invoice: InvoiceAll}

	f := base
	f.SportID = "tennis"
	if got := ids(Filter(lessons, f)); !sameIDs(got, "t1", "t2") {
		t.Fatalf("sport filter: got %v", got)
	}

	f.LocationID = "sede-b"
	if got := ids(Filter(lessons, f)); !sameIDs(got, "t2") {
		t.Fatalf("location filter: got %v", got)
	}

	// The sentinel imposes no constraint.
	f = base
	f.SportID = FilterAny
	f.LocationID = FilterAny
	if got := ids(Filter(lessons, f)); !sameIDs(got, "t1", "t2", "p1") {
		t.Fatalf("sentinel filter: got %v", got)
	}
}

func TestFilterSortsAscendingAndToleratesNoMatch(t *testing.T) {
	lessons := []Lesson{
		mkLesson("late", NewDate(2024, 5, 20), "tennis", "sede-a", true),
		mkLesson("early", NewDate(2024, 5, 2), "tennis", "sede-a", true),
		mkLesson("mid", NewDate(2024, 5, 10), "tennis", "sede-a", true),
	}
	f := LessonFilter{Start: NewDate(2024, 5, 1), End: NewDate(2024, 5, 31), Invoice: InvoiceAll}
	if got := ids(Filter(lessons, f)); !sameIDs(got, "early", "mid", "late") {
		t.Fatalf("expected ascending order, got %v", got)
	}

	empty := Filter(lessons, LessonFilter{Start: NewDate(2030, 1, 1), End: NewDate(2030, 1, 31), Invoice: InvoiceAll})
	if empty == nil || len(empty) != 0 {
		t.Fatalf("no match must yield empty slice, got %v", empty)
	}
}

func TestMonthLessons(t *testing.T) {
	lessons := []Lesson{
		mkLesson("may-early", NewDate(2024, 5, 2), "tennis", "sede-a", true),
		mkLesson("june", NewDate(2024, 6, 2), "tennis", "sede-a", true),
		mkLesson("may-late", NewDate(2024, 5, 28), "tennis", "sede-a", true),
		mkLesson("prev-year", NewDate(2023, 5, 10), "tennis", "sede-a", true),
	}
	ref := time.Date(2024, 5, 15, 13, 45, 0, 0, time.Local)
	got := ids(MonthLessons(lessons, ref))
	if !sameIDs(got, "may-late", "may-early") {
		t.Fatalf("expected descending May lessons, got %v", got)
	}
}

func TestInvoiceFilterValid(t *testing.T) {
	for _, f := range []InvoiceFilter{InvoiceAll, InvoiceOnly, InvoiceExcluded} {
		if !f.Valid() {
			t.Fatalf("%s must be valid", f)
		}
	}
	if InvoiceFilter("maybe").Valid() {
		t.Fatal("unknown value must be invalid")
	}
}
