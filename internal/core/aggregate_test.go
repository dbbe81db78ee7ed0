package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// The documented scenario: two lessons in May 2024, 20% withholding.
func TestAggregateScenario(t *testing.T) {
	settings := DefaultSettings()
	settings.TaxRate = 20
	lessons := []Lesson{
		{Date: NewDate(2024, 5, 3), SportID: "tennis", LessonTypeID: "t-single", LocationID: "sede-a",
			Price: Money{Cents: 3000}, Cost: Money{Cents: 1000}, Invoiced: true},
		{Date: NewDate(2024, 5, 10), SportID: "padel", LessonTypeID: "p-group", LocationID: "padel-center",
			Price: Money{Cents: 5500}, Cost: Money{Cents: 2500}, Invoiced: false},
	}

	sum := Aggregate(lessons, settings)
	tt := sum.Totals
	if tt.Count != 2 {
		t.Fatalf("count: expected 2, got %d", tt.Count)
	}
	if tt.InvoicedGross.Cents != 2000 {
		t.Fatalf("invoiced gross: expected 2000, got %d", tt.InvoicedGross.Cents)
	}
	if !almostEqual(tt.InvoicedNet(), 16.00) {
		t.Fatalf("invoiced net: expected 16.00, got %v", tt.InvoicedNet())
	}
	if tt.NotInvoiced.Cents != 3000 {
		t.Fatalf("not invoiced: expected 3000, got %d", tt.NotInvoiced.Cents)
	}
	if !almostEqual(tt.Overall(true), 46.00) {
		t.Fatalf("overall (net): expected 46.00, got %v", tt.Overall(true))
	}
	if !almostEqual(tt.Overall(false), 50.00) {
		t.Fatalf("overall (gross): expected 50.00, got %v", tt.Overall(false))
	}

	wantSports := map[string]int{"Tennis": 1, "Padel": 1}
	if len(sum.BySport) != 2 {
		t.Fatalf("expected 2 sport entries, got %d", len(sum.BySport))
	}
	for _, e := range sum.BySport {
		if wantSports[e.Name] != e.Count {
			t.Fatalf("sport %s: expected %d, got %d", e.Name, wantSports[e.Name], e.Count)
		}
	}
}

// Conservation law: gross invoiced plus non-invoiced always equals the raw
// profit sum, independent of the invoiced partition.
func TestAggregateConservation(t *testing.T) {
	settings := DefaultSettings()
	lessons := []Lesson{
		mkLesson("a", NewDate(2024, 5, 1), "tennis", "sede-a", true),
		mkLesson("b", NewDate(2024, 5, 2), "tennis", "sede-b", false),
		mkLesson("c", NewDate(2024, 5, 3), "padel", "padel-center", true),
		{ID: "loss", Date: NewDate(2024, 5, 4), SportID: "tennis", LessonTypeID: "t-single",
			LocationID: "sede-a", Price: Money{Cents: 500}, Cost: Money{Cents: 900}, Invoiced: false},
		{ID: "dangling", Date: NewDate(2024, 5, 5), SportID: "deleted", LessonTypeID: "x",
			LocationID: "y", Price: Money{Cents: 1000}, Cost: Money{Cents: 200}, Invoiced: true},
	}

	var rawProfit int64
	for _, l := range lessons {
		rawProfit += l.Profit().Cents
	}

	tt := Aggregate(lessons, settings).Totals
	if got := tt.InvoicedGross.Cents + tt.NotInvoiced.Cents; got != rawProfit {
		t.Fatalf("conservation: expected %d, got %d", rawProfit, got)
	}
}

func TestAggregateTaxProperties(t *testing.T) {
	lessons := []Lesson{
		mkLesson("a", NewDate(2024, 5, 1), "tennis", "sede-a", true),
		mkLesson("b", NewDate(2024, 5, 2), "tennis", "sede-a", true),
	}
	for _, rate := range []float64{0, 4, 20, 35.5, 100} {
		settings := DefaultSettings()
		settings.TaxRate = rate
		tt := Aggregate(lessons, settings).Totals
		if tt.InvoicedNet() > tt.InvoicedGross.Euros()+1e-9 {
			t.Fatalf("rate %v: net %v exceeds gross %v", rate, tt.InvoicedNet(), tt.InvoicedGross.Euros())
		}
		if rate == 0 && !almostEqual(tt.InvoicedNet(), tt.InvoicedGross.Euros()) {
			t.Fatalf("zero rate: net %v != gross %v", tt.InvoicedNet(), tt.InvoicedGross.Euros())
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	sum := Aggregate(nil, DefaultSettings())
	tt := sum.Totals
	if tt.Count != 0 || tt.InvoicedGross.Cents != 0 || tt.NotInvoiced.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", tt)
	}
	if tt.InvoicedNet() != 0 || tt.Overall(true) != 0 || tt.Overall(false) != 0 {
		t.Fatal("expected zero derived figures")
	}
	if len(sum.BySport) != 0 || len(sum.ByLocation) != 0 || len(sum.ByLessonType) != 0 {
		t.Fatal("expected empty breakdowns")
	}
}

// A lesson referencing a deleted sport keeps its profit in the scalar
// totals but appears in no breakdown.
func TestAggregateDanglingReferences(t *testing.T) {
	settings := DefaultSettings()
	lessons := []Lesson{
		mkLesson("ok", NewDate(2024, 5, 1), "tennis", "sede-a", true),
		{ID: "ghost", Date: NewDate(2024, 5, 2), SportID: "deleted", LessonTypeID: "gone",
			LocationID: "gone", Price: Money{Cents: 4000}, Cost: Money{Cents: 500}, Invoiced: true},
		// Sport resolves, location does not: excluded from the location
		// breakdown only.
		{ID: "half", Date: NewDate(2024, 5, 3), SportID: "tennis", LessonTypeID: "t-single",
			LocationID: "razed", Price: Money{Cents: 3000}, Cost: Money{Cents: 1000}, Invoiced: false},
	}

	sum := Aggregate(lessons, settings)
	if sum.Totals.Count != 3 {
		t.Fatalf("count: expected 3, got %d", sum.Totals.Count)
	}
	if sum.Totals.InvoicedGross.Cents != 2000+3500 {
		t.Fatalf("invoiced gross must include the dangling lesson, got %d", sum.Totals.InvoicedGross.Cents)
	}
	if len(sum.BySport) != 1 || sum.BySport[0].Name != "Tennis" || sum.BySport[0].Count != 2 {
		t.Fatalf("sport breakdown: got %+v", sum.BySport)
	}
	if len(sum.ByLocation) != 1 || sum.ByLocation[0].Count != 1 {
		t.Fatalf("location breakdown must exclude unresolved rows: %+v", sum.ByLocation)
	}
	if len(sum.ByLessonType) != 1 || sum.ByLessonType[0].Name != "Singola (Tennis)" {
		t.Fatalf("type breakdown: got %+v", sum.ByLessonType)
	}
}

// Breakdown profit sums reconcile with the scalar totals restricted to
// lessons whose dimension resolved.
func TestBreakdownReconciliation(t *testing.T) {
	settings := DefaultSettings()
	lessons := []Lesson{
		mkLesson("a", NewDate(2024, 5, 1), "tennis", "sede-a", true),
		mkLesson("b", NewDate(2024, 5, 2), "tennis", "sede-b", false),
		mkLesson("c", NewDate(2024, 5, 3), "padel", "padel-center", true),
	}
	sum := Aggregate(lessons, settings)

	var bySportProfit int64
	for _, e := range sum.BySport {
		bySportProfit += e.Profit.Cents
	}
	want := sum.Totals.GrossOverall().Cents
	if bySportProfit != want {
		t.Fatalf("sport profit sum %d != overall %d", bySportProfit, want)
	}
}

func TestBreakdownSortStability(t *testing.T) {
	b := Breakdown{
		{Name: "first", Count: 2, Profit: Money{Cents: 100}},
		{Name: "second", Count: 2, Profit: Money{Cents: 100}},
		{Name: "third", Count: 5, Profit: Money{Cents: 50}},
	}
	byCount := b.ByCountDesc()
	if byCount[0].Name != "third" || byCount[1].Name != "first" || byCount[2].Name != "second" {
		t.Fatalf("count sort: got %+v", byCount)
	}
	byProfit := b.ByProfitDesc()
	if byProfit[0].Name != "first" || byProfit[1].Name != "second" || byProfit[2].Name != "third" {
		t.Fatalf("profit sort: got %+v", byProfit)
	}
	// Sorting must not reorder the original.
	if b[0].Name != "first" || b[2].Name != "third" {
		t.Fatal("sorted views must copy")
	}
}

// Identically named lesson types of different sports stay separate through
// the composite key.
func TestLessonTypeCompositeKey(t *testing.T) {
	settings := Settings{Sports: []SportSetting{
		{ID: "s1", Name: "Tennis", LessonTypes: []LessonTypeConfig{{ID: "g1", Name: "Gruppo"}}},
		{ID: "s2", Name: "Padel", LessonTypes: []LessonTypeConfig{{ID: "g2", Name: "Gruppo"}}},
	}}
	lessons := []Lesson{
		{ID: "a", Date: NewDate(2024, 5, 1), SportID: "s1", LessonTypeID: "g1", LocationID: "x",
			Price: Money{Cents: 100}},
		{ID: "b", Date: NewDate(2024, 5, 2), SportID: "s2", LessonTypeID: "g2", LocationID: "x",
			Price: Money{Cents: 100}},
	}
	sum := Aggregate(lessons, settings)
	if len(sum.ByLessonType) != 2 {
		t.Fatalf("expected 2 composite entries, got %+v", sum.ByLessonType)
	}
	if sum.ByLessonType[0].Name != "Gruppo (Tennis)" || sum.ByLessonType[1].Name != "Gruppo (Padel)" {
		t.Fatalf("unexpected keys: %+v", sum.ByLessonType)
	}
}
