package google

import (
	"strconv"
	"testing"

	"lezioni/internal/core"
)

func TestLessonRowRoundTrip(t *testing.T) {
	in := core.Lesson{
		ID:           "abc-123",
		Date:         core.NewDate(2024, 5, 3),
		SportID:      "tennis",
		LessonTypeID: "t-single",
		LocationID:   "sede-a",
		Price:        core.Money{Cents: 3050},
		Cost:         core.Money{Cents: 1000},
		Invoiced:     true,
	}

	// Render the row the way Sheets hands values back: everything a string.
	row := lessonRow(in)
	cols := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			cols[i] = x
		case float64:
			cols[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			cols[i] = strconv.FormatBool(x)
		default:
			t.Fatalf("unexpected cell type %T", v)
		}
	}

	out, ok := parseLessonRow(cols)
	if !ok {
		t.Fatalf("row did not parse: %v", cols)
	}
	if out != in {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestParseLessonRowRejects(t *testing.T) {
	cases := [][]string{
		{"ID", "Data", "Sport", "Tipo", "Sede", "Prezzo", "Costo", "Fatturata"}, // header
		{"", "2024-05-03", "tennis", "t-single", "sede-a", "30", "10", "TRUE"},  // empty id
		{"x", "not-a-date", "tennis", "t-single", "sede-a", "30", "10", "TRUE"},
		{"x", "2024-05-03", "tennis", "t-single", "sede-a", "abc", "10", "TRUE"},
		{"x", "2024-05-03"}, // short row
	}
	for i, cols := range cases {
		if _, ok := parseLessonRow(cols); ok {
			t.Fatalf("case %d: expected rejection for %v", i, cols)
		}
	}
}

func TestParseLessonRowLocaleTolerance(t *testing.T) {
	cols := []string{"x", "2024-05-03", "tennis", "t-single", "sede-a", "30,50", "10,00", "VERO"}
	l, ok := parseLessonRow(cols)
	if !ok {
		t.Fatalf("comma decimals must parse: %v", cols)
	}
	if l.Price.Cents != 3050 || l.Cost.Cents != 1000 {
		t.Fatalf("amounts: %+v", l)
	}
	if !l.Invoiced {
		t.Fatal("italian boolean must parse")
	}
}

func TestParseEurosToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"30", 3000, true},
		{"30.5", 3050, true},
		{"30,50", 3050, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseEurosToCents(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: got %d/%v, want %d/%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
