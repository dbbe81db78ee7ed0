package core

import "testing"

func TestResolveSport(t *testing.T) {
	s := DefaultSettings()

	sp, ok := s.Sport("tennis")
	if !ok || sp.Name != "Tennis" {
		t.Fatalf("expected Tennis, got %+v (ok=%v)", sp, ok)
	}
	if _, ok := s.Sport("golf"); ok {
		t.Fatal("unknown sport must not resolve")
	}
}

func TestResolveWithinSport(t *testing.T) {
	s := DefaultSettings()
	sp, _ := s.Sport("tennis")

	if lt, ok := sp.LessonType("t-single"); !ok || lt.Name != "Singola" {
		t.Fatalf("lesson type: got %+v (ok=%v)", lt, ok)
	}
	if _, ok := sp.LessonType("p-group"); ok {
		t.Fatal("lesson type of another sport must not resolve")
	}
	if loc, ok := sp.Location("sede-b"); !ok || loc.Name != "Sede Secondaria B" {
		t.Fatalf("location: got %+v (ok=%v)", loc, ok)
	}
}

func TestPriceAndCostLookups(t *testing.T) {
	s := DefaultSettings()
	sp, _ := s.Sport("tennis")

	if got := sp.Price("t-double"); got.Cents != 4000 {
		t.Fatalf("price: expected 4000, got %d", got.Cents)
	}
	if got := sp.Price("missing"); got.Cents != 0 {
		t.Fatalf("missing price must be zero, got %d", got.Cents)
	}
	if got := sp.Cost("sede-b", "t-group"); got.Cents != 2000 {
		t.Fatalf("cost: expected 2000, got %d", got.Cents)
	}
	if got := sp.Cost("missing-loc", "t-single"); got.Cents != 0 {
		t.Fatalf("missing location cost must be zero, got %d", got.Cents)
	}
	if got := sp.Cost("sede-a", "missing-type"); got.Cents != 0 {
		t.Fatalf("missing type cost must be zero, got %d", got.Cents)
	}
}

func TestLabelsDegradeToPlaceholder(t *testing.T) {
	s := DefaultSettings()

	cases := []struct {
		name   string
		lesson Lesson
		want   LessonLabels
	}{
		{
			"fully resolved",
			Lesson{SportID: "tennis", LessonTypeID: "t-single", LocationID: "sede-a"},
			LessonLabels{Sport: "Tennis", LessonType: "Singola", Location: "Sede Principale A"},
		},
		{
			"dangling sport hides everything",
			Lesson{SportID: "deleted", LessonTypeID: "t-single", LocationID: "sede-a"},
			LessonLabels{Sport: "N/D", LessonType: "N/D", Location: "N/D"},
		},
		{
			"dangling type only",
			Lesson{SportID: "tennis", LessonTypeID: "deleted", LocationID: "sede-a"},
			LessonLabels{Sport: "Tennis", LessonType: "N/D", Location: "Sede Principale A"},
		},
		{
			"dangling location only",
			Lesson{SportID: "padel", LessonTypeID: "p-group", LocationID: "deleted"},
			LessonLabels{Sport: "Padel", LessonType: "Lezione Gruppo", Location: "N/D"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Labels(tc.lesson); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
