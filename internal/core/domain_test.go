package core

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 5 || d.Day() != 3 {
		t.Fatalf("unexpected date: %v", d)
	}
	if d.ISO() != "2024-05-03" {
		t.Fatalf("ISO: got %q", d.ISO())
	}
	if d.Italian() != "03/05/2024" {
		t.Fatalf("Italian: got %q", d.Italian())
	}

	if _, err := ParseDate("03/05/2024"); err == nil {
		t.Fatal("expected error for non-ISO input")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestDateComparisons(t *testing.T) {
	a := NewDate(2024, 5, 3)
	b := NewDate(2024, 5, 10)
	if !a.Before(b) || b.Before(a) {
		t.Fatal("Before on different days")
	}
	if !b.After(a) || a.After(b) {
		t.Fatal("After on different days")
	}
	if a.Before(a) || a.After(a) {
		t.Fatal("same day must be neither before nor after")
	}
	if !a.SameMonth(2024, 5) || a.SameMonth(2024, 6) || a.SameMonth(2023, 5) {
		t.Fatal("SameMonth")
	}
}

func TestLessonProfit(t *testing.T) {
	l := Lesson{Price: Money{Cents: 3000}, Cost: Money{Cents: 1000}}
	if got := l.Profit(); got.Cents != 2000 {
		t.Fatalf("expected 2000, got %d", got.Cents)
	}
	// Never clamped.
	l = Lesson{Price: Money{Cents: 500}, Cost: Money{Cents: 900}}
	if got := l.Profit(); got.Cents != -400 {
		t.Fatalf("expected -400, got %d", got.Cents)
	}
}

func TestLessonValidate(t *testing.T) {
	valid := Lesson{
		Date:         NewDate(2024, 5, 3),
		SportID:      "tennis",
		LessonTypeID: "t-single",
		LocationID:   "sede-a",
		Price:        Money{Cents: 3000},
		Cost:         Money{Cents: 1000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Lesson)
		want   error
	}{
		{"zero date", func(l *Lesson) { l.Date = Date{} }, ErrInvalidDate},
		{"no sport", func(l *Lesson) { l.SportID = " " }, ErrMissingSport},
		{"no type", func(l *Lesson) { l.LessonTypeID = "" }, ErrMissingType},
		{"no location", func(l *Lesson) { l.LocationID = "" }, ErrMissingLocation},
		{"negative price", func(l *Lesson) { l.Price = Money{Cents: -1} }, ErrNegativeAmount},
		{"negative cost", func(l *Lesson) { l.Cost = Money{Cents: -1} }, ErrNegativeAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := valid
			tc.mutate(&l)
			if err := l.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSettingsClone(t *testing.T) {
	s := DefaultSettings()
	c := s.Clone()

	c.Sports[0].Name = "Changed"
	c.Sports[0].Prices["t-single"] = Money{Cents: 1}
	c.Sports[0].Costs["sede-a"]["t-single"] = Money{Cents: 1}
	c.Sports[0].LessonTypes[0].Name = "Changed"

	if s.Sports[0].Name != "Tennis" {
		t.Fatal("clone shares sport slice")
	}
	if s.Sports[0].Prices["t-single"].Cents != 3000 {
		t.Fatal("clone shares price map")
	}
	if s.Sports[0].Costs["sede-a"]["t-single"].Cents != 1000 {
		t.Fatal("clone shares cost matrix")
	}
	if s.Sports[0].LessonTypes[0].Name != "Singola" {
		t.Fatal("clone shares lesson type slice")
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{
		Sports:  []SportSetting{{ID: "x", Name: "X"}},
		TaxRate: -5,
	}
	n := s.Normalize()
	sp := n.Sports[0]
	if sp.LessonTypes == nil || sp.Locations == nil || sp.Prices == nil || sp.Costs == nil {
		t.Fatal("normalize must fill nil collections")
	}
	if n.TaxRate != 0 {
		t.Fatalf("negative tax rate must clamp to 0, got %v", n.TaxRate)
	}

	n = Settings{TaxRate: 150}.Normalize()
	if n.TaxRate != 100 {
		t.Fatalf("tax rate must clamp to 100, got %v", n.TaxRate)
	}
	if n.Sports == nil {
		t.Fatal("nil sports must become empty slice")
	}
}
