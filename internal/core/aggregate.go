package core

import "sort"

// Totals holds the scalar figures for a lesson subset. Gross amounts are
// exact cent sums; the tax-adjusted figures are derived on demand in full
// float precision so rounding happens once, at formatting.
type Totals struct {
	Count         int
	InvoicedGross Money
	NotInvoiced   Money
	TaxRate       float64
}

// InvoicedNet is the invoiced gross profit after tax withholding, in euros.
func (t Totals) InvoicedNet() float64 {
	return t.InvoicedGross.Euros() * (1 - t.TaxRate/100)
}

// TaxWithheld is the amount deducted from the invoiced gross, in euros.
func (t Totals) TaxWithheld() float64 {
	return t.InvoicedGross.Euros() * (t.TaxRate / 100)
}

// GrossOverall is invoiced gross plus non-invoiced profit, exact.
func (t Totals) GrossOverall() Money {
	return t.InvoicedGross.Add(t.NotInvoiced)
}

// Overall is the headline figure in euros. With net details enabled the
// invoiced part is taken after tax, otherwise gross. Both presentations
// are valid; the caller's configuration selects one.
func (t Totals) Overall(includeNet bool) float64 {
	if includeNet {
		return t.InvoicedNet() + t.NotInvoiced.Euros()
	}
	return t.GrossOverall().Euros()
}

// BreakdownEntry is one row of a categorical breakdown: how many lessons
// fell in the category and how much profit they summed to.
type BreakdownEntry struct {
	Name   string
	Count  int
	Profit Money
}

// Breakdown keeps entries in first-encountered order. The sorted views are
// stable, so equal values retain that order across runs on the same input.
type Breakdown []BreakdownEntry

// ByCountDesc returns a copy sorted descending by lesson count.
func (b Breakdown) ByCountDesc() Breakdown {
	out := append(Breakdown(nil), b...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// ByProfitDesc returns a copy sorted descending by summed profit.
func (b Breakdown) ByProfitDesc() Breakdown {
	out := append(Breakdown(nil), b...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profit.Cents > out[j].Profit.Cents
	})
	return out
}

// Summary is the aggregate view of a lesson subset against a settings
// snapshot.
type Summary struct {
	Totals       Totals
	BySport      Breakdown
	ByLocation   Breakdown
	ByLessonType Breakdown
}

type breakdownBuilder struct {
	index   map[string]int
	entries Breakdown
}

func newBreakdownBuilder() *breakdownBuilder {
	return &breakdownBuilder{index: map[string]int{}}
}

func (b *breakdownBuilder) add(name string, profit Money) {
	i, ok := b.index[name]
	if !ok {
		i = len(b.entries)
		b.index[name] = i
		b.entries = append(b.entries, BreakdownEntry{Name: name})
	}
	b.entries[i].Count++
	b.entries[i].Profit = b.entries[i].Profit.Add(profit)
}

// Aggregate computes totals and categorical breakdowns for a lesson subset.
// A lesson whose sport, location or type no longer resolves is excluded
// from that specific breakdown only; its profit still counts toward the
// scalar totals. The lesson-type key is composite, "Type (Sport)", to keep
// identically named types of different sports apart.
func Aggregate(lessons []Lesson, settings Settings) Summary {
	totals := Totals{Count: len(lessons), TaxRate: settings.TaxRate}
	bySport := newBreakdownBuilder()
	byLocation := newBreakdownBuilder()
	byType := newBreakdownBuilder()

	for _, l := range lessons {
		profit := l.Profit()
		if l.Invoiced {
			totals.InvoicedGross = totals.InvoicedGross.Add(profit)
		} else {
			totals.NotInvoiced = totals.NotInvoiced.Add(profit)
		}

		sp, ok := settings.Sport(l.SportID)
		if !ok {
			continue
		}
		bySport.add(sp.Name, profit)
		if loc, ok := sp.Location(l.LocationID); ok {
			byLocation.add(loc.Name, profit)
		}
		if lt, ok := sp.LessonType(l.LessonTypeID); ok {
			byType.add(lt.Name+" ("+sp.Name+")", profit)
		}
	}

	return Summary{
		Totals:       totals,
		BySport:      bySport.entries,
		ByLocation:   byLocation.entries,
		ByLessonType: byType.entries,
	}
}
