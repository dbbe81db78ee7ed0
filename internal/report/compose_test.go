package report

import (
	"bytes"
	"fmt"
	"testing"

	"lezioni/internal/core"
)

func demoSettings() core.Settings {
	s := core.DefaultSettings()
	s.TaxRate = 20
	return s
}

func demoLessons() []core.Lesson {
	return []core.Lesson{
		{ID: "l1", Date: core.NewDate(2024, 5, 3), SportID: "tennis", LessonTypeID: "t-single",
			LocationID: "sede-a", Price: core.Money{Cents: 3000}, Cost: core.Money{Cents: 1000}, Invoiced: true},
		{ID: "l2", Date: core.NewDate(2024, 5, 10), SportID: "padel", LessonTypeID: "p-group",
			LocationID: "padel-center", Price: core.Money{Cents: 5500}, Cost: core.Money{Cents: 2500}},
	}
}

func mayParams() Params {
	return Params{
		Start:             core.NewDate(2024, 5, 1),
		End:               core.NewDate(2024, 5, 31),
		Invoice:           core.InvoiceAll,
		SportID:           core.FilterAny,
		LocationID:        core.FilterAny,
		IncludeNetDetails: true,
	}
}

func TestComposeProducesPDF(t *testing.T) {
	out, err := Compose(demoLessons(), demoSettings(), mayParams())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF magic, got %q", out[:min(8, len(out))])
	}
	if !bytes.Contains(out, []byte("%%EOF")) {
		t.Fatal("document not terminated")
	}
}

func TestComposeGrossOnly(t *testing.T) {
	p := mayParams()
	p.IncludeNetDetails = false
	out, err := Compose(demoLessons(), demoSettings(), p)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}

func TestComposeEmptyResult(t *testing.T) {
	p := mayParams()
	p.Start = core.NewDate(2030, 1, 1)
	p.End = core.NewDate(2030, 1, 31)
	out, err := Compose(demoLessons(), demoSettings(), p)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("empty-range report must still be a valid document")
	}
}

func manyLessons(n int) []core.Lesson {
	lessons := make([]core.Lesson, 0, n)
	for i := 0; i < n; i++ {
		lessons = append(lessons, core.Lesson{
			ID:           fmt.Sprintf("l%d", i),
			Date:         core.NewDate(2024, 5, 1+i%28),
			SportID:      "tennis",
			LessonTypeID: "t-single",
			LocationID:   "sede-a",
			Price:        core.Money{Cents: 3000},
			Cost:         core.Money{Cents: 1000},
			Invoiced:     i%2 == 0,
		})
	}
	return lessons
}

// pdfPageCount counts the page objects in the serialized document. The
// page dictionaries are plain text even when content streams are
// compressed; "/Type /Pages" (the tree root) matches the "/Type /Page"
// prefix and is subtracted back out.
func pdfPageCount(out []byte) int {
	return bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
}

// Large inputs paginate instead of overflowing the page.
func TestComposeManyLessonsPaginates(t *testing.T) {
	settings := demoSettings()
	lessons := manyLessons(120)

	small, err := Compose(lessons[:2], settings, mayParams())
	if err != nil {
		t.Fatalf("compose small: %v", err)
	}
	large, err := Compose(lessons, settings, mayParams())
	if err != nil {
		t.Fatalf("compose large: %v", err)
	}
	if len(large) <= len(small) {
		t.Fatalf("expected larger document: %d vs %d", len(large), len(small))
	}
	if pages := pdfPageCount(large); pages < 2 {
		t.Fatalf("120 lessons should span multiple pages, got %d", pages)
	}
	if pages := pdfPageCount(small); pages != 1 {
		t.Fatalf("2 lessons should fit one page, got %d pages", pages)
	}
}

// Every page carries a "Pagina i di N" footer with N resolved to the
// final page count. Compression is disabled so the content streams are
// readable in the output.
func TestComposePageFooterNumbering(t *testing.T) {
	settings := demoSettings()
	lessons := manyLessons(120)
	summary := core.Aggregate(lessons, settings)

	c := newComposer()
	c.pdf.SetCompression(false)
	c.layout(lessons, settings, summary, mayParams())

	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	out := buf.Bytes()

	pages := pdfPageCount(out)
	if pages < 2 {
		t.Fatalf("expected a multi-page document, got %d pages", pages)
	}
	if got := c.pdf.PageCount(); got != pages {
		t.Fatalf("serialized pages %d, composer reports %d", pages, got)
	}
	for i := 1; i <= pages; i++ {
		marker := fmt.Sprintf("Pagina %d di %d", i, pages)
		if !bytes.Contains(out, []byte(marker)) {
			t.Errorf("missing footer %q", marker)
		}
	}
	if bytes.Contains(out, []byte("{nb}")) {
		t.Error("page-count alias left unsubstituted")
	}
}

func TestComposeFiltersBeforeLayout(t *testing.T) {
	p := mayParams()
	p.Invoice = core.InvoiceOnly
	p.SportID = "tennis"
	if _, err := Compose(demoLessons(), demoSettings(), p); err != nil {
		t.Fatalf("compose filtered: %v", err)
	}
}

func TestComposeDanglingReferences(t *testing.T) {
	lessons := append(demoLessons(), core.Lesson{
		ID: "ghost", Date: core.NewDate(2024, 5, 15), SportID: "deleted",
		LessonTypeID: "gone", LocationID: "gone",
		Price: core.Money{Cents: 4000}, Cost: core.Money{Cents: 500}, Invoiced: true,
	})
	out, err := Compose(lessons, demoSettings(), mayParams())
	if err != nil {
		t.Fatalf("compose with dangling refs: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}

func TestFilename(t *testing.T) {
	p := mayParams()
	want := "Resoconto_Lezioni_2024-05-01_2024-05-31.pdf"
	if got := p.Filename(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
