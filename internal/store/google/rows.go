package google

import (
	"strconv"
	"strings"

	"lezioni/internal/core"
)

// Lesson sheet layout, columns A:H.
// ID | Data | Sport | Tipo | Sede | Prezzo | Costo | Fatturata
const lessonColumns = 8

// lessonRow serializes a lesson for USER_ENTERED writes. Amounts go out
// as euro decimals so the sheet stays human-readable.
func lessonRow(l core.Lesson) []any {
	return []any{
		l.ID,
		l.Date.ISO(),
		l.SportID,
		l.LessonTypeID,
		l.LocationID,
		l.Price.Euros(),
		l.Cost.Euros(),
		l.Invoiced,
	}
}

// parseLessonRow converts a sheet row back into a lesson. Rows that do not
// parse, headers included, are reported as not ok and skipped by callers.
func parseLessonRow(cols []string) (core.Lesson, bool) {
	if len(cols) < lessonColumns {
		return core.Lesson{}, false
	}
	id := strings.TrimSpace(cols[0])
	if id == "" {
		return core.Lesson{}, false
	}
	date, err := core.ParseDate(strings.TrimSpace(cols[1]))
	if err != nil {
		return core.Lesson{}, false
	}
	price, ok := parseEurosToCents(cols[5])
	if !ok {
		return core.Lesson{}, false
	}
	cost, ok := parseEurosToCents(cols[6])
	if !ok {
		return core.Lesson{}, false
	}
	l := core.Lesson{
		ID:           id,
		Date:         date,
		SportID:      strings.TrimSpace(cols[2]),
		LessonTypeID: strings.TrimSpace(cols[3]),
		LocationID:   strings.TrimSpace(cols[4]),
		Price:        core.Money{Cents: price},
		Cost:         core.Money{Cents: cost},
		Invoiced:     parseBool(cols[7]),
	}
	if err := l.Validate(); err != nil {
		return core.Lesson{}, false
	}
	return l, true
}

func parseEurosToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return int64((f * 100.0) - 0.5), true
	}
	return int64((f * 100.0) + 0.5), true
}

// parseBool accepts the spellings Sheets may hand back, including the
// Italian locale booleans.
func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "VERO", "1", "SI", "SÌ":
		return true
	}
	return false
}
