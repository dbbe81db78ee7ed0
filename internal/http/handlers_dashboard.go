package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"lezioni/internal/core"
)

// sportView is the select-friendly shape of one configured sport.
type sportView struct {
	ID          string
	Name        string
	LessonTypes []core.LessonTypeConfig
	Locations   []core.LocationConfig
}

func sportViews(settings core.Settings) []sportView {
	out := make([]sportView, 0, len(settings.Sports))
	for _, sp := range settings.Sports {
		out = append(out, sportView{
			ID:          sp.ID,
			Name:        sp.Name,
			LessonTypes: sp.LessonTypes,
			Locations:   sp.Locations,
		})
	}
	return out
}

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	settings, err := s.settings.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
	}

	year, month := parseYearMonth(r)
	now := time.Now()
	data := struct {
		Today  string
		Year   int
		Month  int
		Sports []sportView
		Lesson *core.Lesson
	}{
		Today:  core.DateOf(now).ISO(),
		Year:   year,
		Month:  month,
		Sports: sportViews(settings),
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleLessonForm returns the lesson form partial, optionally pre-filled
// for editing an existing lesson.
func (s *Server) handleLessonForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	settings, err := s.settings.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
		InternalServerError("Errore nel caricamento della configurazione").Write(w)
		return
	}

	data := struct {
		Today  string
		Sports []sportView
		Lesson *core.Lesson
	}{
		Today:  core.DateOf(time.Now()).ISO(),
		Sports: sportViews(settings),
	}

	if id := sanitizeInput(r.URL.Query().Get("id")); id != "" {
		lesson, err := s.lessons.Get(r.Context(), id)
		if err != nil {
			NotFoundError("Lezione non trovata").Write(w)
			return
		}
		data.Lesson = &lesson
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "lesson_form", data); err != nil {
		slog.ErrorContext(r.Context(), "Lesson form template failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type breakdownRow struct {
	Name   string
	Count  int
	Profit string
	Width  int
}

func breakdownRows(b core.Breakdown) []breakdownRow {
	var maxCents int64
	for _, e := range b {
		if e.Profit.Cents > maxCents {
			maxCents = e.Profit.Cents
		}
	}
	rows := make([]breakdownRow, 0, len(b))
	for _, e := range b {
		width := 0
		if maxCents > 0 && e.Profit.Cents > 0 {
			width = int((e.Profit.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		rows = append(rows, breakdownRow{
			Name:   e.Name,
			Count:  e.Count,
			Profit: formatEuros(e.Profit.Cents),
			Width:  width,
		})
	}
	return rows
}

type lessonRow struct {
	ID       string
	Date     string
	Sport    string
	Type     string
	Location string
	Profit   string
	Invoiced bool
}

// handleMonthSummary renders the monthly summary partial: KPI figures,
// breakdowns and the month's lesson list.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	year, month := parseYearMonth(r)

	summary, err := s.getMonthSummary(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary error", "error", err, "year", year, "month", month)
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Errore caricando il riepilogo</div></section>`))
		return
	}

	settings, err := s.settings.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err, "year", year, "month", month)
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Totale: ` + formatEuros(summary.TotalIncome().Cents) + `</div></section>`))
		return
	}

	py, pm := prevMonth(year, month)
	ny, nm := nextMonth(year, month)

	data := struct {
		Year, Month            int
		Label                  string
		PrevYear, PrevMonth    int
		NextYear, NextMonth    int
		Count                  int
		Total                  string
		NetTotal               string
		InvoicedGross          string
		InvoicedNet            string
		TaxWithheld            string
		NotInvoiced            string
		TaxRate                float64
		HasTax                 bool
		BySport                []breakdownRow
		ByLocation             []breakdownRow
		ByLessonType           []breakdownRow
		Lessons                []lessonRow
	}{
		Year: year, Month: month,
		Label:     monthLabel(year, month),
		PrevYear:  py, PrevMonth: pm,
		NextYear:  ny, NextMonth: nm,
		Count:         summary.Totals.Count,
		Total:         formatEuros(summary.TotalIncome().Cents),
		NetTotal:      formatEurosFloat(summary.NetIncome()),
		InvoicedGross: formatEuros(summary.Totals.InvoicedGross.Cents),
		InvoicedNet:   formatEurosFloat(summary.Totals.InvoicedNet()),
		TaxWithheld:   formatEurosFloat(summary.Totals.TaxWithheld()),
		NotInvoiced:   formatEuros(summary.Totals.NotInvoiced.Cents),
		TaxRate:       summary.Totals.TaxRate,
		HasTax:        summary.Totals.TaxRate > 0,
		BySport:       breakdownRows(summary.BySport.ByProfitDesc()),
		ByLocation:    breakdownRows(summary.ByLocation.ByProfitDesc()),
		ByLessonType:  breakdownRows(summary.ByLessonType.ByProfitDesc()),
	}

	for _, l := range summary.Lessons {
		labels := settings.Labels(l)
		data.Lessons = append(data.Lessons, lessonRow{
			ID:       l.ID,
			Date:     l.Date.Italian(),
			Sport:    template.HTMLEscapeString(labels.Sport),
			Type:     template.HTMLEscapeString(labels.LessonType),
			Location: template.HTMLEscapeString(labels.Location),
			Profit:   formatEuros(l.Profit().Cents),
			Invoiced: l.Invoiced,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "month_summary.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "month_summary.html", "year", year, "month", month)
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Errore rendering riepilogo</div></section>`))
	}
}
