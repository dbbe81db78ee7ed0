package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"lezioni/internal/core"
	applog "lezioni/internal/log"
	"lezioni/internal/report"
)

// parseReportParams reads the export criteria from the form. Missing
// bounds default to the current month.
func parseReportParams(r *http.Request) (report.Params, error) {
	now := time.Now()
	start := core.NewDate(now.Year(), int(now.Month()), 1)
	end := core.DateOf(start.AddDate(0, 1, -1))

	if v := r.Form.Get("start"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return report.Params{}, err
		}
		start = d
	}
	if v := r.Form.Get("end"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return report.Params{}, err
		}
		end = d
	}

	invoice := core.InvoiceFilter(sanitizeInput(r.Form.Get("invoice")))
	if invoice == "" {
		invoice = core.InvoiceAll
	}
	if !invoice.Valid() {
		return report.Params{}, core.ErrInvalidDate
	}

	return report.Params{
		Start:             start,
		End:               end,
		Invoice:           invoice,
		SportID:           sanitizeInput(r.Form.Get("sport")),
		LocationID:        sanitizeInput(r.Form.Get("location")),
		IncludeNetDetails: r.Form.Get("net_details") == "on" || r.Form.Get("net_details") == "true",
	}, nil
}

// handleReport generates the PDF export. Composition is serialized: a
// second request while one is running gets 409 instead of queueing.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	params, err := parseReportParams(r)
	if err != nil {
		UnprocessableEntityError("Criteri di esportazione non validi").Write(w)
		return
	}

	if !atomic.CompareAndSwapInt32(&s.reportBusy, 0, 1) {
		slog.WarnContext(r.Context(), "Report generation already in progress")
		w.Header().Set("Retry-After", "5")
		ConflictError("Un'esportazione è già in corso, riprova tra poco").Write(w)
		return
	}
	defer atomic.StoreInt32(&s.reportBusy, 0)

	lessons, err := s.lessons.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Lesson list error", "error", err)
		InternalServerError("Errore nel caricamento delle lezioni").Write(w)
		return
	}
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
		InternalServerError("Errore nel caricamento della configurazione").Write(w)
		return
	}

	started := time.Now()
	pdf, err := report.Compose(lessons, settings, params)
	if err != nil {
		s.structured.LogError(r.Context(), "Report composition failed", err,
			applog.ComponentReport, applog.OpCompose,
			applog.NewFields().WithRequestID(requestIDFrom(r.Context())))
		InternalServerError("Errore nella generazione del resoconto").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.reportsBuilt, 1)

	slog.InfoContext(r.Context(), "Report generated",
		"start", params.Start.ISO(),
		"end", params.End.ISO(),
		"bytes", len(pdf),
		"duration_ms", time.Since(started).Milliseconds())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+params.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
