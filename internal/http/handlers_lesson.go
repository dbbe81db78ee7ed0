package http

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"lezioni/internal/core"
	applog "lezioni/internal/log"
	"lezioni/internal/services"
	"lezioni/internal/store"
)

// parseLessonInput reads the lesson fields from the parsed form.
func parseLessonInput(r *http.Request) (services.LessonInput, error) {
	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		return services.LessonInput{}, err
	}
	return services.LessonInput{
		Date:         date,
		SportID:      sanitizeInput(r.Form.Get("sport")),
		LessonTypeID: sanitizeInput(r.Form.Get("lesson_type")),
		LocationID:   sanitizeInput(r.Form.Get("location")),
		Invoiced:     r.Form.Get("invoiced") == "on" || r.Form.Get("invoiced") == "true",
	}, nil
}

// lessonErrorResponse maps domain errors to user-facing responses.
func lessonErrorResponse(err error) *HTMXResponseBuilder {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return UnprocessableEntityError("Data non valida")
	case errors.Is(err, core.ErrSportNotFound):
		return UnprocessableEntityError("Sport non configurato")
	case errors.Is(err, core.ErrTypeNotFound):
		return UnprocessableEntityError("Tipo lezione non configurato")
	case errors.Is(err, core.ErrLocationNotFound):
		return UnprocessableEntityError("Sede non configurata")
	case errors.Is(err, store.ErrLessonNotFound):
		return NotFoundError("Lezione non trovata")
	default:
		return InternalServerError("Errore nel salvataggio")
	}
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	in, err := parseLessonInput(r)
	if err != nil {
		lessonErrorResponse(err).Write(w)
		return
	}

	lesson, err := s.lessons.Create(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create lesson",
			"error", err,
			"sport_id", in.SportID,
			"lesson_type_id", in.LessonTypeID,
			"location_id", in.LocationID)
		lessonErrorResponse(err).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.lessonWrites, 1)
	s.invalidateLessonMonth(lesson)

	s.structured.LogLessonSaved(r.Context(), applog.OpCreate,
		lesson.ID, lesson.Date.ISO(), lesson.SportID, lesson.Profit().Cents, lesson.Invoiced)

	NewHTMXResponse().
		TriggerLessonSaved(lesson.Date.Year(), int(lesson.Date.Month())).
		TriggerFormReset().
		TriggerSuccessNotification("Lezione registrata").
		Write(w)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("ID lezione mancante").Write(w)
		return
	}

	// The previous month's summary is stale too when the date moved.
	before, err := s.lessons.Get(r.Context(), id)
	if err != nil {
		lessonErrorResponse(err).Write(w)
		return
	}

	in, err := parseLessonInput(r)
	if err != nil {
		lessonErrorResponse(err).Write(w)
		return
	}

	lesson, err := s.lessons.Update(r.Context(), id, in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update lesson", "error", err, "lesson_id", id)
		lessonErrorResponse(err).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.lessonWrites, 1)
	s.invalidateLessonMonth(before)
	s.invalidateLessonMonth(lesson)

	s.structured.LogLessonSaved(r.Context(), applog.OpUpdate,
		lesson.ID, lesson.Date.ISO(), lesson.SportID, lesson.Profit().Cents, lesson.Invoiced)

	NewHTMXResponse().
		TriggerLessonSaved(lesson.Date.Year(), int(lesson.Date.Month())).
		TriggerSuccessNotification("Lezione aggiornata").
		Write(w)
}

func (s *Server) handleToggleInvoiced(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("ID lezione mancante").Write(w)
		return
	}

	lesson, err := s.lessons.ToggleInvoiced(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to toggle invoiced flag", "error", err, "lesson_id", id)
		lessonErrorResponse(err).Write(w)
		return
	}

	s.invalidateLessonMonth(lesson)

	NewHTMXResponse().
		TriggerLessonSaved(lesson.Date.Year(), int(lesson.Date.Month())).
		Write(w)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Parse delete request error", "error", err, "method", r.Method)
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("ID lezione mancante").Write(w)
		return
	}

	lesson, err := s.lessons.Get(r.Context(), id)
	if err != nil {
		lessonErrorResponse(err).Write(w)
		return
	}

	if err := s.lessons.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete lesson", "error", err, "lesson_id", id)
		lessonErrorResponse(err).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.lessonWrites, 1)
	s.invalidateLessonMonth(lesson)

	slog.InfoContext(r.Context(), "Lesson deleted", "lesson_id", id)

	NewHTMXResponse().
		TriggerLessonDeleted(lesson.Date.Year(), int(lesson.Date.Month())).
		TriggerSuccessNotification("Lezione cancellata").
		Write(w)
}
