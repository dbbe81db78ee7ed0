package http

import (
	"errors"
	"log/slog"
	"net/http"

	"lezioni/internal/core"
)

// settingsErrorResponse maps editor errors to user-facing responses. The
// in-use guards surface as conflicts so the UI can explain the refusal.
func settingsErrorResponse(err error) *HTMXResponseBuilder {
	switch {
	case errors.Is(err, core.ErrSportInUse):
		return ConflictError("Sport in uso da lezioni registrate")
	case errors.Is(err, core.ErrTypeInUse):
		return ConflictError("Tipo lezione in uso da lezioni registrate")
	case errors.Is(err, core.ErrLocationInUse):
		return ConflictError("Sede in uso da lezioni registrate")
	case errors.Is(err, core.ErrSportNotFound):
		return NotFoundError("Sport non trovato")
	case errors.Is(err, core.ErrTypeNotFound):
		return NotFoundError("Tipo lezione non trovato")
	case errors.Is(err, core.ErrLocationNotFound):
		return NotFoundError("Sede non trovata")
	case errors.Is(err, core.ErrInvalidTaxRate):
		return UnprocessableEntityError("Aliquota non valida (0-100)")
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrNegativeAmount):
		return UnprocessableEntityError("Importo non valido")
	default:
		return InternalServerError("Errore nel salvataggio della configurazione")
	}
}

type priceRow struct {
	LessonType core.LessonTypeConfig
	Amount     string
}

type costRow struct {
	Location core.LocationConfig
	Cells    []priceRow
}

type sportSection struct {
	ID        string
	Name      string
	Types     []core.LessonTypeConfig
	Locations []core.LocationConfig
	Prices    []priceRow
	Costs     []costRow
}

func settingsSections(settings core.Settings) []sportSection {
	sections := make([]sportSection, 0, len(settings.Sports))
	for _, sp := range settings.Sports {
		section := sportSection{
			ID:        sp.ID,
			Name:      sp.Name,
			Types:     sp.LessonTypes,
			Locations: sp.Locations,
		}
		for _, lt := range sp.LessonTypes {
			section.Prices = append(section.Prices, priceRow{
				LessonType: lt,
				Amount:     formatEuros(sp.Price(lt.ID).Cents),
			})
		}
		for _, loc := range sp.Locations {
			row := costRow{Location: loc}
			for _, lt := range sp.LessonTypes {
				row.Cells = append(row.Cells, priceRow{
					LessonType: lt,
					Amount:     formatEuros(sp.Cost(loc.ID, lt.ID).Cents),
				})
			}
			section.Costs = append(section.Costs, row)
		}
		sections = append(sections, section)
	}
	return sections
}

// handleSettingsPage renders the settings editor.
func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	settings, err := s.settings.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}

	data := struct {
		TaxRate float64
		Sports  []sportSection
	}{
		TaxRate: settings.TaxRate,
		Sports:  settingsSections(settings),
	}

	if err := s.templates.ExecuteTemplate(w, "settings.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Settings template execution failed", "error", err, "template", "settings.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// applyEdit runs a settings mutation and writes the outcome. Every edit
// invalidates all cached month summaries: labels and the tax rate feed
// into every month.
func (s *Server) applyEdit(w http.ResponseWriter, r *http.Request, success string, mutate func(ed *core.SettingsEditor, lessons []core.Lesson) error) {
	if _, err := s.settings.Apply(r.Context(), mutate); err != nil {
		slog.WarnContext(r.Context(), "Settings edit rejected", "error", err, "url", r.URL.Path)
		settingsErrorResponse(err).Write(w)
		return
	}

	s.summaryCache.Purge()

	NewHTMXResponse().
		TriggerSettingsChanged().
		TriggerSuccessNotification(success).
		Write(w)
}

func (s *Server) handleSportOp(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	op := sanitizeInput(r.Form.Get("op"))
	id := sanitizeInput(r.Form.Get("id"))
	name := sanitizeInput(r.Form.Get("name"))

	switch op {
	case "add":
		if name == "" {
			BadRequestError("Nome sport mancante").Write(w)
			return
		}
		s.applyEdit(w, r, "Sport aggiunto", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			ed.AddSport(name)
			return nil
		})
	case "rename":
		s.applyEdit(w, r, "Sport rinominato", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			return ed.RenameSport(id, name)
		})
	case "remove":
		s.applyEdit(w, r, "Sport rimosso", func(ed *core.SettingsEditor, lessons []core.Lesson) error {
			return ed.RemoveSport(id, lessons)
		})
	default:
		BadRequestError("Operazione non riconosciuta").Write(w)
	}
}

func (s *Server) handleLessonTypeOp(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	op := sanitizeInput(r.Form.Get("op"))
	sportID := sanitizeInput(r.Form.Get("sport"))
	id := sanitizeInput(r.Form.Get("id"))
	name := sanitizeInput(r.Form.Get("name"))

	switch op {
	case "add":
		if name == "" {
			BadRequestError("Nome tipo lezione mancante").Write(w)
			return
		}
		s.applyEdit(w, r, "Tipo lezione aggiunto", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			_, err := ed.AddLessonType(sportID, name)
			return err
		})
	case "rename":
		s.applyEdit(w, r, "Tipo lezione rinominato", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			return ed.RenameLessonType(sportID, id, name)
		})
	case "remove":
		s.applyEdit(w, r, "Tipo lezione rimosso", func(ed *core.SettingsEditor, lessons []core.Lesson) error {
			return ed.RemoveLessonType(sportID, id, lessons)
		})
	default:
		BadRequestError("Operazione non riconosciuta").Write(w)
	}
}

func (s *Server) handleLocationOp(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	op := sanitizeInput(r.Form.Get("op"))
	sportID := sanitizeInput(r.Form.Get("sport"))
	id := sanitizeInput(r.Form.Get("id"))
	name := sanitizeInput(r.Form.Get("name"))

	switch op {
	case "add":
		if name == "" {
			BadRequestError("Nome sede mancante").Write(w)
			return
		}
		s.applyEdit(w, r, "Sede aggiunta", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			_, err := ed.AddLocation(sportID, name)
			return err
		})
	case "rename":
		s.applyEdit(w, r, "Sede rinominata", func(ed *core.SettingsEditor, _ []core.Lesson) error {
			return ed.RenameLocation(sportID, id, name)
		})
	case "remove":
		s.applyEdit(w, r, "Sede rimossa", func(ed *core.SettingsEditor, lessons []core.Lesson) error {
			return ed.RemoveLocation(sportID, id, lessons)
		})
	default:
		BadRequestError("Operazione non riconosciuta").Write(w)
	}
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sportID := sanitizeInput(r.Form.Get("sport"))
	typeID := sanitizeInput(r.Form.Get("lesson_type"))

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}

	s.applyEdit(w, r, "Prezzo aggiornato", func(ed *core.SettingsEditor, _ []core.Lesson) error {
		return ed.SetPrice(sportID, typeID, core.Money{Cents: cents})
	})
}

func (s *Server) handleSetCost(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sportID := sanitizeInput(r.Form.Get("sport"))
	locationID := sanitizeInput(r.Form.Get("location"))
	typeID := sanitizeInput(r.Form.Get("lesson_type"))

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Importo non valido").Write(w)
		return
	}

	s.applyEdit(w, r, "Costo aggiornato", func(ed *core.SettingsEditor, _ []core.Lesson) error {
		return ed.SetCost(sportID, locationID, typeID, core.Money{Cents: cents})
	})
}

func (s *Server) handleSetTaxRate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	rate, err := parseRate(r.Form.Get("rate"))
	if err != nil {
		UnprocessableEntityError("Aliquota non valida (0-100)").Write(w)
		return
	}

	s.applyEdit(w, r, "Aliquota aggiornata", func(ed *core.SettingsEditor, _ []core.Lesson) error {
		return ed.SetTaxRate(rate)
	})
}
