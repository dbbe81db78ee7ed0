package core

import (
	"strings"

	"github.com/google/uuid"
)

// SportInUse reports whether any lesson references the sport.
func SportInUse(lessons []Lesson, sportID string) bool {
	for _, l := range lessons {
		if l.SportID == sportID {
			return true
		}
	}
	return false
}

// LessonTypeInUse reports whether any lesson references the lesson type
// within the sport.
func LessonTypeInUse(lessons []Lesson, sportID, lessonTypeID string) bool {
	for _, l := range lessons {
		if l.SportID == sportID && l.LessonTypeID == lessonTypeID {
			return true
		}
	}
	return false
}

// LocationInUse reports whether any lesson references the location within
// the sport.
func LocationInUse(lessons []Lesson, sportID, locationID string) bool {
	for _, l := range lessons {
		if l.SportID == sportID && l.LocationID == locationID {
			return true
		}
	}
	return false
}

// SettingsEditor applies a sequence of edit operations to produce a new
// Settings value. It deep-copies on construction, so the settings passed in
// are never mutated. Removals are guarded against lessons that still
// reference the element being removed.
type SettingsEditor struct {
	s Settings
}

func NewSettingsEditor(s Settings) *SettingsEditor {
	return &SettingsEditor{s: s.Normalize()}
}

// Settings returns the edited value. The editor keeps no reference to it.
func (e *SettingsEditor) Settings() Settings {
	return e.s.Clone()
}

func (e *SettingsEditor) sport(id string) *SportSetting {
	for i := range e.s.Sports {
		if e.s.Sports[i].ID == id {
			return &e.s.Sports[i]
		}
	}
	return nil
}

// AddSport appends a new sport and returns its generated id.
func (e *SettingsEditor) AddSport(name string) string {
	id := uuid.NewString()
	e.s.Sports = append(e.s.Sports, SportSetting{
		ID:          id,
		Name:        strings.TrimSpace(name),
		LessonTypes: []LessonTypeConfig{},
		Locations:   []LocationConfig{},
		Prices:      map[string]Money{},
		Costs:       map[string]map[string]Money{},
	})
	return id
}

func (e *SettingsEditor) RenameSport(id, name string) error {
	sp := e.sport(id)
	if sp == nil {
		return ErrSportNotFound
	}
	sp.Name = strings.TrimSpace(name)
	return nil
}

// RemoveSport deletes a sport. Rejected while any lesson references it.
func (e *SettingsEditor) RemoveSport(id string, lessons []Lesson) error {
	if SportInUse(lessons, id) {
		return ErrSportInUse
	}
	for i := range e.s.Sports {
		if e.s.Sports[i].ID == id {
			e.s.Sports = append(e.s.Sports[:i], e.s.Sports[i+1:]...)
			return nil
		}
	}
	return ErrSportNotFound
}

// AddLessonType appends a lesson type to a sport and returns its id.
func (e *SettingsEditor) AddLessonType(sportID, name string) (string, error) {
	sp := e.sport(sportID)
	if sp == nil {
		return "", ErrSportNotFound
	}
	id := uuid.NewString()
	sp.LessonTypes = append(sp.LessonTypes, LessonTypeConfig{ID: id, Name: strings.TrimSpace(name)})
	return id, nil
}

func (e *SettingsEditor) RenameLessonType(sportID, lessonTypeID, name string) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	for i := range sp.LessonTypes {
		if sp.LessonTypes[i].ID == lessonTypeID {
			sp.LessonTypes[i].Name = strings.TrimSpace(name)
			return nil
		}
	}
	return ErrTypeNotFound
}

// RemoveLessonType deletes a lesson type together with its price and cost
// matrix entries. Rejected while any lesson references it.
func (e *SettingsEditor) RemoveLessonType(sportID, lessonTypeID string, lessons []Lesson) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	if LessonTypeInUse(lessons, sportID, lessonTypeID) {
		return ErrTypeInUse
	}
	for i := range sp.LessonTypes {
		if sp.LessonTypes[i].ID == lessonTypeID {
			sp.LessonTypes = append(sp.LessonTypes[:i], sp.LessonTypes[i+1:]...)
			delete(sp.Prices, lessonTypeID)
			for _, byType := range sp.Costs {
				delete(byType, lessonTypeID)
			}
			return nil
		}
	}
	return ErrTypeNotFound
}

// AddLocation appends a location to a sport and returns its id.
func (e *SettingsEditor) AddLocation(sportID, name string) (string, error) {
	sp := e.sport(sportID)
	if sp == nil {
		return "", ErrSportNotFound
	}
	id := uuid.NewString()
	sp.Locations = append(sp.Locations, LocationConfig{ID: id, Name: strings.TrimSpace(name)})
	return id, nil
}

func (e *SettingsEditor) RenameLocation(sportID, locationID, name string) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	for i := range sp.Locations {
		if sp.Locations[i].ID == locationID {
			sp.Locations[i].Name = strings.TrimSpace(name)
			return nil
		}
	}
	return ErrLocationNotFound
}

// RemoveLocation deletes a location and its column of the cost matrix.
// Rejected while any lesson references it.
func (e *SettingsEditor) RemoveLocation(sportID, locationID string, lessons []Lesson) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	if LocationInUse(lessons, sportID, locationID) {
		return ErrLocationInUse
	}
	for i := range sp.Locations {
		if sp.Locations[i].ID == locationID {
			sp.Locations = append(sp.Locations[:i], sp.Locations[i+1:]...)
			delete(sp.Costs, locationID)
			return nil
		}
	}
	return ErrLocationNotFound
}

// SetPrice sets the unit price for a lesson type.
func (e *SettingsEditor) SetPrice(sportID, lessonTypeID string, price Money) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	if _, ok := sp.LessonType(lessonTypeID); !ok {
		return ErrTypeNotFound
	}
	if err := price.Validate(); err != nil {
		return err
	}
	sp.Prices[lessonTypeID] = price
	return nil
}

// SetCost sets one cell of the per-location-per-type cost matrix.
func (e *SettingsEditor) SetCost(sportID, locationID, lessonTypeID string, cost Money) error {
	sp := e.sport(sportID)
	if sp == nil {
		return ErrSportNotFound
	}
	if _, ok := sp.Location(locationID); !ok {
		return ErrLocationNotFound
	}
	if _, ok := sp.LessonType(lessonTypeID); !ok {
		return ErrTypeNotFound
	}
	if err := cost.Validate(); err != nil {
		return err
	}
	if sp.Costs[locationID] == nil {
		sp.Costs[locationID] = map[string]Money{}
	}
	sp.Costs[locationID][lessonTypeID] = cost
	return nil
}

func (e *SettingsEditor) SetTaxRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return ErrInvalidTaxRate
	}
	e.s.TaxRate = rate
	return nil
}
