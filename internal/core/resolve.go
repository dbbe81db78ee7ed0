package core

// PlaceholderLabel replaces the display name of any sport, lesson type or
// location a lesson still references after the configuration dropped it.
const PlaceholderLabel = "N/D"

// Sport resolves a sport by id.
func (s Settings) Sport(id string) (SportSetting, bool) {
	for _, sp := range s.Sports {
		if sp.ID == id {
			return sp, true
		}
	}
	return SportSetting{}, false
}

// LessonType resolves a lesson type by id within the sport.
func (sp SportSetting) LessonType(id string) (LessonTypeConfig, bool) {
	for _, lt := range sp.LessonTypes {
		if lt.ID == id {
			return lt, true
		}
	}
	return LessonTypeConfig{}, false
}

// Location resolves a location by id within the sport.
func (sp SportSetting) Location(id string) (LocationConfig, bool) {
	for _, loc := range sp.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return LocationConfig{}, false
}

// Price returns the unit price for a lesson type, zero when unset.
func (sp SportSetting) Price(lessonTypeID string) Money {
	return sp.Prices[lessonTypeID]
}

// Cost returns the unit cost for a location and lesson type. Absence at
// either level of the matrix means zero.
func (sp SportSetting) Cost(locationID, lessonTypeID string) Money {
	byType, ok := sp.Costs[locationID]
	if !ok {
		return Money{}
	}
	return byType[lessonTypeID]
}

// LessonLabels carries the resolved display names for one lesson row.
// Unresolvable references degrade to the placeholder instead of failing;
// a lesson with a dangling sport id still renders.
type LessonLabels struct {
	Sport      string
	LessonType string
	Location   string
}

// Labels resolves the display names for a lesson, substituting the
// placeholder for every reference the configuration no longer holds.
func (s Settings) Labels(l Lesson) LessonLabels {
	labels := LessonLabels{
		Sport:      PlaceholderLabel,
		LessonType: PlaceholderLabel,
		Location:   PlaceholderLabel,
	}
	sp, ok := s.Sport(l.SportID)
	if !ok {
		return labels
	}
	labels.Sport = sp.Name
	if lt, ok := sp.LessonType(l.LessonTypeID); ok {
		labels.LessonType = lt.Name
	}
	if loc, ok := sp.Location(l.LocationID); ok {
		labels.Location = loc.Name
	}
	return labels
}
