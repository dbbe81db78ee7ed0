package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no meaningful time component.
	// Lessons are billed per day; all comparisons are date-only.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Lesson is one delivered (or scheduled) lesson instance. Price and
	// cost are captured from the configuration at creation/edit time and
	// stored on the lesson; later configuration changes never reinterpret
	// historical lessons.
	Lesson struct {
		ID           string
		Date         Date
		SportID      string
		LessonTypeID string
		LocationID   string
		Price        Money
		Cost         Money
		Invoiced     bool
	}

	LessonTypeConfig struct {
		ID   string
		Name string
	}

	LocationConfig struct {
		ID   string
		Name string
	}

	// SportSetting configures one activity: its lesson types, locations,
	// unit prices per lesson type and unit costs per location per type.
	SportSetting struct {
		ID          string
		Name        string
		LessonTypes []LessonTypeConfig
		Locations   []LocationConfig
		// Prices maps lessonTypeID -> unit price.
		Prices map[string]Money
		// Costs maps locationID -> lessonTypeID -> unit cost.
		// Absence at either level means cost zero.
		Costs map[string]map[string]Money
	}

	Settings struct {
		Sports []SportSetting
		// TaxRate is the percentage (0-100) withheld from invoiced
		// gross profit to yield net invoiced profit.
		TaxRate float64
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingSport     = errors.New("missing sport reference")
	ErrMissingType      = errors.New("missing lesson type reference")
	ErrMissingLocation  = errors.New("missing location reference")
	ErrNegativeAmount   = errors.New("negative amount")
	ErrSportNotFound    = errors.New("sport not found")
	ErrTypeNotFound     = errors.New("lesson type not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrSportInUse       = errors.New("sport is referenced by existing lessons")
	ErrTypeInUse        = errors.New("lesson type is referenced by existing lessons")
	ErrLocationInUse    = errors.New("location is referenced by existing lessons")
	ErrInvalidTaxRate   = errors.New("tax rate must be between 0 and 100")
)

// NewDate creates a Date from year, month, day at local midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates an arbitrary instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.key() < other.key()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.key() > other.key()
}

// SameMonth reports year+month equality, day ignored.
func (d Date) SameMonth(year, month int) bool {
	return d.Year() == year && int(d.Time.Month()) == month
}

// ISO returns the YYYY-MM-DD form used in filenames and storage.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Italian returns the DD/MM/YYYY form used in rendered documents.
func (d Date) Italian() string {
	return d.Format("02/01/2006")
}

func (d Date) key() int {
	return d.Year()*10000 + int(d.Time.Month())*100 + d.Time.Day()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference; the result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Profit is price minus cost. It may be negative and is never clamped.
func (l Lesson) Profit() Money {
	return l.Price.Sub(l.Cost)
}

func (l Lesson) Validate() error {
	if err := l.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(l.SportID) == "" {
		return ErrMissingSport
	}
	if strings.TrimSpace(l.LessonTypeID) == "" {
		return ErrMissingType
	}
	if strings.TrimSpace(l.LocationID) == "" {
		return ErrMissingLocation
	}
	if err := l.Price.Validate(); err != nil {
		return err
	}
	if err := l.Cost.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the settings. Editors work on clones so a
// structure referenced elsewhere is never mutated.
func (s Settings) Clone() Settings {
	out := Settings{TaxRate: s.TaxRate}
	if s.Sports != nil {
		out.Sports = make([]SportSetting, len(s.Sports))
		for i, sp := range s.Sports {
			out.Sports[i] = sp.clone()
		}
	}
	return out
}

func (sp SportSetting) clone() SportSetting {
	out := SportSetting{ID: sp.ID, Name: sp.Name}
	if sp.LessonTypes != nil {
		out.LessonTypes = append([]LessonTypeConfig(nil), sp.LessonTypes...)
	}
	if sp.Locations != nil {
		out.Locations = append([]LocationConfig(nil), sp.Locations...)
	}
	if sp.Prices != nil {
		out.Prices = make(map[string]Money, len(sp.Prices))
		for k, v := range sp.Prices {
			out.Prices[k] = v
		}
	}
	if sp.Costs != nil {
		out.Costs = make(map[string]map[string]Money, len(sp.Costs))
		for loc, byType := range sp.Costs {
			inner := make(map[string]Money, len(byType))
			for lt, v := range byType {
				inner[lt] = v
			}
			out.Costs[loc] = inner
		}
	}
	return out
}
