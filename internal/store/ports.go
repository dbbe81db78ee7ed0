package store

import (
	"context"
	"errors"

	"lezioni/internal/core"
)

// ErrLessonNotFound is returned by writers when the referenced lesson
// does not exist in the store.
var ErrLessonNotFound = errors.New("lesson not found")

// Ports for outbound adapters.
type (
	// LessonWriter persists lesson mutations. SaveLesson upserts by ID.
	LessonWriter interface {
		SaveLesson(ctx context.Context, l core.Lesson) error
		DeleteLesson(ctx context.Context, id string) error
	}

	// LessonLister returns every stored lesson. Filtering and aggregation
	// happen in memory on the returned snapshot.
	LessonLister interface {
		ListLessons(ctx context.Context) ([]core.Lesson, error)
	}

	// SettingsStore reads and replaces the settings document as a whole.
	SettingsStore interface {
		LoadSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}
)
