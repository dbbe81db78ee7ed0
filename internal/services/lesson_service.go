// Package services orchestrates lesson and settings operations on top of
// whichever backend is configured, publishing sync messages when a queue
// is attached.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"lezioni/internal/amqp"
	"lezioni/internal/core"
	"lezioni/internal/store"
)

// Store is the full set of ports a backend provides.
type Store interface {
	store.LessonWriter
	store.LessonLister
	store.SettingsStore
}

// SyncPublisher pushes lesson mutations onto the sync queue. The AMQP
// client implements it; demo and sheets deployments run without one.
type SyncPublisher interface {
	PublishLessonSync(ctx context.Context, id, op string) error
}

// LessonInput carries the user-editable lesson fields. Price and cost are
// resolved from the settings document at save time and snapshotted on the
// record.
type LessonInput struct {
	Date         core.Date
	SportID      string
	LessonTypeID string
	LocationID   string
	Invoiced     bool
}

// LessonService mediates lesson reads and writes.
type LessonService struct {
	backend   Store
	publisher SyncPublisher
}

func NewLessonService(backend Store, publisher SyncPublisher) *LessonService {
	return &LessonService{backend: backend, publisher: publisher}
}

// List returns every stored lesson.
func (s *LessonService) List(ctx context.Context) ([]core.Lesson, error) {
	return s.backend.ListLessons(ctx)
}

// Get returns a single lesson by ID.
func (s *LessonService) Get(ctx context.Context, id string) (core.Lesson, error) {
	lessons, err := s.backend.ListLessons(ctx)
	if err != nil {
		return core.Lesson{}, err
	}
	for _, l := range lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return core.Lesson{}, store.ErrLessonNotFound
}

// Create resolves the price and cost for the input against the current
// settings and stores a new lesson.
func (s *LessonService) Create(ctx context.Context, in LessonInput) (core.Lesson, error) {
	lesson, err := s.build(ctx, uuid.NewString(), in)
	if err != nil {
		return core.Lesson{}, err
	}
	if err := s.backend.SaveLesson(ctx, lesson); err != nil {
		return core.Lesson{}, fmt.Errorf("save lesson: %w", err)
	}
	s.publish(ctx, lesson.ID, amqp.OpUpsert)
	return lesson, nil
}

// Update re-resolves price and cost and replaces the lesson.
func (s *LessonService) Update(ctx context.Context, id string, in LessonInput) (core.Lesson, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return core.Lesson{}, err
	}
	lesson, err := s.build(ctx, id, in)
	if err != nil {
		return core.Lesson{}, err
	}
	if err := s.backend.SaveLesson(ctx, lesson); err != nil {
		return core.Lesson{}, fmt.Errorf("save lesson: %w", err)
	}
	s.publish(ctx, id, amqp.OpUpsert)
	return lesson, nil
}

// ToggleInvoiced flips the invoiced flag. The snapshotted price and cost
// stay as they are.
func (s *LessonService) ToggleInvoiced(ctx context.Context, id string) (core.Lesson, error) {
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return core.Lesson{}, err
	}
	lesson.Invoiced = !lesson.Invoiced
	if err := s.backend.SaveLesson(ctx, lesson); err != nil {
		return core.Lesson{}, fmt.Errorf("save lesson: %w", err)
	}
	s.publish(ctx, id, amqp.OpUpsert)
	return lesson, nil
}

// Delete removes the lesson locally and propagates the deletion.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteLesson(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.OpDelete)
	return nil
}

func (s *LessonService) build(ctx context.Context, id string, in LessonInput) (core.Lesson, error) {
	settings, err := s.backend.LoadSettings(ctx)
	if err != nil {
		return core.Lesson{}, fmt.Errorf("load settings: %w", err)
	}
	sp, ok := settings.Sport(in.SportID)
	if !ok {
		return core.Lesson{}, core.ErrSportNotFound
	}
	if _, ok := sp.LessonType(in.LessonTypeID); !ok {
		return core.Lesson{}, core.ErrTypeNotFound
	}
	if _, ok := sp.Location(in.LocationID); !ok {
		return core.Lesson{}, core.ErrLocationNotFound
	}

	lesson := core.Lesson{
		ID:           id,
		Date:         in.Date,
		SportID:      in.SportID,
		LessonTypeID: in.LessonTypeID,
		LocationID:   in.LocationID,
		Price:        sp.Price(in.LessonTypeID),
		Cost:         sp.Cost(in.LocationID, in.LessonTypeID),
		Invoiced:     in.Invoiced,
	}
	if err := lesson.Validate(); err != nil {
		return core.Lesson{}, err
	}
	return lesson, nil
}

// publish is best-effort: a failed or absent queue never fails the local
// write, the pending scan recovers later.
func (s *LessonService) publish(ctx context.Context, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLessonSync(ctx, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "op", op, "error", err)
	}
}
