// Package memory is the demo backend: a mutex-guarded in-process store
// seeded with the default settings document. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"lezioni/internal/core"
	"lezioni/internal/store"
)

type Store struct {
	mu       sync.Mutex
	lessons  []core.Lesson
	settings core.Settings
}

// New returns a store seeded with the default settings document.
func New() *Store {
	return &Store{settings: core.DefaultSettings()}
}

// NewWithLessons seeds the store with demo lessons on top of the default
// settings. Invalid seed lessons are skipped.
func NewWithLessons(lessons []core.Lesson) *Store {
	s := New()
	for _, l := range lessons {
		if err := l.Validate(); err != nil {
			continue
		}
		s.lessons = append(s.lessons, l)
	}
	return s
}

func (s *Store) SaveLesson(_ context.Context, l core.Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lessons {
		if s.lessons[i].ID == l.ID {
			s.lessons[i] = l
			return nil
		}
	}
	s.lessons = append(s.lessons, l)
	return nil
}

func (s *Store) DeleteLesson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lessons {
		if s.lessons[i].ID == id {
			s.lessons = append(s.lessons[:i], s.lessons[i+1:]...)
			return nil
		}
	}
	return store.ErrLessonNotFound
}

// ListLessons returns a copy; callers filter and aggregate on it freely.
func (s *Store) ListLessons(_ context.Context) ([]core.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Lesson, len(s.lessons))
	copy(out, s.lessons)
	return out, nil
}

func (s *Store) LoadSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone(), nil
}

func (s *Store) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Normalize()
	return nil
}
