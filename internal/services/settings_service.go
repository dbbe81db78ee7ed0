package services

import (
	"context"
	"fmt"

	"lezioni/internal/core"
)

// SettingsService applies whole-document settings edits. Every mutation
// goes through a SettingsEditor so referential integrity against stored
// lessons is enforced in one place.
type SettingsService struct {
	backend Store
}

func NewSettingsService(backend Store) *SettingsService {
	return &SettingsService{backend: backend}
}

// Get returns the current settings document.
func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	return s.backend.LoadSettings(ctx)
}

// Apply loads the settings and lessons, runs the mutation against an
// editor, and saves the resulting document when the mutation succeeds.
func (s *SettingsService) Apply(ctx context.Context, mutate func(ed *core.SettingsEditor, lessons []core.Lesson) error) (core.Settings, error) {
	settings, err := s.backend.LoadSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	lessons, err := s.backend.ListLessons(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("list lessons: %w", err)
	}

	ed := core.NewSettingsEditor(settings)
	if err := mutate(ed, lessons); err != nil {
		return core.Settings{}, err
	}

	edited := ed.Settings()
	if err := s.backend.SaveSettings(ctx, edited); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return edited, nil
}
