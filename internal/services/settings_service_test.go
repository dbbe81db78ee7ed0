package services

import (
	"context"
	"errors"
	"testing"

	"lezioni/internal/core"
	"lezioni/internal/store/memory"
)

func TestApplyPersistsEdits(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	svc := NewSettingsService(backend)

	edited, err := svc.Apply(ctx, func(ed *core.SettingsEditor, _ []core.Lesson) error {
		return ed.SetTaxRate(22)
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if edited.TaxRate != 22 {
		t.Fatalf("returned document: %v", edited.TaxRate)
	}

	stored, _ := backend.LoadSettings(ctx)
	if stored.TaxRate != 22 {
		t.Fatalf("persisted document: %v", stored.TaxRate)
	}
}

func TestApplyFailedMutationDoesNotSave(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	lessonSvc := NewLessonService(backend, nil)
	svc := NewSettingsService(backend)

	if _, err := lessonSvc.Create(ctx, LessonInput{
		Date: core.NewDate(2024, 5, 3), SportID: "tennis",
		LessonTypeID: "t-single", LocationID: "sede-a",
	}); err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	// Removing a referenced sport fails and must leave the document
	// untouched.
	_, err := svc.Apply(ctx, func(ed *core.SettingsEditor, lessons []core.Lesson) error {
		return ed.RemoveSport("tennis", lessons)
	})
	if !errors.Is(err, core.ErrSportInUse) {
		t.Fatalf("expected ErrSportInUse, got %v", err)
	}

	stored, _ := backend.LoadSettings(ctx)
	if _, ok := stored.Sport("tennis"); !ok {
		t.Fatal("tennis must survive the failed removal")
	}
}

func TestApplyEnforcesIntegrityAgainstStoredLessons(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	svc := NewSettingsService(backend)

	// No lessons reference padel, so removal goes through.
	edited, err := svc.Apply(ctx, func(ed *core.SettingsEditor, lessons []core.Lesson) error {
		return ed.RemoveSport("padel", lessons)
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := edited.Sport("padel"); ok {
		t.Fatal("padel should be removed")
	}
}
