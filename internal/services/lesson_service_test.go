package services

import (
	"context"
	"errors"
	"testing"

	"lezioni/internal/core"
	"lezioni/internal/store"
	"lezioni/internal/store/memory"
)

type recordingPublisher struct {
	calls []string
	fail  bool
}

func (p *recordingPublisher) PublishLessonSync(_ context.Context, id, op string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.calls = append(p.calls, op+":"+id)
	return nil
}

func newService(pub SyncPublisher) *LessonService {
	return NewLessonService(memory.New(), pub)
}

func input(day int) LessonInput {
	return LessonInput{
		Date:         core.NewDate(2024, 5, day),
		SportID:      "tennis",
		LessonTypeID: "t-single",
		LocationID:   "sede-a",
		Invoiced:     true,
	}
}

func TestCreateResolvesPricing(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	lesson, err := svc.Create(ctx, input(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lesson.ID == "" {
		t.Fatal("expected generated id")
	}
	// Default settings: single tennis lesson 30.00, sede-a cost 10.00.
	if lesson.Price.Cents != 3000 || lesson.Cost.Cents != 1000 {
		t.Fatalf("pricing snapshot: %+v", lesson)
	}

	stored, err := svc.Get(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored != lesson {
		t.Fatalf("stored mismatch: %+v", stored)
	}
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	in := input(3)
	in.SportID = "missing"
	if _, err := svc.Create(ctx, in); !errors.Is(err, core.ErrSportNotFound) {
		t.Fatalf("expected ErrSportNotFound, got %v", err)
	}

	in = input(3)
	in.LessonTypeID = "p-group" // belongs to padel, not tennis
	if _, err := svc.Create(ctx, in); !errors.Is(err, core.ErrTypeNotFound) {
		t.Fatalf("expected ErrTypeNotFound, got %v", err)
	}

	in = input(3)
	in.LocationID = "padel-center"
	if _, err := svc.Create(ctx, in); !errors.Is(err, core.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestUpdateReResolvesPricing(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	lesson, err := svc.Create(ctx, input(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := input(3)
	in.LessonTypeID = "t-group"
	in.LocationID = "sede-b"
	in.Invoiced = false
	updated, err := svc.Update(ctx, lesson.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price.Cents != 6000 || updated.Cost.Cents != 2000 {
		t.Fatalf("re-resolved pricing: %+v", updated)
	}
	if updated.Invoiced {
		t.Fatal("invoiced flag not updated")
	}

	if _, err := svc.Update(ctx, "missing", input(3)); !errors.Is(err, store.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestToggleInvoicedKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	svc := NewLessonService(backend, nil)

	lesson, err := svc.Create(ctx, input(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Change the configured price afterwards; the toggle must not pick
	// it up.
	settings, _ := backend.LoadSettings(ctx)
	settings.Sports[0].Prices["t-single"] = core.Money{Cents: 9999}
	if err := backend.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	toggled, err := svc.ToggleInvoiced(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Invoiced {
		t.Fatal("expected flag flipped to false")
	}
	if toggled.Price.Cents != 3000 {
		t.Fatalf("snapshot price changed: %d", toggled.Price.Cents)
	}
}

func TestDeletePublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := newService(pub)

	lesson, err := svc.Create(ctx, input(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, lesson.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, lesson.ID); !errors.Is(err, store.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}

	want := []string{"upsert:" + lesson.ID, "delete:" + lesson.ID}
	if len(pub.calls) != 2 || pub.calls[0] != want[0] || pub.calls[1] != want[1] {
		t.Fatalf("published %v, want %v", pub.calls, want)
	}
}

func TestPublisherFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc := newService(&recordingPublisher{fail: true})

	lesson, err := svc.Create(ctx, input(3))
	if err != nil {
		t.Fatalf("create must succeed despite broker failure: %v", err)
	}
	if _, err := svc.Get(ctx, lesson.ID); err != nil {
		t.Fatalf("lesson must be stored locally: %v", err)
	}
}
