// Package worker mirrors the local SQLite lesson store to the remote
// spreadsheet. Queue messages drive the fast path; a periodic pending
// scan recovers anything the queue lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lezioni/internal/amqp"
	"lezioni/internal/core"
	"lezioni/internal/storage"
	"lezioni/internal/store"
)

// SyncWorker pushes lesson mutations from SQLite to the remote store.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    store.LessonWriter
	batchSize int
}

func NewSyncWorker(repo *storage.SQLiteRepository, remote store.LessonWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   repo,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single lesson sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LessonSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	if msg.Op == amqp.OpDelete {
		return w.deleteRemote(ctx, msg.ID)
	}

	lesson, err := w.storage.GetLesson(ctx, msg.ID)
	if errors.Is(err, store.ErrLessonNotFound) {
		// Deleted locally before the upsert message arrived; converge on
		// the delete.
		slog.WarnContext(ctx, "Lesson vanished before sync, deleting remote copy", "id", msg.ID)
		return w.deleteRemote(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get lesson from storage: %w", err)
	}

	return w.mirrorLesson(ctx, lesson)
}

// ProcessPendingLessons pushes lessons the queue missed. This is the
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingLessons(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncLessons(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending lessons: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending lessons", "count", len(pending))

	for _, p := range pending {
		if err := w.mirrorLesson(ctx, p.Lesson); err != nil {
			slog.ErrorContext(ctx, "Failed to sync lesson", "id", p.Lesson.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup,
// recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncLessons(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending lessons for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending lessons found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending lessons on startup, processing...", "count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.mirrorLesson(ctx, p.Lesson); err != nil {
			slog.ErrorContext(ctx, "Failed to sync lesson during startup", "id", p.Lesson.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) mirrorLesson(ctx context.Context, lesson core.Lesson) error {
	if err := w.remote.SaveLesson(ctx, lesson); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, lesson.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", lesson.ID, "error", markErr)
		}
		return fmt.Errorf("save lesson to remote store: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, lesson.ID); err != nil {
		// The sync itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", lesson.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced lesson",
		"id", lesson.ID,
		"date", lesson.Date.ISO(),
		"profit_cents", lesson.Profit().Cents)
	return nil
}

func (w *SyncWorker) deleteRemote(ctx context.Context, id string) error {
	err := w.remote.DeleteLesson(ctx, id)
	if errors.Is(err, store.ErrLessonNotFound) {
		slog.InfoContext(ctx, "Lesson already absent from remote store", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete lesson from remote store: %w", err)
	}
	slog.InfoContext(ctx, "Successfully deleted lesson from remote store", "id", id)
	return nil
}
