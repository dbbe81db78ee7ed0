package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lezioni/internal/core"
	"lezioni/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ store.LessonWriter  = (*SQLiteRepository)(nil)
	_ store.LessonLister  = (*SQLiteRepository)(nil)
	_ store.SettingsStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveLesson upserts the lesson and marks it pending for the sync worker.
func (r *SQLiteRepository) SaveLesson(ctx context.Context, l core.Lesson) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lessons (id, lesson_date, sport_id, lesson_type_id, location_id,
			price_cents, cost_cents, invoiced, sync_status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending', CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			lesson_date = excluded.lesson_date,
			sport_id = excluded.sport_id,
			lesson_type_id = excluded.lesson_type_id,
			location_id = excluded.location_id,
			price_cents = excluded.price_cents,
			cost_cents = excluded.cost_cents,
			invoiced = excluded.invoiced,
			sync_status = 'pending',
			updated_at = CURRENT_TIMESTAMP`,
		l.ID, l.Date.ISO(), l.SportID, l.LessonTypeID, l.LocationID,
		l.Price.Cents, l.Cost.Cents, boolToInt(l.Invoiced))
	if err != nil {
		return fmt.Errorf("save lesson: %w", err)
	}

	slog.InfoContext(ctx, "Lesson saved to SQLite",
		"id", l.ID,
		"date", l.Date.ISO(),
		"sport_id", l.SportID,
		"profit_cents", l.Profit().Cents,
		"invoiced", l.Invoiced)
	return nil
}

func (r *SQLiteRepository) DeleteLesson(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if n == 0 {
		return store.ErrLessonNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListLessons(ctx context.Context) ([]core.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lesson_date, sport_id, lesson_type_id, location_id,
			price_cents, cost_cents, invoiced
		FROM lessons
		ORDER BY lesson_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	out := make([]core.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return out, nil
}

// GetLesson retrieves a single lesson by ID.
func (r *SQLiteRepository) GetLesson(ctx context.Context, id string) (core.Lesson, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lesson_date, sport_id, lesson_type_id, location_id,
			price_cents, cost_cents, invoiced
		FROM lessons WHERE id = ?`, id)

	var (
		l        core.Lesson
		dateISO  string
		invoiced int
	)
	err := row.Scan(&l.ID, &dateISO, &l.SportID, &l.LessonTypeID, &l.LocationID,
		&l.Price.Cents, &l.Cost.Cents, &invoiced)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Lesson{}, store.ErrLessonNotFound
	}
	if err != nil {
		return core.Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	date, err := core.ParseDate(dateISO)
	if err != nil {
		return core.Lesson{}, fmt.Errorf("lesson %s: %w", l.ID, err)
	}
	l.Date = date
	l.Invoiced = invoiced != 0
	return l, nil
}

// LoadSettings returns the stored document, or the defaults when no row
// has been written yet.
func (r *SQLiteRepository) LoadSettings(ctx context.Context) (core.Settings, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	s, err := store.DecodeSettings([]byte(doc))
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	data, err := store.EncodeSettings(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, document, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`, string(data))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// PendingSyncLesson carries what the sync queue needs to mirror a lesson.
type PendingSyncLesson struct {
	Lesson    core.Lesson
	UpdatedAt time.Time
}

// GetPendingSyncLessons returns lessons not yet mirrored to the remote
// spreadsheet, oldest first.
func (r *SQLiteRepository) GetPendingSyncLessons(ctx context.Context, limit int) ([]PendingSyncLesson, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lesson_date, sport_id, lesson_type_id, location_id,
			price_cents, cost_cents, invoiced, updated_at
		FROM lessons
		WHERE sync_status = 'pending'
		ORDER BY updated_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync lessons: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncLesson
	for rows.Next() {
		var (
			l          core.Lesson
			dateISO    string
			invoiced   int
			updatedRaw string
		)
		if err := rows.Scan(&l.ID, &dateISO, &l.SportID, &l.LessonTypeID, &l.LocationID,
			&l.Price.Cents, &l.Cost.Cents, &invoiced, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan pending lesson: %w", err)
		}
		date, err := core.ParseDate(dateISO)
		if err != nil {
			return nil, fmt.Errorf("pending lesson %s: %w", l.ID, err)
		}
		l.Date = date
		l.Invoiced = invoiced != 0
		updatedAt, _ := time.Parse("2006-01-02 15:04:05", updatedRaw)
		out = append(out, PendingSyncLesson{Lesson: l, UpdatedAt: updatedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync lessons: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful mirror of the lesson.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lessons SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark lesson synced: %w", err)
	}
	slog.InfoContext(ctx, "Lesson marked as synced", "id", id)
	return nil
}

// MarkSyncError flags the lesson so operators can spot stuck mirrors.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE lessons SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark lesson sync error: %w", err)
	}
	slog.WarnContext(ctx, "Lesson marked with sync error", "id", id)
	return nil
}

func scanLesson(rows *sql.Rows) (core.Lesson, error) {
	var (
		l        core.Lesson
		dateISO  string
		invoiced int
	)
	if err := rows.Scan(&l.ID, &dateISO, &l.SportID, &l.LessonTypeID, &l.LocationID,
		&l.Price.Cents, &l.Cost.Cents, &invoiced); err != nil {
		return core.Lesson{}, fmt.Errorf("scan lesson: %w", err)
	}
	date, err := core.ParseDate(dateISO)
	if err != nil {
		return core.Lesson{}, fmt.Errorf("lesson %s: %w", l.ID, err)
	}
	l.Date = date
	l.Invoiced = invoiced != 0
	return l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
