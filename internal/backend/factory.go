package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lezioni/internal/amqp"
	"lezioni/internal/core"
	"lezioni/internal/services"
	"lezioni/internal/storage"
	gstore "lezioni/internal/store/google"
	"lezioni/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// The AMQP client is optional: without it writes stay flagged pending
	// until the worker's periodic scan picks them up.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		return repo.Close()
	}

	return &Result{
		Store:     repo,
		Publisher: publisher,
		Cleanup:   cleanup,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	cli, err := gstore.New(ctx, gstore.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		LessonSheet:     config.GoogleLessonSheetName,
		SettingsSheet:   config.GoogleSettingsSheet,
		CredentialsFile: config.GoogleCredentialsFile,
		CredentialsJSON: config.GoogleCredentialsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"lesson_sheet", config.GoogleLessonSheetName)

	return &Result{
		Store:   cli,
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	var store *memory.Store
	if config.SeedDemoData {
		store = memory.NewWithLessons(DemoLessons(time.Now()))
	} else {
		store = memory.New()
	}

	f.logger.Info("Initialized memory backend", "demo_seed", config.SeedDemoData)

	return &Result{
		Store:   store,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

// DemoLessons builds a deterministic demo dataset spread over the current
// and the two preceding months. Prices and costs come from the default
// settings document so the dashboard figures add up.
func DemoLessons(now time.Time) []core.Lesson {
	settings := core.DefaultSettings()

	type seed struct {
		monthsAgo int
		day       int
		sportID   string
		typeID    string
		locID     string
		invoiced  bool
	}
	seeds := []seed{
		{0, 2, "tennis", "t-single", "sede-a", true},
		{0, 3, "tennis", "t-group", "sede-a", true},
		{0, 5, "tennis", "t-double", "sede-b", false},
		{0, 9, "padel", "p-group", "padel-center", true},
		{0, 12, "padel", "p-double", "padel-center", false},
		{1, 4, "tennis", "t-single", "sede-a", true},
		{1, 8, "tennis", "t-single", "sede-b", true},
		{1, 15, "tennis", "t-group", "sede-b", false},
		{1, 20, "padel", "p-group", "padel-center", true},
		{2, 6, "tennis", "t-double", "sede-a", true},
		{2, 11, "padel", "p-double", "padel-center", true},
		{2, 18, "tennis", "t-group", "sede-a", false},
	}

	// Anchor at the first of the current month before stepping back:
	// AddDate from day 29-31 normalizes into the wrong month.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	lessons := make([]core.Lesson, 0, len(seeds))
	for i, s := range seeds {
		month := anchor.AddDate(0, -s.monthsAgo, 0)
		sp, _ := settings.Sport(s.sportID)
		lessons = append(lessons, core.Lesson{
			ID:           fmt.Sprintf("demo-%02d", i+1),
			Date:         core.NewDate(month.Year(), int(month.Month()), s.day),
			SportID:      s.sportID,
			LessonTypeID: s.typeID,
			LocationID:   s.locID,
			Price:        sp.Price(s.typeID),
			Cost:         sp.Cost(s.locID, s.typeID),
			Invoiced:     s.invoiced,
		})
	}
	return lessons
}
