package backend

import (
	"context"

	"lezioni/internal/services"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the assembled backend. Publisher is nil for backends
// that run without a sync queue.
type Result struct {
	Store     services.Store
	Publisher services.SyncPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds everything needed to assemble a backend.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleLessonSheetName string
	GoogleSettingsSheet   string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Memory backend specific
	SeedDemoData bool
}

// Type selects the storage backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
