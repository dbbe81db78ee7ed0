package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sync operations carried by queue messages.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// LessonSyncMessage is a lightweight pointer to a lesson mutation. For
// upserts the worker fetches the current row from the database; deletes
// carry everything the worker needs in the ID itself.
type LessonSyncMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLessonSyncMessage creates a sync message for the given lesson and
// operation.
func NewLessonSyncMessage(id, op string) *LessonSyncMessage {
	return &LessonSyncMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages a worker could not act on.
func (m *LessonSyncMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("sync message missing lesson id")
	}
	switch m.Op {
	case OpUpsert, OpDelete:
		return nil
	}
	return fmt.Errorf("unknown sync operation %q", m.Op)
}

// ToJSON converts the message to JSON bytes
func (m *LessonSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LessonSyncMessageFromJSON creates a message from JSON bytes
func LessonSyncMessageFromJSON(data []byte) (*LessonSyncMessage, error) {
	var msg LessonSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
