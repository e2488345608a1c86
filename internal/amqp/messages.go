package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DatasetReloadMessage asks every consumer to rebuild its dataset from the
// configured source. It carries no data; the source is re-read in full.
type DatasetReloadMessage struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	ImportID  string    `json:"import_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetReloadMessage creates a reload message with a fresh ID.
func NewDatasetReloadMessage(reason, importID string) *DatasetReloadMessage {
	return &DatasetReloadMessage{
		ID:        uuid.NewString(),
		Reason:    reason,
		ImportID:  importID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetReloadMessageFromJSON creates a message from JSON bytes
func DatasetReloadMessageFromJSON(data []byte) (*DatasetReloadMessage, error) {
	var msg DatasetReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
