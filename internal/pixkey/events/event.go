package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
)

// Type names a lifecycle transition.
type Type string

const (
	TypeCreated     Type = "pix_key.created"
	TypeAmended     Type = "pix_key.amended"
	TypeDeactivated Type = "pix_key.deactivated"
)

// Event is emitted after a lifecycle change is persisted. It carries a
// snapshot of the key so consumers never need to read back from the registry.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Type       Type           `json:"type"`
	KeyID      id.PixKeyID    `json:"key_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	RequestID  string         `json:"request_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Key        *models.PixKey `json:"key"`
}

// New snapshots key into an event of the given type.
func New(t Type, key *models.PixKey, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		KeyID:      key.ID,
		OccurredAt: occurredAt.UTC(),
		Key:        key.Clone(),
	}
}

// PartitionKey groups events for one key onto the same partition so consumers
// see its transitions in order.
func (e Event) PartitionKey() []byte {
	return []byte(e.KeyID.String())
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
