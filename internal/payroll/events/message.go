// Package events publishes the ledger's committed events to Kafka and
// consumes them back for indexers.
package events

import (
	"encoding/json"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/google/uuid"
)

// Message is the Kafka value of one ledger event.
type Message struct {
	ID        uuid.UUID        `json:"id"`
	Seq       uint64           `json:"seq"`
	Type      models.EventType `json:"type"`
	CompanyID *uint64          `json:"company_id,omitempty"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewMessage(ev *models.Event) Message {
	return Message{
		ID:        ev.ID,
		Seq:       ev.Seq,
		Type:      ev.Type,
		CompanyID: ev.CompanyID,
		Payload:   ev.Payload,
		CreatedAt: ev.CreatedAt,
	}
}

func (m Message) Event() *models.Event {
	return &models.Event{
		ID:        m.ID,
		Seq:       m.Seq,
		Type:      m.Type,
		CompanyID: m.CompanyID,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt,
	}
}
