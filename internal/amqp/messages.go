package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"warikan/internal/core"
)

// Reasons attached to recompute messages.
const (
	ReasonAdvanceChanged = "advance_changed"
	ReasonRefresh        = "refresh"
	ReasonManual         = "manual"
)

// SettlementRecomputeMessage asks the worker to recompute and record the
// settlement of one month. The ID makes redelivery idempotent.
type SettlementRecomputeMessage struct {
	ID        uuid.UUID `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSettlementRecomputeMessage(p core.Period, reason string) *SettlementRecomputeMessage {
	return &SettlementRecomputeMessage{
		ID:        uuid.New(),
		Year:      p.Year,
		Month:     p.Month,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Period returns the validated month the message refers to.
func (m *SettlementRecomputeMessage) Period() (core.Period, error) {
	return core.NewPeriod(m.Year, m.Month)
}

func (m *SettlementRecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SettlementRecomputeMessageFromJSON decodes and validates a message body.
func SettlementRecomputeMessageFromJSON(data []byte) (*SettlementRecomputeMessage, error) {
	var msg SettlementRecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		return nil, fmt.Errorf("message without id")
	}
	if _, err := msg.Period(); err != nil {
		return nil, err
	}
	return &msg, nil
}
