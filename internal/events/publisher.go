package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

// TransactionCompleted is emitted after a ledger record is durably committed.
type TransactionCompleted struct {
	AccountID   uuid.UUID     `json:"account_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Action      domain.Action `json:"action"`
	Amount      int64         `json:"amount"`
	RecordIndex int64         `json:"record_index"`
	Balance     int64         `json:"balance"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event TransactionCompleted) error
}

// NopPublisher drops events. Used when no broker is configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event TransactionCompleted) error { return nil }
