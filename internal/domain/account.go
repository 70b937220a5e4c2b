package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account owns an append-only ledger of records. The last record is the source
// of truth for the current balance; records are never mutated in place.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Records   []AccountRecord
	CreatedAt time.Time
}

// Balance returns the balance snapshot of the last ledger record. Accounts are
// created with a seed record, so an empty ledger is a programming error.
func (a *Account) Balance() (int64, error) {
	last, err := a.LastRecord()
	if err != nil {
		return 0, err
	}
	return last.Balance, nil
}

func (a *Account) LastRecord() (AccountRecord, error) {
	if len(a.Records) == 0 {
		return AccountRecord{}, fmt.Errorf("LastRecord: account %s: %w", a.ID, ErrEmptyLedger)
	}
	return a.Records[len(a.Records)-1], nil
}

// Apply validates and appends a new ledger record in memory. It does not
// persist anything; committing the appended record is the unit of work's job.
func (a *Account) Apply(action Action, amount int64) (AccountRecord, error) {
	if amount <= 0 {
		return AccountRecord{}, fmt.Errorf("Apply: %w", ErrInvalidAmount)
	}
	if !action.IsValid() {
		return AccountRecord{}, fmt.Errorf("Apply: %q: %w", action, ErrInvalidAction)
	}

	last, err := a.LastRecord()
	if err != nil {
		return AccountRecord{}, fmt.Errorf("Apply: %w", err)
	}

	newBalance := last.Balance
	switch action {
	case ActionDeposit:
		newBalance += amount
	case ActionWithdrawal:
		newBalance -= amount
		if newBalance < 0 {
			return AccountRecord{}, fmt.Errorf("Apply: %w", ErrInsufficientFunds)
		}
	}

	record := AccountRecord{
		RecordIndex: last.RecordIndex + 1,
		Balance:     newBalance,
		Action:      action,
		OccurredAt:  time.Now().UTC(),
	}
	a.Records = append(a.Records, record)
	return record, nil
}
