package domain

import "time"

type Action string

const (
	ActionDeposit    Action = "DEPOSIT"
	ActionWithdrawal Action = "WITHDRAWAL"
)

func (a Action) IsValid() bool {
	return a == ActionDeposit || a == ActionWithdrawal
}

// AccountRecord is one immutable ledger entry. Balance is the account balance
// immediately after the record is applied, not a delta.
type AccountRecord struct {
	RecordIndex int64
	Balance     int64
	Action      Action
	OccurredAt  time.Time
}
