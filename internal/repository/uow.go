package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

// UnitOfWork is the transactional view the transaction service works through:
// card and account lookups plus a commit that appends the account's newest
// ledger record with a compare-and-swap check on the last stored index.
type UnitOfWork struct {
	accounts *AccountRepository
	cards    *CardRepository
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{
		accounts: NewAccountRepository(db),
		cards:    NewCardRepository(db),
	}
}

func (u *UnitOfWork) FindCard(ctx context.Context, cardNum string) (*domain.Card, error) {
	card, err := u.cards.GetByNum(ctx, cardNum)
	if err != nil {
		return nil, fmt.Errorf("FindCard: %w", err)
	}
	return card, nil
}

func (u *UnitOfWork) FindAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := u.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("FindAccount: %w", err)
	}
	return account, nil
}

// Commit persists the account's last in-memory record. The write only lands if
// the stored ledger still ends at expectedLastIndex; otherwise the commit
// fails with domain.ErrHistoryConflict and the stored state is untouched. No
// lock is held between the read and this write.
func (u *UnitOfWork) Commit(ctx context.Context, account *domain.Account, expectedLastIndex int64) error {
	record, err := account.LastRecord()
	if err != nil {
		return fmt.Errorf("Commit: %w", err)
	}
	if err := u.accounts.AppendRecord(ctx, account.ID, record, expectedLastIndex); err != nil {
		return fmt.Errorf("Commit: %w", err)
	}
	return nil
}
