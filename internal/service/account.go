package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/logging"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

type AccountService struct {
	accounts accountRepo
}

func NewAccountService(accounts accountRepo) *AccountService {
	return &AccountService{accounts: accounts}
}

// Open creates an account with its seed ledger record. Every account starts
// life with a record at index 0 holding the opening balance, so the ledger is
// never empty and the transaction core always has a last record to chain from.
func (s *AccountService) Open(ctx context.Context, userID uuid.UUID, name string, openingBalance int64) (*domain.Account, error) {
	if openingBalance < 0 {
		return nil, fmt.Errorf("Open: %w", domain.ErrInvalidAmount)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Records: []domain.AccountRecord{
			{
				RecordIndex: 0,
				Balance:     openingBalance,
				Action:      domain.ActionDeposit,
				OccurredAt:  now,
			},
		},
		CreatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	logging.FromContext(ctx).Info("account opened",
		"account_id", account.ID,
		"user_id", userID,
		"opening_balance", openingBalance,
	)

	return account, nil
}

// GetForUser returns the account with its full ledger. An account owned by a
// different user is reported as not found rather than forbidden.
func (s *AccountService) GetForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetForUser: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetForUser: %w", err)
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("GetForUser: %w", domain.ErrAccountNotFound)
	}
	return account, nil
}
