package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/events"
	"github.com/dlimdlimdlim/bankcore/internal/logging"
	"github.com/dlimdlimdlim/bankcore/internal/obs"
)

type AccountActionRequest struct {
	SessionKey string
	AccountID  uuid.UUID
	Action     domain.Action
	CardNum    string
	Amount     int64
}

// AccountAction applies one deposit or withdrawal to an account: resolve the
// session, authorize the card, load the account, append the ledger record in
// memory, then commit it with an optimistic check against the last record
// index observed before the mutation. Every step short-circuits; a failure at
// any step leaves the stored account exactly as it was. Conflict detection is
// all the core does — retrying a lost race is the caller's decision.
func (s *Service) AccountAction(ctx context.Context, req AccountActionRequest) (*domain.Account, error) {
	account, err := s.accountAction(ctx, req)
	obs.ObserveTransaction(string(req.Action), outcome(err))
	return account, err
}

func (s *Service) accountAction(ctx context.Context, req AccountActionRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	userID, err := s.sessions.Resolve(req.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("AccountAction: %w", err)
	}

	card, err := s.uow.FindCard(ctx, req.CardNum)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("AccountAction: %w", domain.ErrInvalidCard)
		}
		return nil, fmt.Errorf("AccountAction: %w", err)
	}
	// A card held by someone else is no card at all from the caller's
	// perspective.
	if card.UserID != userID {
		return nil, fmt.Errorf("AccountAction: card owner mismatch: %w", domain.ErrInvalidCard)
	}

	account, err := s.uow.FindAccount(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("AccountAction: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("AccountAction: %w", err)
	}

	last, err := account.LastRecord()
	if err != nil {
		return nil, fmt.Errorf("AccountAction: %w", err)
	}
	expectedIndex := last.RecordIndex

	record, err := account.Apply(req.Action, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("AccountAction: %w", err)
	}

	if err := s.uow.Commit(ctx, account, expectedIndex); err != nil {
		return nil, fmt.Errorf("AccountAction: %w", err)
	}

	log.Info("account action committed",
		"account_id", account.ID,
		"user_id", userID,
		"action", req.Action,
		"amount", req.Amount,
		"record_index", record.RecordIndex,
		"balance", record.Balance,
	)

	// The record is durable at this point; a publish failure must not turn a
	// committed transaction into an error.
	event := events.TransactionCompleted{
		AccountID:   account.ID,
		UserID:      userID,
		Action:      record.Action,
		Amount:      req.Amount,
		RecordIndex: record.RecordIndex,
		Balance:     record.Balance,
		OccurredAt:  record.OccurredAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn("failed to publish transaction event", "account_id", account.ID, "error", err)
	}

	return account, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, domain.ErrHistoryConflict):
		return "conflict"
	default:
		return "rejected"
	}
}
