package transaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/events"
)

type fakeSessions struct {
	sessions map[string]uuid.UUID
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]uuid.UUID)}
}

func (f *fakeSessions) set(userID uuid.UUID) string {
	key := uuid.NewString()
	f.sessions[key] = userID
	return key
}

func (f *fakeSessions) Resolve(sessionKey string) (uuid.UUID, error) {
	userID, ok := f.sessions[sessionKey]
	if !ok {
		return uuid.Nil, fmt.Errorf("Resolve: %w", domain.ErrInvalidSession)
	}
	return userID, nil
}

// fakeUnitOfWork keeps stored state separate from the copies it hands out, so
// tests can assert that failed actions never leak into storage.
type fakeUnitOfWork struct {
	cards      map[string]*domain.Card
	accounts   map[uuid.UUID]*domain.Account
	failCommit bool

	cardLookups    int
	accountLookups int
	commits        int
}

func newFakeUnitOfWork(cards []*domain.Card, accounts []*domain.Account) *fakeUnitOfWork {
	uow := &fakeUnitOfWork{
		cards:    make(map[string]*domain.Card),
		accounts: make(map[uuid.UUID]*domain.Account),
	}
	for _, c := range cards {
		uow.cards[c.CardNum] = c
	}
	for _, a := range accounts {
		uow.accounts[a.ID] = a
	}
	return uow
}

func (f *fakeUnitOfWork) FindCard(ctx context.Context, cardNum string) (*domain.Card, error) {
	f.cardLookups++
	card, ok := f.cards[cardNum]
	if !ok {
		return nil, fmt.Errorf("FindCard: %w", domain.ErrNotFound)
	}
	return card, nil
}

func (f *fakeUnitOfWork) FindAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	f.accountLookups++
	stored, ok := f.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("FindAccount: %w", domain.ErrNotFound)
	}
	copied := *stored
	copied.Records = append([]domain.AccountRecord(nil), stored.Records...)
	return &copied, nil
}

func (f *fakeUnitOfWork) Commit(ctx context.Context, account *domain.Account, expectedLastIndex int64) error {
	f.commits++
	if f.failCommit {
		return fmt.Errorf("Commit: %w", domain.ErrHistoryConflict)
	}

	stored := f.accounts[account.ID]
	last, err := stored.LastRecord()
	if err != nil {
		return err
	}
	if last.RecordIndex != expectedLastIndex {
		return fmt.Errorf("Commit: %w", domain.ErrHistoryConflict)
	}

	record, err := account.LastRecord()
	if err != nil {
		return err
	}
	stored.Records = append(stored.Records, record)
	return nil
}

type capturingPublisher struct {
	published []events.TransactionCompleted
	err       error
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.TransactionCompleted) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

type fixture struct {
	svc       *Service
	uow       *fakeUnitOfWork
	publisher *capturingPublisher

	sessionKey string
	userID     uuid.UUID
	accountID  uuid.UUID
	cardNum    string
	lastIndex  int64
}

func setupAccountAction(t *testing.T, balance int64) *fixture {
	t.Helper()

	const cardNum = "1323"
	const lastIndex = int64(387)
	userID := uuid.New()

	sessions := newFakeSessions()
	sessionKey := sessions.set(userID)

	account := &domain.Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Test account",
		Records: []domain.AccountRecord{
			{
				RecordIndex: lastIndex,
				Balance:     balance,
				Action:      domain.ActionDeposit,
				OccurredAt:  time.Now().UTC(),
			},
		},
	}
	card := &domain.Card{CardNum: cardNum, UserID: userID, PinSaltHash: "something"}

	uow := newFakeUnitOfWork([]*domain.Card{card}, []*domain.Account{account})
	publisher := &capturingPublisher{}

	return &fixture{
		svc:        NewService(uow, sessions, publisher),
		uow:        uow,
		publisher:  publisher,
		sessionKey: sessionKey,
		userID:     userID,
		accountID:  account.ID,
		cardNum:    cardNum,
		lastIndex:  lastIndex,
	}
}

func (f *fixture) request() AccountActionRequest {
	return AccountActionRequest{
		SessionKey: f.sessionKey,
		AccountID:  f.accountID,
		CardNum:    f.cardNum,
	}
}

func (f *fixture) storedAccount() *domain.Account {
	return f.uow.accounts[f.accountID]
}

func TestAccountActionDeposit(t *testing.T) {
	tests := []struct {
		amount  int64
		balance int64
	}{
		{amount: 333, balance: 23223},
		{amount: 3581, balance: 0},
		{amount: 38467, balance: 38467},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d+%d", tc.balance, tc.amount), func(t *testing.T) {
			fx := setupAccountAction(t, tc.balance)

			req := fx.request()
			req.Action = domain.ActionDeposit
			req.Amount = tc.amount

			account, err := fx.svc.AccountAction(context.Background(), req)
			require.NoError(t, err)

			balance, err := account.Balance()
			require.NoError(t, err)
			assert.Equal(t, tc.balance+tc.amount, balance)

			last, err := account.LastRecord()
			require.NoError(t, err)
			assert.Equal(t, fx.lastIndex+1, last.RecordIndex)

			stored, err := fx.storedAccount().Balance()
			require.NoError(t, err)
			assert.Equal(t, tc.balance+tc.amount, stored, "committed state must match returned state")
		})
	}
}

func TestAccountActionWithdrawal(t *testing.T) {
	tests := []struct {
		amount  int64
		balance int64
	}{
		{amount: 333, balance: 23223},
		{amount: 9, balance: 10},
		{amount: 38467, balance: 38467},
		{amount: 1, balance: 1},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d-%d", tc.balance, tc.amount), func(t *testing.T) {
			fx := setupAccountAction(t, tc.balance)

			req := fx.request()
			req.Action = domain.ActionWithdrawal
			req.Amount = tc.amount

			account, err := fx.svc.AccountAction(context.Background(), req)
			require.NoError(t, err)

			balance, err := account.Balance()
			require.NoError(t, err)
			assert.Equal(t, tc.balance-tc.amount, balance)

			last, err := account.LastRecord()
			require.NoError(t, err)
			assert.Equal(t, fx.lastIndex+1, last.RecordIndex)
		})
	}
}

func TestAccountActionOverdraft(t *testing.T) {
	fx := setupAccountAction(t, 3289)

	req := fx.request()
	req.Action = domain.ActionWithdrawal
	req.Amount = 3290

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	stored := fx.storedAccount()
	assert.Len(t, stored.Records, 1, "stored ledger must be unchanged")
	balance, err := stored.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(3289), balance)
	assert.Zero(t, fx.uow.commits, "rejected action must never reach commit")
}

func TestAccountActionInvalidSession(t *testing.T) {
	fx := setupAccountAction(t, 0)

	req := fx.request()
	req.SessionKey = fx.sessionKey + "a"
	req.Action = domain.ActionDeposit
	req.Amount = 10

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidSession)

	assert.Zero(t, fx.uow.cardLookups, "session failure must precede card lookup")
	assert.Zero(t, fx.uow.accountLookups)
	assert.Len(t, fx.storedAccount().Records, 1)
}

func TestAccountActionInvalidCard(t *testing.T) {
	fx := setupAccountAction(t, 0)

	req := fx.request()
	req.CardNum = fx.cardNum + "1"
	req.Action = domain.ActionDeposit
	req.Amount = 10

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidCard)
	assert.Zero(t, fx.uow.accountLookups, "card failure must precede account lookup")
}

func TestAccountActionCardOwnedByAnotherUser(t *testing.T) {
	fx := setupAccountAction(t, 0)
	fx.uow.cards[fx.cardNum].UserID = uuid.New()

	req := fx.request()
	req.Action = domain.ActionDeposit
	req.Amount = 10

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidCard)
	assert.Zero(t, fx.uow.accountLookups)
}

func TestAccountActionAccountNotFound(t *testing.T) {
	fx := setupAccountAction(t, 0)

	req := fx.request()
	req.AccountID = uuid.New()
	req.Action = domain.ActionDeposit
	req.Amount = 10

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountActionInvalidAmount(t *testing.T) {
	for _, action := range []domain.Action{domain.ActionDeposit, domain.ActionWithdrawal} {
		t.Run(string(action), func(t *testing.T) {
			fx := setupAccountAction(t, 0)

			req := fx.request()
			req.Action = action
			req.Amount = -1

			_, err := fx.svc.AccountAction(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Len(t, fx.storedAccount().Records, 1)
		})
	}
}

func TestAccountActionInvalidAction(t *testing.T) {
	fx := setupAccountAction(t, 0)

	req := fx.request()
	req.Action = domain.Action("some")
	req.Amount = 1

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.Zero(t, fx.uow.commits)
}

func TestAccountActionCommitConflict(t *testing.T) {
	for _, action := range []domain.Action{domain.ActionDeposit, domain.ActionWithdrawal} {
		t.Run(string(action), func(t *testing.T) {
			fx := setupAccountAction(t, 1)
			fx.uow.failCommit = true

			req := fx.request()
			req.Action = action
			req.Amount = 1

			_, err := fx.svc.AccountAction(context.Background(), req)
			require.ErrorIs(t, err, domain.ErrHistoryConflict)

			stored := fx.storedAccount()
			assert.Len(t, stored.Records, 1, "losing writer must leave stored state untouched")
			balance, berr := stored.Balance()
			require.NoError(t, berr)
			assert.Equal(t, int64(1), balance)
			assert.Empty(t, fx.publisher.published, "no event for an uncommitted record")
		})
	}
}

func TestAccountActionPublishesEvent(t *testing.T) {
	fx := setupAccountAction(t, 23223)

	req := fx.request()
	req.Action = domain.ActionDeposit
	req.Amount = 333

	_, err := fx.svc.AccountAction(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, fx.publisher.published, 1)
	event := fx.publisher.published[0]
	assert.Equal(t, fx.accountID, event.AccountID)
	assert.Equal(t, fx.userID, event.UserID)
	assert.Equal(t, domain.ActionDeposit, event.Action)
	assert.Equal(t, int64(333), event.Amount)
	assert.Equal(t, fx.lastIndex+1, event.RecordIndex)
	assert.Equal(t, int64(23556), event.Balance)
}

func TestAccountActionPublishFailureDoesNotFailTransaction(t *testing.T) {
	fx := setupAccountAction(t, 100)
	fx.publisher.err = errors.New("broker unavailable")

	req := fx.request()
	req.Action = domain.ActionWithdrawal
	req.Amount = 100

	account, err := fx.svc.AccountAction(context.Background(), req)
	require.NoError(t, err)

	balance, err := account.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "withdrawal to exactly zero is allowed")
}
