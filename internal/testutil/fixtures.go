package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

// SeedCard inserts a card bound to userID with the given PIN hashed at minimal
// cost.
func SeedCard(t *testing.T, db *sql.DB, cardNum string, userID uuid.UUID, pin string) *domain.Card {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}

	c := &domain.Card{
		CardNum:     cardNum,
		UserID:      userID,
		PinSaltHash: string(hash),
		CreatedAt:   time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO cards (card_num, user_id, pin_salt_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		c.CardNum, c.UserID, c.PinSaltHash, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed card %s: %v", cardNum, err)
	}
	return c
}

// SeedAccount inserts an account whose ledger holds a single seed record at
// lastIndex with the given balance, mirroring how accounts look mid-life.
func SeedAccount(t *testing.T, db *sql.DB, userID uuid.UUID, name string, balance, lastIndex int64) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.Account{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Records: []domain.AccountRecord{
			{RecordIndex: lastIndex, Balance: balance, Action: domain.ActionDeposit, OccurredAt: now},
		},
		CreatedAt: now,
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, a.UserID, a.Name, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}

	rec := a.Records[0]
	_, err = db.Exec(
		`INSERT INTO account_records (account_id, record_index, balance, action, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, rec.RecordIndex, rec.Balance, rec.Action, rec.OccurredAt,
	)
	if err != nil {
		t.Fatalf("seed account record: %v", err)
	}
	return a
}

func GetLastRecord(t *testing.T, db *sql.DB, accountID uuid.UUID) domain.AccountRecord {
	t.Helper()

	var rec domain.AccountRecord
	err := db.QueryRow(
		`SELECT record_index, balance, action, occurred_at FROM account_records
		 WHERE account_id = $1 ORDER BY record_index DESC LIMIT 1`, accountID,
	).Scan(&rec.RecordIndex, &rec.Balance, &rec.Action, &rec.OccurredAt)
	if err != nil {
		t.Fatalf("get last record for %s: %v", accountID, err)
	}
	return rec
}

func CountRecords(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM account_records WHERE account_id = $1`, accountID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count records for %s: %v", accountID, err)
	}
	return count
}
