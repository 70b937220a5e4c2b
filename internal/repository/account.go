package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

const recordColumns = `record_index, balance, action, occurred_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByID loads the account together with its full ledger, ordered by record
// index.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM accounts WHERE id = $1`, id,
	)

	var a domain.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	records, err := r.recordsByAccountID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	a.Records = records
	return &a, nil
}

// Create persists a new account and its seed ledger records in one
// transaction. Account opening happens outside the transaction core, but the
// core relies on every stored account carrying at least one record.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		account.ID, account.UserID, account.Name, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	for _, rec := range account.Records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO account_records (account_id, record_index, balance, action, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			account.ID, rec.RecordIndex, rec.Balance, rec.Action, rec.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("Create: record %d: %w", rec.RecordIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: commit: %w", err)
	}
	return nil
}

// AppendRecord persists one new ledger record, but only if the stored ledger
// still ends at expectedLastIndex. A writer that lost the race gets
// domain.ErrHistoryConflict and writes nothing. The composite primary key on
// (account_id, record_index) backstops the guard: two winners on the same
// index are impossible.
func (r *AccountRepository) AppendRecord(ctx context.Context, accountID uuid.UUID, record domain.AccountRecord, expectedLastIndex int64) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO account_records (account_id, record_index, balance, action, occurred_at)
		 SELECT $1, $2, $3, $4, $5
		 WHERE (SELECT MAX(record_index) FROM account_records WHERE account_id = $1) = $6`,
		accountID, record.RecordIndex, record.Balance, record.Action, record.OccurredAt,
		expectedLastIndex,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("AppendRecord: %w", domain.ErrHistoryConflict)
		}
		return fmt.Errorf("AppendRecord: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("AppendRecord: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("AppendRecord: %w", domain.ErrHistoryConflict)
	}
	return nil
}

func (r *AccountRepository) recordsByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.AccountRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM account_records
		 WHERE account_id = $1 ORDER BY record_index`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("recordsByAccountID: %w", err)
	}
	defer rows.Close()

	var records []domain.AccountRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("recordsByAccountID: scan: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recordsByAccountID: rows: %w", err)
	}
	return records, nil
}

func scanRecord(s scanner) (*domain.AccountRecord, error) {
	var rec domain.AccountRecord
	err := s.Scan(&rec.RecordIndex, &rec.Balance, &rec.Action, &rec.OccurredAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
