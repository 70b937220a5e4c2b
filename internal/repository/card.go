package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

const cardColumns = `card_num, user_id, pin_salt_hash, created_at`

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) GetByNum(ctx context.Context, cardNum string) (*domain.Card, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE card_num = $1`, cardNum,
	)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNum: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByNum: %w", err)
	}
	return c, nil
}

func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (card_num, user_id, pin_salt_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		card.CardNum, card.UserID, card.PinSaltHash, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func scanCard(s scanner) (*domain.Card, error) {
	var c domain.Card
	err := s.Scan(&c.CardNum, &c.UserID, &c.PinSaltHash, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
