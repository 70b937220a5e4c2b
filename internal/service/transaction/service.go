package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/events"
)

type unitOfWork interface {
	FindCard(ctx context.Context, cardNum string) (*domain.Card, error)
	FindAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	Commit(ctx context.Context, account *domain.Account, expectedLastIndex int64) error
}

type sessionResolver interface {
	Resolve(sessionKey string) (uuid.UUID, error)
}

type Service struct {
	uow      unitOfWork
	sessions sessionResolver
	events   events.Publisher
}

func NewService(uow unitOfWork, sessions sessionResolver, publisher events.Publisher) *Service {
	return &Service{
		uow:      uow,
		sessions: sessions,
		events:   publisher,
	}
}
