package domain

import (
	"time"

	"github.com/google/uuid"
)

type Card struct {
	CardNum     string
	UserID      uuid.UUID
	PinSaltHash string
	CreatedAt   time.Time
}
