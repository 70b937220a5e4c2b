package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/auth"
	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

type cardReader interface {
	GetByNum(ctx context.Context, cardNum string) (*domain.Card, error)
}

type sessionIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type SessionHandler struct {
	cards    cardReader
	sessions sessionIssuer
}

func NewSessionHandler(cards cardReader, sessions sessionIssuer) *SessionHandler {
	return &SessionHandler{cards: cards, sessions: sessions}
}

type createSessionRequest struct {
	CardNum string `json:"card_num"`
	PIN     string `json:"pin"`
}

func (r createSessionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CardNum == "" {
		errs = append(errs, FieldError{Field: "card_num", Message: "required"})
	}
	if r.PIN == "" {
		errs = append(errs, FieldError{Field: "pin", Message: "required"})
	}
	return errs
}

type createSessionResponse struct {
	SessionKey string `json:"session_key"`
}

// Create handles POST /api/v1/sessions: card number plus PIN in, opaque
// session key out. A missing card and a wrong PIN are indistinguishable to the
// caller.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	card, err := h.cards.GetByNum(r.Context(), req.CardNum)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	if err := auth.VerifyPIN(card.PinSaltHash, req.PIN); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	sessionKey, err := h.sessions.Issue(card.UserID)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusCreated, createSessionResponse{SessionKey: sessionKey})
}
