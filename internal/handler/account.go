package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/logging"
)

type accountService interface {
	Open(ctx context.Context, userID uuid.UUID, name string, openingBalance int64) (*domain.Account, error)
	GetForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)
}

type sessionResolver interface {
	Resolve(sessionKey string) (uuid.UUID, error)
}

type AccountHandler struct {
	accounts accountService
	sessions sessionResolver
}

func NewAccountHandler(accounts accountService, sessions sessionResolver) *AccountHandler {
	return &AccountHandler{accounts: accounts, sessions: sessions}
}

type openAccountRequest struct {
	Name           string `json:"name"`
	OpeningBalance int64  `json:"opening_balance"`
}

func (r openAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.OpeningBalance < 0 {
		errs = append(errs, FieldError{Field: "opening_balance", Message: "must not be negative"})
	}
	return errs
}

func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.resolveSession(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.Open(r.Context(), userID, req.Name, req.OpeningBalance)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to open account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.resolveSession(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	account, err := h.accounts.GetForUser(r.Context(), accountID, userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) resolveSession(r *http.Request) (uuid.UUID, *AppError) {
	sessionKey, appErr := bearerToken(r)
	if appErr != nil {
		return uuid.Nil, appErr
	}
	userID, err := h.sessions.Resolve(sessionKey)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return userID, nil
}
