package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
	"github.com/dlimdlimdlim/bankcore/internal/logging"
	"github.com/dlimdlimdlim/bankcore/internal/service/transaction"
)

type transactionService interface {
	AccountAction(ctx context.Context, req transaction.AccountActionRequest) (*domain.Account, error)
}

type TransactionHandler struct {
	transactions transactionService
}

func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type accountActionRequest struct {
	Action  string `json:"action"`
	CardNum string `json:"card_num"`
	Amount  int64  `json:"amount"`
}

func (r accountActionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Action == "" {
		errs = append(errs, FieldError{Field: "action", Message: "required"})
	}
	if r.CardNum == "" {
		errs = append(errs, FieldError{Field: "card_num", Message: "required"})
	}
	if r.Amount == 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}
	return errs
}

type recordDTO struct {
	RecordIndex int64     `json:"record_index"`
	Balance     int64     `json:"balance"`
	Action      string    `json:"action"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type accountDTO struct {
	ID      uuid.UUID   `json:"id"`
	UserID  uuid.UUID   `json:"user_id"`
	Name    string      `json:"name"`
	Balance int64       `json:"balance"`
	Records []recordDTO `json:"records"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	records := make([]recordDTO, len(a.Records))
	for i, rec := range a.Records {
		records[i] = recordDTO{
			RecordIndex: rec.RecordIndex,
			Balance:     rec.Balance,
			Action:      string(rec.Action),
			OccurredAt:  rec.OccurredAt,
		}
	}

	dto := accountDTO{
		ID:      a.ID,
		UserID:  a.UserID,
		Name:    a.Name,
		Records: records,
	}
	if balance, err := a.Balance(); err == nil {
		dto.Balance = balance
	}
	return dto
}

// Create handles POST /api/v1/accounts/{id}/transactions. The session key is
// passed through to the transaction core untouched; the core owns session
// resolution.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sessionKey, appErr := bearerToken(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var req accountActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.transactions.AccountAction(r.Context(), transaction.AccountActionRequest{
		SessionKey: sessionKey,
		AccountID:  accountID,
		Action:     domain.Action(req.Action),
		CardNum:    req.CardNum,
		Amount:     req.Amount,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("account action rejected", "account_id", accountID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func bearerToken(r *http.Request) (string, *AppError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingSession
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", ErrInvalidSession
	}
	return token, nil
}
