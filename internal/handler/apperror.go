package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingSession     = &AppError{http.StatusUnauthorized, "MISSING_SESSION", "Authorization header required"}
	ErrInvalidSession     = &AppError{http.StatusUnauthorized, "INVALID_SESSION", "Session key is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid card number or PIN"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidCard       = &AppError{http.StatusUnprocessableEntity, "INVALID_CARD", "Card number is not valid for this user"}
	ErrAccountNotFound   = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrInvalidAmount     = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidAction     = &AppError{http.StatusBadRequest, "INVALID_ACTION", "Action must be DEPOSIT or WITHDRAWAL"}
	ErrInsufficientFunds = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Withdrawal would drive balance below zero"}
	ErrHistoryConflict   = &AppError{http.StatusConflict, "HISTORY_CONFLICT", "Account was modified concurrently, please retry"}
)
