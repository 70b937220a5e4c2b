package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dlimdlimdlim/bankcore/internal/domain"
)

func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("HashPIN: %w", err)
	}
	return string(hash), nil
}

func VerifyPIN(pinSaltHash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(pinSaltHash), []byte(pin)); err != nil {
		return fmt.Errorf("VerifyPIN: %w", domain.ErrInvalidPIN)
	}
	return nil
}
