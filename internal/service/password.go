package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	passwordHashCost = 10
	// bcrypt ignora (o rechaza) lo que pase de 72 bytes.
	maxPasswordBytes = 72
)

// PasswordHasher genera y verifica hashes bcrypt limitando el trabajo concurrente.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher crea un hasher; concurrency <= 0 usa GOMAXPROCS.
func NewPasswordHasher(concurrency int) *PasswordHasher {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost: passwordHashCost,
		sem:  semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash devuelve un hash con sal aleatoria y costo embebidos.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password is too long", ErrValidation)
	}
	release, err := h.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return "", err
	}
	return string(hashBytes), nil
}

// Verify compara en tiempo constante; un mismatch es false sin error.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, storedHash string) (bool, error) {
	if plaintext == "" || storedHash == "" {
		return false, nil
	}
	release, err := h.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	err = bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, err
	}
}

func (h *PasswordHasher) acquire(ctx context.Context) (func(), error) {
	if h.sem == nil {
		return func() {}, nil
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { h.sem.Release(1) }, nil
}
