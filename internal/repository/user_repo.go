package repository

import (
	"context"
	"errors"

	"secondchance-backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository define el contrato de persistencia para usuarios.
// El email es unico; los backends lo garantizan con un indice o constraint.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateByEmail(ctx context.Context, email string, patch domain.UserPatch) (domain.User, error)
	Ping(ctx context.Context) error
}
