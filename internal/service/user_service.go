package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"secondchance-backend/internal/domain"
	"secondchance-backend/internal/repository"
)

// UserService coordina registro, login y actualizacion de perfil.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	hasher  *PasswordHasher
	tokens  *JWTService
	regLock RegistrationLock
	now     func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher, tokens *JWTService, regLock RegistrationLock) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	if regLock == nil {
		regLock = NewMemoryRegistrationLock(registrationLockTTL)
	}
	return &UserService{
		logger:  logger,
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		regLock: regLock,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation error")
	ErrStoreUnavailable   = errors.New("store unavailable")
	errNotConfigured      = errors.New("user service not configured")
)

// AuthResult es el token emitido junto al registro que lo origino.
type AuthResult struct {
	Token string
	User  domain.User
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateInput lleva la identidad tomada de un token verificado y los campos a cambiar.
type UpdateInput struct {
	UserID    string
	Email     string
	FirstName *string
	LastName  *string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	if s.users == nil || s.tokens == nil {
		return AuthResult{}, errNotConfigured
	}

	email, err := validateEmail(input.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	locked, err := s.regLock.TryLock(ctx, email)
	if err != nil {
		s.logger.Warn("registration lock unavailable", zap.Error(err))
	}
	if !locked {
		s.logger.Info("registration already in progress", zap.String("email", email))
		return AuthResult{}, ErrDuplicateEmail
	}
	defer func() {
		if err := s.regLock.Unlock(ctx, email); err != nil {
			s.logger.Warn("registration unlock failed", zap.Error(err))
		}
	}()

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info("email already registered", zap.String("email", email))
		return AuthResult{}, ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return AuthResult{}, storeError(err)
	}

	passwordHash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now()
	user := domain.User{
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.logger.Info("email already registered", zap.String("email", email))
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, storeError(err)
	}
	user.ID = id

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	if s.users == nil || s.tokens == nil {
		return AuthResult{}, errNotConfigured
	}

	email, err := validateEmail(emailAddr)
	if err != nil {
		return AuthResult{}, err
	}
	if password == "" {
		return AuthResult{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("login for unknown email", zap.String("email", email))
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, storeError(err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		s.logger.Info("wrong credentials", zap.String("user_id", user.ID))
		return AuthResult{}, ErrInvalidCredentials
	}

	// El token sale del registro recien leido.
	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Update(ctx context.Context, input UpdateInput) (AuthResult, error) {
	if s.users == nil || s.tokens == nil {
		return AuthResult{}, errNotConfigured
	}

	email := normalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.UserID) == "" {
		return AuthResult{}, fmt.Errorf("%w: caller identity is required", ErrValidation)
	}

	patch := domain.UserPatch{
		FirstName: trimmedPtr(input.FirstName),
		LastName:  trimmedPtr(input.LastName),
	}
	if patch.Empty() {
		return AuthResult{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("update for unknown email", zap.String("email", email))
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, storeError(err)
	}
	if existing.ID != input.UserID {
		s.logger.Info("token does not match stored user", zap.String("user_id", input.UserID))
		return AuthResult{}, ErrUserNotFound
	}

	patch.UpdatedAt = s.now()
	updated, err := s.users.UpdateByEmail(ctx, email, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, storeError(err)
	}

	token, err := s.tokens.IssueToken(updated)
	if err != nil {
		return AuthResult{}, err
	}
	s.logger.Info("user updated", zap.String("user_id", updated.ID))
	return AuthResult{Token: token, User: updated}, nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func validateEmail(raw string) (string, error) {
	email := normalizeEmail(raw)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return email, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}
