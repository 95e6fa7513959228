package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"secondchance-backend/internal/domain"
)

const defaultTokenTTL = time.Hour

// JWTService emite y valida tokens JWT firmados con HS256.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenUser es la identidad embebida en el payload del token.
type TokenUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid       = errors.New("jwt invalid")
	ErrJWTExpired       = errors.New("jwt expired")
	ErrJWTSecretMissing = errors.New("jwt secret not configured")
)

func NewJWTService(secret string, ttl time.Duration, issuer string) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "secondchance"
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// IssueToken firma un token para el usuario; nunca devuelve un token sin firma.
func (s *JWTService) IssueToken(user domain.User) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrJWTSecretMissing
	}
	if strings.TrimSpace(user.ID) == "" {
		return "", ErrJWTInvalid
	}
	now := s.now()
	claims := Claims{
		User: TokenUser{
			ID:    user.ID,
			Email: user.Email,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ParseToken(tokenString string) (Claims, error) {
	if s == nil || len(s.secret) == 0 {
		return Claims{}, ErrJWTSecretMissing
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.User.ID) == "" {
		return false
	}
	if claims.Subject != claims.User.ID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
