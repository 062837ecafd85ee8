package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

const tokenIssuer = "newsroom"

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService resolves HS256 bearer tokens into a Principal.
type AuthService struct {
	signingKey []byte
	now        func() time.Time
}

func NewAuthService(signingKey string) *AuthService {
	return &AuthService{signingKey: []byte(signingKey), now: time.Now}
}

func (s *AuthService) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(s.signingKey) == 0 {
		return domain.Principal{}, ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return domain.Principal{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || strings.TrimSpace(claims.Email) == "" {
		return domain.Principal{}, ErrUnauthorized
	}
	return domain.Principal{Email: claims.Email, Role: claims.Role}, nil
}

func (s *AuthService) IssueToken(email, role string, ttl time.Duration) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errors.New("issue token: signing key is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   email,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}
