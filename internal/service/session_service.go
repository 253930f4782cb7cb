package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stroke-warning-system/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "session:revoked:"

// SessionClaims are carried in the signed session cookie.
type SessionClaims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies session tokens. Logout revokes the
// token ID in the KV store until the token would have expired anyway.
type SessionService interface {
	Issue(ctx context.Context, login *LoginResponse) (token string, expiresAt time.Time, err error)
	Verify(ctx context.Context, token string) (*SessionClaims, error)
	Revoke(ctx context.Context, token string) error
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time
}

func NewSessionService(secret string, ttl time.Duration, kv store.KV, logger *zap.Logger) SessionService {
	return &sessionService{
		secret: []byte(secret),
		ttl:    ttl,
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

func (s *sessionService) Issue(ctx context.Context, login *LoginResponse) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &SessionClaims{
		UserID:   login.UserID,
		Username: login.Username,
		Role:     login.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   login.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return tok, expiresAt, nil
}

func (s *sessionService) parse(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *sessionService) Verify(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	_, err = s.kv.Get(ctx, revokedKeyPrefix+claims.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	case errors.Is(err, store.ErrMiss):
		return claims, nil
	default:
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		// already unusable
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.kv.Set(ctx, revokedKeyPrefix+claims.ID, claims.Username, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info("Session revoked", zap.String("username", claims.Username), zap.String("jti", claims.ID))
	return nil
}
