package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/utils"
)

// Token type discriminators carried in the token_type claim. Validation
// rejects a token presented for the wrong purpose even when the signature
// checks out.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens. The jti
// (RegisteredClaims.ID) identifies a refresh token in the blacklist ledger.
type Claims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Pair is a freshly issued access/refresh token pair. Tokens are signed,
// never persisted; validity is signature + expiry, plus ledger membership
// for refresh tokens.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CredentialStore is the slice of the user repository the token service
// needs to verify credentials and resolve identities.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Ledger is the persisted set of revoked refresh-token identifiers.
type Ledger interface {
	Insert(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// Service issues, validates and revokes tokens. It is constructed once at
// startup and shared by handlers and middleware; it holds no mutable state
// of its own.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      CredentialStore
	ledger     Ledger
}

// NewService builds a token service. TTLs follow the config units: minutes
// for access tokens, days for refresh tokens.
func NewService(secret string, accessTTLMin, refreshTTLDays int, users CredentialStore, ledger Ledger) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
		users:      users,
		ledger:     ledger,
	}
}

// Issue verifies the cleartext password against the stored hash and, on
// success, returns a signed access/refresh pair plus the matched user. A
// missing user and a wrong password are indistinguishable to the caller.
func (s *Service) Issue(ctx context.Context, username, password string) (Pair, model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Pair{}, model.User{}, ErrInvalidCredentials
		}
		return Pair{}, model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Pair{}, model.User{}, ErrInvalidCredentials
	}

	access, err := s.sign(u.ID, TypeAccess, s.accessTTL)
	if err != nil {
		return Pair{}, model.User{}, err
	}
	refresh, err := s.sign(u.ID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, model.User{}, err
	}
	return Pair{Access: access, Refresh: refresh}, u, nil
}

// Validate decodes a token, verifies signature and expiry, and checks that
// the token_type claim matches wantType. All failures collapse into
// ErrInvalidToken so callers cannot probe token internals.
func (s *Service) Validate(tokenString, wantType string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Revoke decodes a refresh token and appends its jti to the blacklist
// ledger. A malformed token yields ErrInvalidToken, a jti already in the
// ledger yields ErrTokenRevoked; signed tokens cannot be unsigned, so
// insertion into the ledger is the only way to invalidate one.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.Validate(refreshToken, TypeRefresh)
	if err != nil {
		return err
	}
	err = s.ledger.Insert(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if errors.Is(err, repository.ErrAlreadyRevoked) {
		return ErrTokenRevoked
	}
	return err
}

// Refresh validates a refresh token, rejects it when its jti is in the
// ledger, and mints a new access token for the embedded identity. This is
// the check that makes revocation effective: every use of a refresh token
// consults the ledger.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Validate(refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	revoked, err := s.ledger.Contains(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}
	return s.sign(claims.UserID, TypeAccess, s.accessTTL)
}

// sign mints a signed HS256 token of the given type with a fresh jti.
func (s *Service) sign(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
