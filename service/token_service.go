package service

import (
	"errors"
	"fmt"
	"studylab-api/config"
	"studylab-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
)

// TokenService issues and verifies HS256 access and refresh tokens.
// It performs no I/O.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccess signs {sub} with the access secret.
func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.sign(userID, "", s.accessSecret, s.accessTTL)
}

// IssueRefresh signs {sub, type: refresh} with the refresh secret.
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.sign(userID, model.TokenTypeRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) sign(userID, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &model.AppClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry against secret and returns the claims.
// Every failure other than expiry is reported as ErrInvalidSignature.
func (s *TokenService) Verify(tokenString string, secret []byte) (*model.AppClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// VerifyAccess accepts only untyped tokens signed with the access secret.
func (s *TokenService) VerifyAccess(tokenString string) (*model.AppClaims, error) {
	claims, err := s.Verify(tokenString, s.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != "" {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// VerifyRefresh accepts only refresh-typed tokens signed with the refresh secret.
func (s *TokenService) VerifyRefresh(tokenString string) (*model.AppClaims, error) {
	claims, err := s.Verify(tokenString, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != model.TokenTypeRefresh {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
