package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"studylab-api/common"
	"studylab-api/config"
	"studylab-api/logger"
	"studylab-api/model"
	"studylab-api/repository"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing refresh token")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrRevokedToken       = errors.New("refresh token has been revoked")
)

const (
	minPasswordLength = 6
	maxNameLength     = 100
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User         model.PublicUser
	AccessToken  string
	RefreshToken string
}

// RefreshResult carries a new access token, and a new refresh token only
// when rotation is enabled.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// AuthService owns the session lifecycle and is the only writer of the
// refresh-token lists.
type AuthService struct {
	users  repository.IUserRepository
	tokens repository.ITokenRepository
	codec  *TokenService
	cost   int
	rotate bool
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users repository.IUserRepository, tokens repository.ITokenRepository, codec *TokenService, cfg config.AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		codec:  codec,
		cost:   cost,
		rotate: cfg.RotateRefreshTokens,
		now:    time.Now,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates an account and opens its first session.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return s.openSession(ctx, user)
}

// Login verifies credentials and opens a new session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.compareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.pruneStaleTokens(ctx, user.ID)
	return s.openSession(ctx, user)
}

// Refresh mints a new access token for a refresh token that verifies and is
// still on its owner's list.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	listed, err := s.tokens.Exists(ctx, user.ID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("checking refresh token: %w", err)
	}
	if !listed {
		return nil, ErrRevokedToken
	}

	access, err := s.codec.IssueAccess(user.ID.String())
	if err != nil {
		return nil, err
	}
	result := &RefreshResult{AccessToken: access}

	if s.rotate {
		removed, err := s.tokens.Remove(ctx, user.ID, refreshToken)
		if err != nil {
			return nil, fmt.Errorf("revoking used refresh token: %w", err)
		}
		// A concurrent refresh already consumed this token.
		if !removed {
			return nil, ErrRevokedToken
		}
		next, err := s.codec.IssueRefresh(user.ID.String())
		if err != nil {
			return nil, err
		}
		if err := s.tokens.Add(ctx, user.ID, next); err != nil {
			return nil, fmt.Errorf("storing refresh token: %w", err)
		}
		result.RefreshToken = next
	}

	return result, nil
}

// Logout removes refreshToken from its owner's list. Apart from a missing
// token it never fails: unknown, expired or already revoked tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		logger.Log.WithError(err).Debug("Logout with unverifiable refresh token")
		return nil
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}

	removed, err := s.tokens.Remove(ctx, userID, refreshToken)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Failed to revoke refresh token on logout")
		return nil
	}
	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"revoked": removed,
	}).Info("User logged out")
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	access, err := s.codec.IssueAccess(user.ID.String())
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(user.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Add(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// pruneStaleTokens drops list entries that can no longer verify.
func (s *AuthService) pruneStaleTokens(ctx context.Context, userID uuid.UUID) {
	cutoff := s.now().Add(-s.codec.RefreshTTL())
	n, err := s.tokens.DeleteIssuedBefore(ctx, userID, cutoff)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Failed to prune stale refresh tokens")
		return
	}
	if n > 0 {
		logger.Log.WithFields(logrus.Fields{"user_id": userID, "pruned": n}).Debug("Pruned stale refresh tokens")
	}
}

// compareDummy spends the same bcrypt work as a real comparison so response
// timing does not reveal whether an email is registered.
func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("studylab-dummy-password"), s.cost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if err := common.ValidateVar(email, "required,email"); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	// bcrypt only accepts up to 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("%w: password is too long", ErrValidation)
	}
	return nil
}
