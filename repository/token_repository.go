// file: repository/token_repository.go

package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"studylab-api/logger"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ITokenRepository manages each user's list of live refresh tokens.
// Add and Remove are single-row statements, so concurrent calls for the
// same user never overwrite each other's changes.
type ITokenRepository interface {
	// Add stores token for userID; adding a token already present is a no-op.
	Add(ctx context.Context, userID uuid.UUID, token string) error
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// Remove deletes token and reports whether it was present.
	Remove(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// DeleteIssuedBefore drops records created before cutoff.
	DeleteIssuedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

// HashToken returns the digest under which a refresh token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

func (r *TokenRepository) Add(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to add a refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token_hash) VALUES ($1, $2) ON CONFLICT (user_id, token_hash) DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, userID, HashToken(token)); err != nil {
		log.WithError(err).Error("Failed to execute add refresh token query")
		return err
	}
	return nil
}

func (r *TokenRepository) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2)`
	if err := r.DB.QueryRowContext(ctx, query, userID, HashToken(token)).Scan(&exists); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute refresh token lookup query")
		return false, err
	}
	return exists, nil
}

func (r *TokenRepository) Remove(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to remove a refresh token")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, HashToken(token))
	if err != nil {
		log.WithError(err).Error("Failed to execute remove refresh token query")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TokenRepository) DeleteIssuedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"cutoff":  cutoff,
	})
	log.Debug("Executing query to prune stale refresh tokens")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND created_at < $2`
	res, err := r.DB.ExecContext(ctx, query, userID, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to execute prune refresh tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
