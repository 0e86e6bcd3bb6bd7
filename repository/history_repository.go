package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"studylab-api/logger"
	"studylab-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IHistoryRepository defines the contract for study-history persistence.
// Every lookup is scoped to the owning user.
type IHistoryRepository interface {
	Create(ctx context.Context, entry *model.HistoryEntry) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*model.HistoryEntry, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.HistoryEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type HistoryRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) Create(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Quiz == nil {
		entry.Quiz = []model.QuizItem{}
	}
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    entry.UserID,
		"history_id": entry.ID,
		"sources":    len(entry.Sources),
	})
	log.Debug("Executing query to create a history entry")

	sources, err := json.Marshal(entry.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	quiz, err := json.Marshal(entry.Quiz)
	if err != nil {
		return fmt.Errorf("encoding quiz: %w", err)
	}

	query := `INSERT INTO history_entries (id, user_id, sources, summary, quiz) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err = r.DB.QueryRowContext(ctx, query, entry.ID, entry.UserID, sources, entry.Summary, quiz).Scan(&entry.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create history query")
		return err
	}
	return nil
}

// ListByUserID returns the user's entries, newest first.
func (r *HistoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*model.HistoryEntry, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Debug("Executing query to list history entries")

	query := `
		SELECT id, user_id, sources, summary, quiz, created_at
		FROM history_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to execute list history query")
		return nil, err
	}
	defer rows.Close()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan history row")
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *HistoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.HistoryEntry, error) {
	query := `SELECT id, user_id, sources, summary, quiz, created_at FROM history_entries WHERE id = $1 AND user_id = $2`
	entry, err := scanHistory(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("history_id", id).Error("Failed to execute get history query")
		return nil, err
	}
	return entry, nil
}

func (r *HistoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM history_entries WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("history_id", id).Error("Failed to execute delete history query")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHistory(row rowScanner) (*model.HistoryEntry, error) {
	var (
		entry   model.HistoryEntry
		sources []byte
		quiz    []byte
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &sources, &entry.Summary, &quiz, &entry.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sources, &entry.Sources); err != nil {
		return nil, fmt.Errorf("decoding sources: %w", err)
	}
	if err := json.Unmarshal(quiz, &entry.Quiz); err != nil {
		return nil, fmt.Errorf("decoding quiz: %w", err)
	}
	return &entry, nil
}
