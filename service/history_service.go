package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"studylab-api/logger"
	"studylab-api/model"
	"studylab-api/repository"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const historyListLimit = 100

var ErrHistoryNotFound = errors.New("history entry not found")

// HistoryService stores study sessions. When a cache client is configured the
// per-user list is served cache-aside and invalidated on every write.
type HistoryService struct {
	repo     repository.IHistoryRepository
	cache    ICacheClient
	cacheTTL time.Duration
}

// NewHistoryService accepts a nil cache, in which case every read hits the repository.
func NewHistoryService(repo repository.IHistoryRepository, cache ICacheClient, cacheTTL time.Duration) *HistoryService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &HistoryService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func historyCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("history:%s", userID)
}

func (s *HistoryService) Create(ctx context.Context, userID uuid.UUID, req model.CreateHistoryRequest) (*model.HistoryEntry, error) {
	entry := &model.HistoryEntry{
		UserID:  userID,
		Sources: req.Sources,
		Summary: req.Summary,
		Quiz:    req.Quiz,
	}
	if entry.Quiz == nil {
		entry.Quiz = []model.QuizItem{}
	}
	for i, q := range entry.Quiz {
		if q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("%w: quiz[%d].correct is out of range", ErrValidation, i)
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return entry, nil
}

// List returns the newest entries first.
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID) ([]*model.HistoryEntry, error) {
	key := historyCacheKey(userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var entries []*model.HistoryEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				logger.Log.WithField("user_id", userID).Debug("History cache hit")
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("History cache read failed")
		}
	}

	entries, err := s.repo.ListByUserID(ctx, userID, historyListLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).Warn("History cache write failed")
			}
		}
	}
	return entries, nil
}

func (s *HistoryService) Get(ctx context.Context, userID, id uuid.UUID) (*model.HistoryEntry, error) {
	entry, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *HistoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHistoryNotFound
		}
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *HistoryService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, historyCacheKey(userID)).Err(); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("History cache invalidation failed")
	}
}
