package service

import (
	"context"
	"encoding/json"
	"studylab-api/model"
	"studylab-api/repository"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleHistoryRequest() model.CreateHistoryRequest {
	return model.CreateHistoryRequest{
		Sources: []model.Source{{Type: model.SourceYouTube, URL: "https://youtu.be/abc", VideoID: "abc"}},
		Summary: "A summary long enough to pass validation.",
		Quiz: []model.QuizItem{
			{Question: "2+2?", Options: []string{"3", "4"}, Correct: 1},
		},
	}
}

func TestHistoryService_ListCacheAside(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := "history:" + userID.String()
	entries := []*model.HistoryEntry{{ID: uuid.New(), UserID: userID, Summary: "cached summary"}}

	t.Run("cache hit skips the repository", func(t *testing.T) {
		data, err := json.Marshal(entries)
		require.NoError(t, err)

		cache := new(mockCache)
		cache.On("Get", mock.Anything, key).Return(redis.NewStringResult(string(data), nil)).Once()
		repo := new(mockHistoryRepo)

		got, err := NewHistoryService(repo, cache, time.Minute).List(ctx, userID)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, entries[0].ID, got[0].ID)
		repo.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Get", mock.Anything, key).Return(redis.NewStringResult("", redis.Nil)).Once()
		cache.On("Set", mock.Anything, key, mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil)).Once()
		repo := new(mockHistoryRepo)
		repo.On("ListByUserID", mock.Anything, userID, 100).Return(entries, nil).Once()

		got, err := NewHistoryService(repo, cache, time.Minute).List(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, entries, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("no cache configured", func(t *testing.T) {
		repo := new(mockHistoryRepo)
		repo.On("ListByUserID", mock.Anything, userID, 100).Return(nil, nil).Once()

		got, err := NewHistoryService(repo, nil, 0).List(ctx, userID)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestHistoryService_WritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	key := "history:" + userID.String()

	t.Run("create", func(t *testing.T) {
		cache := new(mockCache)
		cache.On("Del", mock.Anything, []string{key}).Return(redis.NewIntResult(1, nil)).Once()
		repo := new(mockHistoryRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.HistoryEntry")).Return(nil).Once()

		entry, err := NewHistoryService(repo, cache, time.Minute).Create(ctx, userID, sampleHistoryRequest())

		require.NoError(t, err)
		assert.Equal(t, userID, entry.UserID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		id := uuid.New()
		cache := new(mockCache)
		cache.On("Del", mock.Anything, []string{key}).Return(redis.NewIntResult(1, nil)).Once()
		repo := new(mockHistoryRepo)
		repo.On("Delete", mock.Anything, userID, id).Return(nil).Once()

		err := NewHistoryService(repo, cache, time.Minute).Delete(ctx, userID, id)

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("delete of a missing entry leaves the cache alone", func(t *testing.T) {
		id := uuid.New()
		cache := new(mockCache)
		repo := new(mockHistoryRepo)
		repo.On("Delete", mock.Anything, userID, id).Return(repository.ErrNotFound).Once()

		err := NewHistoryService(repo, cache, time.Minute).Delete(ctx, userID, id)

		assert.ErrorIs(t, err, ErrHistoryNotFound)
		cache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})
}

func TestHistoryService_CreateRejectsOutOfRangeAnswer(t *testing.T) {
	req := sampleHistoryRequest()
	req.Quiz[0].Correct = 2

	_, err := NewHistoryService(new(mockHistoryRepo), nil, 0).Create(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHistoryService_OwnershipWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(repository.NewMemoryHistoryRepository(), nil, 0)
	owner, stranger := uuid.New(), uuid.New()

	entry, err := svc.Create(ctx, owner, sampleHistoryRequest())
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, entry.ID)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, entry.ID), ErrHistoryNotFound)

	got, err := svc.Get(ctx, owner, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Summary, got.Summary)

	require.NoError(t, svc.Delete(ctx, owner, entry.ID))
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
