package service

import (
	"context"
	"studylab-api/model"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Add(ctx context.Context, userID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}
func (m *mockTokenRepo) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}
func (m *mockTokenRepo) Remove(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}
func (m *mockTokenRepo) DeleteIssuedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockHistoryRepo struct{ mock.Mock }

func (m *mockHistoryRepo) Create(ctx context.Context, entry *model.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *mockHistoryRepo) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*model.HistoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	entries, _ := args.Get(0).([]*model.HistoryEntry)
	return entries, args.Error(1)
}
func (m *mockHistoryRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.HistoryEntry, error) {
	args := m.Called(ctx, userID, id)
	entry, _ := args.Get(0).(*model.HistoryEntry)
	return entry, args.Error(1)
}
func (m *mockHistoryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}
func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}
func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}
