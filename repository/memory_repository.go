package repository

import (
	"context"
	"sort"
	"strings"
	"studylab-api/model"
	"sync"
	"time"

	"github.com/google/uuid"
)

// The memory repositories back the "memory" database driver used for local
// development and tests. They keep the same semantics as the Postgres ones.

type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.now().UTC()
	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

type MemoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]map[string]model.RefreshToken
	now    func() time.Time
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[uuid.UUID]map[string]model.RefreshToken),
		now:    time.Now,
	}
}

func (r *MemoryTokenRepository) Add(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.tokens[userID]
	if !ok {
		list = make(map[string]model.RefreshToken)
		r.tokens[userID] = list
	}
	hash := HashToken(token)
	if _, exists := list[hash]; !exists {
		list[hash] = model.RefreshToken{UserID: userID, TokenHash: hash, CreatedAt: r.now()}
	}
	return nil
}

func (r *MemoryTokenRepository) Exists(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tokens[userID][HashToken(token)]
	return ok, nil
}

func (r *MemoryTokenRepository) Remove(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash := HashToken(token)
	if _, ok := r.tokens[userID][hash]; !ok {
		return false, nil
	}
	delete(r.tokens[userID], hash)
	return true, nil
}

func (r *MemoryTokenRepository) DeleteIssuedBefore(_ context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, rec := range r.tokens[userID] {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.tokens[userID], hash)
			n++
		}
	}
	return n, nil
}

type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]model.HistoryEntry
	now     func() time.Time
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		entries: make(map[uuid.UUID]model.HistoryEntry),
		now:     time.Now,
	}
}

func (r *MemoryHistoryRepository) Create(_ context.Context, entry *model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Quiz == nil {
		entry.Quiz = []model.QuizItem{}
	}
	entry.CreatedAt = r.now().UTC()
	r.entries[entry.ID] = *entry
	return nil
}

func (r *MemoryHistoryRepository) ListByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*model.HistoryEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			entry := e
			entries = append(entries, &entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *MemoryHistoryRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (r *MemoryHistoryRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}
