package repository

import (
	"context"
	"database/sql"
	"errors"
	"studylab-api/logger"
	"studylab-api/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNotFound       = errors.New("record not found")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IUserRepository defines the contract for user persistence.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts user, assigning an ID when it has none, and fills CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	log := logger.Log.WithField("user_id", user.ID)
	log.Debug("Executing query to create a new user")

	query := `INSERT INTO users (id, email, password_hash, name) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.DB.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// GetByEmail looks a user up case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, password_hash, name, created_at FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT id, email, password_hash, name, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get user query")
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
