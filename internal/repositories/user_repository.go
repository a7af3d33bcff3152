package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
}

type userRepository struct {
	db *sqlx.DB // The direct database connection pool
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser inserts a user whose PasswordHash is already set.
func (r *userRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: username %q is taken", ErrDuplicateKey, user.Username)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	user.ID = id
	return id, nil
}

func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *userRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var user models.User
	err := getOne(ctx, r.db, &user, "SELECT id, username, password_hash, role, created_at FROM users WHERE "+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user: %v", ErrDatabaseError, err)
	}
	return &user, nil
}
