package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
)

const userColumns = `id, name, email, cpf, password_hash, role, status, unit_id, unit, password_reset, created_at, updated_at, approved_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 LIMIT 1`, userColumns, column)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return &user, nil
}

// List returns users in creation order. An empty status returns every user.
func (r *UserRepository) List(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY seq ASC`

	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Create inserts a new user. Email and CPF collisions yield ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, name, email, cpf, password_hash, role, status, unit_id, unit, password_reset, created_at, updated_at, approved_at)
VALUES (:id, :name, :email, :cpf, :password_hash, :role, :status, :unit_id, :unit, :password_reset, :created_at, :updated_at, :approved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return mapConstraintError("create user", err)
	}
	return nil
}

// Update replaces the profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, email = :email, role = :role, unit_id = :unit_id, unit = :unit, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return mapConstraintError("update user", err)
	}
	return requireAffected(res, "update user")
}

// Approve marks the user approved. Approving twice keeps the first approved_at.
func (r *UserRepository) Approve(ctx context.Context, id string, approvedAt time.Time) error {
	const query = `UPDATE users SET status = $2, approved_at = COALESCE(approved_at, $3), updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.UserStatusApproved, approvedAt)
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return requireAffected(res, "approve user")
}

// UpdatePassword stores a new hash and the outstanding-reset flag.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, reset bool, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, password_reset = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, reset, updatedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res, "update password")
}

// ConsumeTemporaryPassword clears an outstanding temporary password, but only
// while the stored hash is still expectedHash. A concurrent login that got
// there first leaves nothing to update and sql.ErrNoRows is returned.
func (r *UserRepository) ConsumeTemporaryPassword(ctx context.Context, id, expectedHash string, consumedAt time.Time) error {
	const query = `UPDATE users SET password_hash = '', updated_at = $3 WHERE id = $1 AND password_hash = $2 AND password_reset`
	res, err := r.db.ExecContext(ctx, query, id, expectedHash, consumedAt)
	if err != nil {
		return fmt.Errorf("consume temporary password: %w", err)
	}
	return requireAffected(res, "consume temporary password")
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "delete user")
}
