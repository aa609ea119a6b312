package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
)

// UserRepository is the in-memory identity store.
type UserRepository struct {
	s *Store
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.userIndex(id); i >= 0 {
		out := r.s.users[i]
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

// List returns users in creation order. An empty status returns every user.
func (r *UserRepository) List(_ context.Context, status models.UserStatus) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if status == "" || u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// Create inserts a user unless its email or CPF is taken.
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.CPF == user.CPF {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users = append(r.s.users, *user)
	return nil
}

// Update replaces the profile fields of a user.
func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.userIndex(user.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return fmt.Errorf("update user: %w", repository.ErrDuplicate)
		}
	}
	user.UpdatedAt = time.Now().UTC()
	stored := &r.s.users[i]
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Role = user.Role
	stored.UnitID = user.UnitID
	stored.Unit = user.Unit
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

// Approve marks the user approved. Approving twice keeps the first approved_at.
func (r *UserRepository) Approve(_ context.Context, id string, approvedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.userIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	u := &r.s.users[i]
	u.Status = models.UserStatusApproved
	if u.ApprovedAt == nil {
		ts := approvedAt
		u.ApprovedAt = &ts
	}
	u.UpdatedAt = approvedAt
	return nil
}

// UpdatePassword stores a new hash and the outstanding-reset flag.
func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string, reset bool, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.userIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.s.users[i].PasswordHash = passwordHash
	r.s.users[i].PasswordReset = reset
	r.s.users[i].UpdatedAt = updatedAt
	return nil
}

// ConsumeTemporaryPassword clears the temporary password if the stored hash
// still equals expectedHash.
func (r *UserRepository) ConsumeTemporaryPassword(_ context.Context, id, expectedHash string, consumedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.userIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	u := &r.s.users[i]
	if !u.PasswordReset || u.PasswordHash == "" || u.PasswordHash != expectedHash {
		return sql.ErrNoRows
	}
	u.PasswordHash = ""
	u.UpdatedAt = consumedAt
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.userIndex(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
	return nil
}
