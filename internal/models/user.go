package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instrutor"
	RolePedagogue  UserRole = "pedagogo"
	RoleMonitor    UserRole = "monitor"
)

// UserStatus tracks the approval lifecycle of an account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
)

// User represents an application user stored in the users table.
type User struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         string     `db:"email" json:"email"`
	CPF           string     `db:"cpf" json:"cpf"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Role          UserRole   `db:"role" json:"role"`
	Status        UserStatus `db:"status" json:"status"`
	UnitID        *string    `db:"unit_id" json:"unit_id"`
	Unit          *string    `db:"unit" json:"unit"`
	PasswordReset bool       `db:"password_reset" json:"password_reset"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	ApprovedAt    *time.Time `db:"approved_at" json:"approved_at,omitempty"`
}

// CreateUserRequest is shared by self-registration and admin creation.
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	CPF      string   `json:"cpf" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Role     UserRole `json:"role" validate:"required,oneof=admin instrutor pedagogo monitor"`
	UnitID   string   `json:"unit_id"`
}

// UpdateUserRequest edits the profile fields of an existing user.
type UpdateUserRequest struct {
	Name   string   `json:"name" validate:"required"`
	Email  string   `json:"email" validate:"required,email"`
	Role   UserRole `json:"role" validate:"required,oneof=admin instrutor pedagogo monitor"`
	UnitID string   `json:"unit_id"`
}

// UserResponse wraps a user with a confirmation message.
type UserResponse struct {
	User    *User  `json:"user"`
	Message string `json:"message"`
}
