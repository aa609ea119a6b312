package models

import "time"

// Unit is a physical site of the institution.
type Unit struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Address   string     `db:"address" json:"address"`
	Phone     string     `db:"phone" json:"phone"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// UnitRequest creates or replaces a unit.
type UnitRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}
