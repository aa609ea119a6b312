package models

import "time"

// Course is offered by a unit.
type Course struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Duration    string     `db:"duration" json:"duration"`
	UnitID      string     `db:"unit_id" json:"unit_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CreateCourseRequest registers a course under a unit.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Duration    string `json:"duration" validate:"required"`
	UnitID      string `json:"unit_id" validate:"required"`
}

// UpdateCourseRequest edits a course. An empty UnitID keeps the current unit.
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Duration    string `json:"duration" validate:"required"`
	UnitID      string `json:"unit_id"`
}
