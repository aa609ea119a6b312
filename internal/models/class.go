package models

import "time"

// DefaultClassPeriod is assigned to every new class.
const DefaultClassPeriod = "manhã"

// Class is a group of students following a course in a given cycle.
// Course and Unit hold the parent names captured when the class was created.
type Class struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	UnitID       string     `db:"unit_id" json:"unit_id"`
	Unit         string     `db:"unit" json:"unit"`
	CourseID     string     `db:"course_id" json:"course_id"`
	Course       string     `db:"course" json:"course"`
	InstructorID string     `db:"instructor_id" json:"instructor_id"`
	Cycle        string     `db:"cycle" json:"cycle"`
	Period       string     `db:"period" json:"period"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CreateClassRequest opens a new class.
type CreateClassRequest struct {
	Name         string `json:"name" validate:"required"`
	UnitID       string `json:"unit_id" validate:"required"`
	CourseID     string `json:"course_id" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Cycle        string `json:"cycle" validate:"required"`
}

// UpdateClassRequest edits the mutable fields of a class.
type UpdateClassRequest struct {
	Name         string `json:"name" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Cycle        string `json:"cycle" validate:"required"`
}
