package models

import "time"

// StudentStatusActive marks students that appear in attendance lists.
const StudentStatusActive = "ativo"

// Student is enrolled in exactly one class.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CPF       string    `db:"cpf" json:"cpf"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateStudentRequest enrolls a student.
type CreateStudentRequest struct {
	Name    string `json:"name" validate:"required"`
	CPF     string `json:"cpf" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
}
