package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
)

const studentColumns = `id, name, cpf, class_id, status, created_at`

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student in creation order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students ORDER BY seq ASC`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListActiveByClass returns the active students of a class. An unknown class
// simply has no rows.
func (r *StudentRepository) ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error) {
	students := make([]models.Student, 0)
	const query = `SELECT ` + studentColumns + ` FROM students WHERE class_id = $1 AND status = $2 ORDER BY seq ASC`
	if err := r.db.SelectContext(ctx, &students, query, classID, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// CountActive returns the number of active students.
func (r *StudentRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students WHERE status = $1`, models.StudentStatusActive); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// Create inserts a student. A taken CPF yields ErrDuplicate and an unknown
// class ErrMissingReference.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	const query = `INSERT INTO students (id, name, cpf, class_id, status, created_at) VALUES (:id, :name, :cpf, :class_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return mapConstraintError("create student", err)
	}
	return nil
}
