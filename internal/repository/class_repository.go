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

const classColumns = `id, name, unit_id, unit, course_id, course, instructor_id, cycle, period, created_at, updated_at`

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes in creation order.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, `SELECT `+classColumns+` FROM classes ORDER BY seq ASC`); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID fetches a class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// Count returns the number of classes.
func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classes`); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}

// Create inserts a class. Unknown unit or course yields ErrMissingReference.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	if class.Period == "" {
		class.Period = models.DefaultClassPeriod
	}
	const query = `INSERT INTO classes (id, name, unit_id, unit, course_id, course, instructor_id, cycle, period, created_at)
VALUES (:id, :name, :unit_id, :unit, :course_id, :course, :instructor_id, :cycle, :period, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return mapConstraintError("create class", err)
	}
	return nil
}

// Update changes name, instructor and cycle.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	class.UpdatedAt = &now
	const query = `UPDATE classes SET name = :name, instructor_id = :instructor_id, cycle = :cycle, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireAffected(res, "update class")
}
