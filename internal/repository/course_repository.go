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

const courseColumns = `id, name, description, duration, unit_id, created_at, updated_at`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses in creation order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, `SELECT `+courseColumns+` FROM courses ORDER BY seq ASC`); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

// Create inserts a course. An unknown unit yields ErrMissingReference.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, name, description, duration, unit_id, created_at) VALUES (:id, :name, :description, :duration, :unit_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return mapConstraintError("create course", err)
	}
	return nil
}

// Update replaces the course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.UpdatedAt = &now
	const query = `UPDATE courses SET name = :name, description = :description, duration = :duration, unit_id = :unit_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return mapConstraintError("update course", err)
	}
	return requireAffected(res, "update course")
}
