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

// UnitRepository is the in-memory unit collection.
type UnitRepository struct {
	s *Store
}

// List returns units in creation order.
func (r *UnitRepository) List(_ context.Context) ([]models.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]models.Unit, 0, len(r.s.units)), r.s.units...), nil
}

// FindByID fetches a unit.
func (r *UnitRepository) FindByID(_ context.Context, id string) (*models.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.unitIndex(id); i >= 0 {
		out := r.s.units[i]
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

// Count returns the number of units.
func (r *UnitRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.units), nil
}

// Create inserts a unit.
func (r *UnitRepository) Create(_ context.Context, unit *models.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC()
	}
	r.s.units = append(r.s.units, *unit)
	return nil
}

// Update replaces the unit fields.
func (r *UnitRepository) Update(_ context.Context, unit *models.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.unitIndex(unit.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	unit.UpdatedAt = &now
	unit.CreatedAt = r.s.units[i].CreatedAt
	r.s.units[i] = *unit
	return nil
}

// CourseRepository is the in-memory course collection.
type CourseRepository struct {
	s *Store
}

// List returns courses in creation order.
func (r *CourseRepository) List(_ context.Context) ([]models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]models.Course, 0, len(r.s.courses)), r.s.courses...), nil
}

// FindByID fetches a course.
func (r *CourseRepository) FindByID(_ context.Context, id string) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.courseIndex(id); i >= 0 {
		out := r.s.courses[i]
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

// Create inserts a course whose unit must exist.
func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.unitIndex(course.UnitID) < 0 {
		return fmt.Errorf("create course: %w", repository.ErrMissingReference)
	}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	r.s.courses = append(r.s.courses, *course)
	return nil
}

// Update replaces the course fields.
func (r *CourseRepository) Update(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.courseIndex(course.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	if r.s.unitIndex(course.UnitID) < 0 {
		return fmt.Errorf("update course: %w", repository.ErrMissingReference)
	}
	now := time.Now().UTC()
	course.UpdatedAt = &now
	course.CreatedAt = r.s.courses[i].CreatedAt
	r.s.courses[i] = *course
	return nil
}

// ClassRepository is the in-memory class collection.
type ClassRepository struct {
	s *Store
}

// List returns classes in creation order.
func (r *ClassRepository) List(_ context.Context) ([]models.Class, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]models.Class, 0, len(r.s.classes)), r.s.classes...), nil
}

// FindByID fetches a class.
func (r *ClassRepository) FindByID(_ context.Context, id string) (*models.Class, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i := r.s.classIndex(id); i >= 0 {
		out := r.s.classes[i]
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

// Count returns the number of classes.
func (r *ClassRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.classes), nil
}

// Create inserts a class whose unit and course must exist.
func (r *ClassRepository) Create(_ context.Context, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.unitIndex(class.UnitID) < 0 || r.s.courseIndex(class.CourseID) < 0 {
		return fmt.Errorf("create class: %w", repository.ErrMissingReference)
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	if class.Period == "" {
		class.Period = models.DefaultClassPeriod
	}
	r.s.classes = append(r.s.classes, *class)
	return nil
}

// Update changes name, instructor and cycle.
func (r *ClassRepository) Update(_ context.Context, class *models.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.classIndex(class.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	now := time.Now().UTC()
	class.UpdatedAt = &now
	stored := &r.s.classes[i]
	stored.Name = class.Name
	stored.InstructorID = class.InstructorID
	stored.Cycle = class.Cycle
	stored.UpdatedAt = class.UpdatedAt
	return nil
}

// StudentRepository is the in-memory student collection.
type StudentRepository struct {
	s *Store
}

// List returns every student in creation order.
func (r *StudentRepository) List(_ context.Context) ([]models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append(make([]models.Student, 0, len(r.s.students)), r.s.students...), nil
}

// ListActiveByClass returns the active students of a class.
func (r *StudentRepository) ListActiveByClass(_ context.Context, classID string) ([]models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Student, 0)
	for _, st := range r.s.students {
		if st.ClassID == classID && st.Status == models.StudentStatusActive {
			out = append(out, st)
		}
	}
	return out, nil
}

// CountActive returns the number of active students.
func (r *StudentRepository) CountActive(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, st := range r.s.students {
		if st.Status == models.StudentStatusActive {
			total++
		}
	}
	return total, nil
}

// Create inserts a student with a unique CPF into an existing class.
func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.students {
		if st.CPF == student.CPF {
			return fmt.Errorf("create student: %w", repository.ErrDuplicate)
		}
	}
	if r.s.classIndex(student.ClassID) < 0 {
		return fmt.Errorf("create student: %w", repository.ErrMissingReference)
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	r.s.students = append(r.s.students, *student)
	return nil
}
