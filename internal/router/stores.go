package router

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
)

// UserStore is implemented by the postgres and in-memory user repositories.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, status models.UserStatus) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Approve(ctx context.Context, id string, approvedAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, reset bool, updatedAt time.Time) error
	ConsumeTemporaryPassword(ctx context.Context, id, expectedHash string, consumedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// UnitStore persists units.
type UnitStore interface {
	List(ctx context.Context) ([]models.Unit, error)
	FindByID(ctx context.Context, id string) (*models.Unit, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
}

// CourseStore persists courses.
type CourseStore interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

// ClassStore persists classes.
type ClassStore interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
}

// StudentStore persists students.
type StudentStore interface {
	List(ctx context.Context) ([]models.Student, error)
	ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error)
	CountActive(ctx context.Context) (int, error)
	Create(ctx context.Context, student *models.Student) error
}

// AttendanceStore is the attendance ledger.
type AttendanceStore interface {
	Create(ctx context.Context, session *models.AttendanceSession) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error)
	ListRecords(ctx context.Context) ([]models.AttendanceRecord, error)
	CountByDate(ctx context.Context, date string) (int, error)
}

// Stores groups every backing store used by the API.
type Stores struct {
	Users      UserStore
	Units      UnitStore
	Courses    CourseStore
	Classes    ClassStore
	Students   StudentStore
	Attendance AttendanceStore
}

// PostgresStores builds the sqlx repositories.
func PostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Users:      repository.NewUserRepository(db),
		Units:      repository.NewUnitRepository(db),
		Courses:    repository.NewCourseRepository(db),
		Classes:    repository.NewClassRepository(db),
		Students:   repository.NewStudentRepository(db),
		Attendance: repository.NewAttendanceRepository(db),
	}
}

// MemoryStores exposes an in-process store. Data is lost on restart.
func MemoryStores(store *memory.Store) Stores {
	return Stores{
		Users:      store.Users(),
		Units:      store.Units(),
		Courses:    store.Courses(),
		Classes:    store.Classes(),
		Students:   store.Students(),
		Attendance: store.Attendance(),
	}
}
