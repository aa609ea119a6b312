package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/models"
)

func TestUnitRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUnitRepository(db)

	mock.ExpectExec("INSERT INTO units").WillReturnResult(sqlmock.NewResult(1, 1))
	unit := &models.Unit{Name: "Centro", Address: "Rua A, 1", Phone: "11 9999-0000"}
	require.NoError(t, repo.Create(context.Background(), unit))
	assert.NotEmpty(t, unit.ID)
	assert.False(t, unit.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "name", "address", "phone", "created_at", "updated_at"}).
		AddRow(unit.ID, "Centro", "Rua A, 1", "11 9999-0000", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, address, phone, created_at, updated_at FROM units ORDER BY seq ASC")).
		WillReturnRows(rows)

	units, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, unit.ID, units[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateUnknownUnit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "courses_unit_id_fkey"})

	err := repo.Create(context.Background(), &models.Course{Name: "Excel", Duration: "40h", UnitID: "ghost"})
	assert.ErrorIs(t, err, ErrMissingReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateDefaultsPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").WillReturnResult(sqlmock.NewResult(1, 1))
	class := &models.Class{Name: "Turma A", UnitID: "u1", CourseID: "c1", InstructorID: "i1", Cycle: "1º/2025"}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.Equal(t, models.DefaultClassPeriod, class.Period)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET name =")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), class))
	assert.NotNil(t, class.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListActiveByClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE class_id = $1 AND status = $2 ORDER BY seq ASC")).
		WithArgs("nonexistent-class-id", models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cpf", "class_id", "status", "created_at"}))

	students, err := repo.ListActiveByClass(context.Background(), "nonexistent-class-id")
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDuplicateCPF(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_cpf_key"})

	student := &models.Student{Name: "João", CPF: "111", ClassID: "c1"}
	err := repo.Create(context.Background(), student)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, models.StudentStatusActive, student.Status)
}

func TestStudentRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE status = $1")).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}
