package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
)

func seedClass(t *testing.T, s *Store) models.Class {
	t.Helper()
	ctx := context.Background()
	unit := &models.Unit{Name: "Centro", Address: "Rua A", Phone: "1"}
	require.NoError(t, s.Units().Create(ctx, unit))
	course := &models.Course{Name: "Excel", Duration: "40h", UnitID: unit.ID}
	require.NoError(t, s.Courses().Create(ctx, course))
	class := &models.Class{Name: "Turma A", UnitID: unit.ID, CourseID: course.ID, InstructorID: "i1", Cycle: "1º/2025"}
	require.NoError(t, s.Classes().Create(ctx, class))
	return *class
}

func TestConcurrentStudentCreateKeepsCPFUnique(t *testing.T) {
	s := New()
	class := seedClass(t, s)

	var ok, dup int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Students().Create(context.Background(), &models.Student{Name: fmt.Sprintf("Aluno %d", i), CPF: "111.222.333-44", ClassID: class.ID})
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, repository.ErrDuplicate):
				atomic.AddInt32(&dup, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 19, dup)
	students, err := s.Students().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestReferencesAreChecked(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Courses().Create(ctx, &models.Course{Name: "x", Duration: "1h", UnitID: "ghost"})
	assert.ErrorIs(t, err, repository.ErrMissingReference)

	class := seedClass(t, s)
	err = s.Classes().Create(ctx, &models.Class{Name: "B", UnitID: class.UnitID, CourseID: "ghost"})
	assert.ErrorIs(t, err, repository.ErrMissingReference)

	err = s.Students().Create(ctx, &models.Student{Name: "x", CPF: "1", ClassID: "ghost"})
	assert.ErrorIs(t, err, repository.ErrMissingReference)

	courses, _ := s.Courses().List(ctx)
	classes, _ := s.Classes().List(ctx)
	assert.Len(t, courses, 1)
	assert.Len(t, classes, 1)
	assert.Equal(t, models.DefaultClassPeriod, classes[0].Period)
}

func TestUserLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	users := s.Users()

	u := &models.User{Name: "Ana", Email: "ana@ios.org.br", CPF: "1", Role: models.RoleMonitor, Status: models.UserStatusPending}
	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "other@ios.org.br", CPF: "1"}), repository.ErrDuplicate)
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "ana@ios.org.br", CPF: "2"}), repository.ErrDuplicate)

	pending, _ := users.List(ctx, models.UserStatusPending)
	assert.Len(t, pending, 1)

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, users.Approve(ctx, u.ID, first))
	require.NoError(t, users.Approve(ctx, u.ID, first.Add(time.Hour)))
	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusApproved, stored.Status)
	assert.True(t, stored.ApprovedAt.Equal(first))
	assert.ErrorIs(t, users.Approve(ctx, "ghost", first), sql.ErrNoRows)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, "hash", true, first))
	stored, _ = users.FindByEmail(ctx, "ana@ios.org.br")
	assert.True(t, stored.PasswordReset)

	assert.ErrorIs(t, users.ConsumeTemporaryPassword(ctx, u.ID, "other", first), sql.ErrNoRows)
	require.NoError(t, users.ConsumeTemporaryPassword(ctx, u.ID, "hash", first))
	assert.ErrorIs(t, users.ConsumeTemporaryPassword(ctx, u.ID, "hash", first), sql.ErrNoRows)
	stored, _ = users.FindByID(ctx, u.ID)
	assert.Empty(t, stored.PasswordHash)
	assert.True(t, stored.PasswordReset)

	require.NoError(t, users.Delete(ctx, u.ID))
	_, err = users.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserUpdateRejectsTakenEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := &models.User{Email: "a@x.com", CPF: "1"}
	b := &models.User{Email: "b@x.com", CPF: "2"}
	require.NoError(t, s.Users().Create(ctx, a))
	require.NoError(t, s.Users().Create(ctx, b))

	b.Email = "a@x.com"
	assert.ErrorIs(t, s.Users().Update(ctx, b), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Users().Update(ctx, &models.User{ID: "ghost"}), sql.ErrNoRows)
}

func TestAttendanceAppendsAndFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	ledger := s.Attendance()

	first := &models.AttendanceSession{ClassID: "c1", Date: "2025-03-10", Entries: models.AttendanceData{
		"s2": models.LegacyEntry{Status: models.LegacyPresent},
		"s1": models.EnhancedEntry{Justified: true},
	}}
	second := &models.AttendanceSession{ClassID: "c1", Date: "2025-03-10", Entries: models.AttendanceData{}}
	other := &models.AttendanceSession{ClassID: "c2", Date: "2025-03-11", Entries: models.AttendanceData{"s9": models.EnhancedEntry{Present: true}}}
	require.NoError(t, ledger.Create(ctx, first))
	require.NoError(t, ledger.Create(ctx, second))
	require.NoError(t, ledger.Create(ctx, other))

	all, err := ledger.List(ctx, models.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{first.ID, second.ID, other.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Len(t, all[0].Entries, 2)
	assert.Equal(t, models.LegacyEntry{Status: models.LegacyPresent}, all[0].Entries["s2"])

	c1, _ := ledger.List(ctx, models.AttendanceFilter{ClassID: "c1"})
	assert.Len(t, c1, 2)

	records, _ := ledger.ListRecords(ctx)
	require.Len(t, records, 3)
	assert.Equal(t, "s1", records[0].StudentID)

	today, _ := ledger.CountByDate(ctx, "2025-03-10")
	assert.Equal(t, 2, today)
}
