package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

var errStoreDown = errors.New("store unavailable")

func requireStatus(t *testing.T, err error, status int) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	require.Equal(t, status, appErr.Status, appErr.Message)
	return appErr
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

func newUserService(store *memory.Store) *UserService {
	svc := NewUserService(store.Users(), store.Units(), nil, zap.NewNop())
	svc.hashCost = bcrypt.MinCost
	return svc
}

func seedReferenceData(t *testing.T, store *memory.Store) (models.Unit, models.Course, models.Class) {
	t.Helper()
	ctx := context.Background()
	unit := models.Unit{Name: "Unidade Centro", Address: "Rua A, 1", Phone: "(11) 0000-0000"}
	require.NoError(t, store.Units().Create(ctx, &unit))
	course := models.Course{Name: "Informática", Duration: "160", UnitID: unit.ID}
	require.NoError(t, store.Courses().Create(ctx, &course))
	class := models.Class{Name: "Turma A", UnitID: unit.ID, Unit: unit.Name, CourseID: course.ID, Course: course.Name, InstructorID: "joao@ios.org.br", Cycle: "1º/2025"}
	require.NoError(t, store.Classes().Create(ctx, &class))
	return unit, course, class
}

