package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
)

func validUserRequest() models.CreateUserRequest {
	return models.CreateUserRequest{
		Name:     "Maria Souza",
		Email:    "maria@ios.org.br",
		CPF:      "111.222.333-44",
		Password: "segredo1",
		Role:     models.RoleInstructor,
	}
}

func TestUserServiceCreateHashesPasswordAndHidesIt(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)

	user, err := svc.Create(context.Background(), validUserRequest(), models.UserStatusApproved)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "segredo1", user.PasswordHash)
	assert.NotNil(t, user.ApprovedAt)

	body, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password\"")
	assert.NotContains(t, string(body), user.PasswordHash)
}

func TestUserServiceCreateResolvesUnitName(t *testing.T) {
	store := memory.New()
	unit, _, _ := seedReferenceData(t, store)
	svc := newUserService(store)

	req := validUserRequest()
	req.UnitID = unit.ID
	user, err := svc.Create(context.Background(), req, models.UserStatusPending)
	require.NoError(t, err)
	require.NotNil(t, user.Unit)
	assert.Equal(t, unit.Name, *user.Unit)
	assert.Nil(t, user.ApprovedAt)

	req = validUserRequest()
	req.Email, req.CPF, req.UnitID = "other@ios.org.br", "999", "missing-unit"
	user, err = svc.Create(context.Background(), req, models.UserStatusPending)
	require.NoError(t, err)
	require.NotNil(t, user.UnitID)
	assert.Nil(t, user.Unit)
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := newUserService(memory.New())

	req := validUserRequest()
	req.CPF = ""
	err := requireStatus(t, func() error { _, err := svc.Create(context.Background(), req, models.UserStatusApproved); return err }(), http.StatusBadRequest)
	assert.Equal(t, msgUserRequiredFields, err.Message)

	req = validUserRequest()
	req.Role = "diretor"
	err = requireStatus(t, func() error { _, err := svc.Create(context.Background(), req, models.UserStatusApproved); return err }(), http.StatusBadRequest)
	assert.Equal(t, "Campo inválido: role", err.Message)
}

func TestUserServiceCreateDuplicateKeepsCollection(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, validUserRequest(), models.UserStatusApproved)
	require.NoError(t, err)

	dup := validUserRequest()
	dup.Email = "new@ios.org.br"
	_, err = svc.Create(ctx, dup, models.UserStatusApproved)
	requireStatus(t, err, http.StatusConflict)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserServiceApproveFlow(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	user, err := svc.Create(ctx, validUserRequest(), models.UserStatusPending)
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, svc.Approve(ctx, user.ID))
	require.NoError(t, svc.Approve(ctx, user.ID))

	approved, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, models.UserStatusApproved, approved[0].Status)

	requireStatus(t, svc.Approve(ctx, "nobody"), http.StatusNotFound)
}

func TestUserServiceRejectAndDelete(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	user, err := svc.Create(ctx, validUserRequest(), models.UserStatusPending)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, user.ID))
	requireStatus(t, svc.Reject(ctx, user.ID), http.StatusNotFound)
	requireStatus(t, svc.Delete(ctx, "nobody"), http.StatusNotFound)
}

func TestUserServiceUpdate(t *testing.T) {
	store := memory.New()
	svc := newUserService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, validUserRequest(), models.UserStatusApproved)
	require.NoError(t, err)
	second := validUserRequest()
	second.Email, second.CPF = "second@ios.org.br", "555"
	_, err = svc.Create(ctx, second, models.UserStatusApproved)
	require.NoError(t, err)

	err = svc.Update(ctx, first.ID, models.UpdateUserRequest{Name: "Maria S.", Email: "maria@ios.org.br", Role: models.RoleAdmin})
	require.NoError(t, err)

	stored, err := store.Users().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", stored.Name)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	requireStatus(t, svc.Update(ctx, first.ID, models.UpdateUserRequest{Name: "x", Email: "second@ios.org.br", Role: models.RoleAdmin}), http.StatusConflict)
	requireStatus(t, svc.Update(ctx, "nobody", models.UpdateUserRequest{Name: "x", Email: "x@ios.org.br", Role: models.RoleAdmin}), http.StatusNotFound)

	appErr := requireStatus(t, svc.Update(ctx, first.ID, models.UpdateUserRequest{Name: "x"}), http.StatusBadRequest)
	assert.Equal(t, "Nome, email e role são obrigatórios", appErr.Message)
}
