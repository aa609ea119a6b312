package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type userService interface {
	List(ctx context.Context) ([]models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, req models.CreateUserRequest, status models.UserStatus) (*models.User, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Update(ctx context.Context, id string, req models.UpdateUserRequest) error
	Delete(ctx context.Context, id string) error
}

// UserHandler handles user administration endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List approved users
// @Tags Users
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"users": users})
}

// Pending godoc
// @Summary List users awaiting approval
// @Tags Users
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Router /users/pending [get]
func (h *UserHandler) Pending(c *gin.Context) {
	users, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"users": users})
}

// Create godoc
// @Summary Create an approved user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req, "Todos os campos são obrigatórios") {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req, models.UserStatusApproved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, models.UserResponse{User: user, Message: "Usuário criado com sucesso"})
}

// Approve godoc
// @Summary Approve a pending user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/approve/{id} [post]
func (h *UserHandler) Approve(c *gin.Context) {
	if err := h.service.Approve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Usuário aprovado com sucesso")
}

// Reject godoc
// @Summary Reject and remove a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/reject/{id} [post]
func (h *UserHandler) Reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Usuário rejeitado e removido do sistema")
}

// Update godoc
// @Summary Update a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.UpdateUserRequest true "User payload"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if !bindJSON(c, &req, "Nome, email e role são obrigatórios") {
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Usuário atualizado com sucesso")
}

// Delete godoc
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Usuário excluído com sucesso")
}
