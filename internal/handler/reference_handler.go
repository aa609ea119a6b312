package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type unitService interface {
	List(ctx context.Context) ([]models.Unit, error)
	Create(ctx context.Context, req models.UnitRequest) (*models.Unit, error)
	Update(ctx context.Context, id string, req models.UnitRequest) error
}

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, req models.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id string, req models.UpdateCourseRequest) error
}

// UnitHandler serves unit endpoints.
type UnitHandler struct {
	service unitService
}

// NewUnitHandler constructs a UnitHandler.
func NewUnitHandler(svc unitService) *UnitHandler {
	return &UnitHandler{service: svc}
}

// List godoc
// @Summary List units
// @Tags Units
// @Produce json
// @Success 200 {object} map[string][]models.Unit
// @Router /units [get]
func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"units": units})
}

// Create godoc
// @Summary Create unit
// @Tags Units
// @Accept json
// @Produce json
// @Param payload body models.UnitRequest true "Unit payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Router /units [post]
func (h *UnitHandler) Create(c *gin.Context) {
	var req models.UnitRequest
	if !bindJSON(c, &req, "Todos os campos são obrigatórios") {
		return
	}
	unit, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"unit": unit, "message": "Unidade criada com sucesso"})
}

// Update godoc
// @Summary Update unit
// @Tags Units
// @Accept json
// @Produce json
// @Param id path string true "Unit ID"
// @Param payload body models.UnitRequest true "Unit payload"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /units/{id} [put]
func (h *UnitHandler) Update(c *gin.Context) {
	var req models.UnitRequest
	if !bindJSON(c, &req, "Todos os campos são obrigatórios") {
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Unidade atualizada com sucesso")
}

// CourseHandler serves course endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} map[string][]models.Course
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"courses": courses})
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req models.CreateCourseRequest
	if !bindJSON(c, &req, "Nome, duração e unidade são obrigatórios") {
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"course": course, "message": "Curso criado com sucesso"})
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req models.UpdateCourseRequest
	if !bindJSON(c, &req, "Nome e duração são obrigatórios") {
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Curso atualizado com sucesso")
}
