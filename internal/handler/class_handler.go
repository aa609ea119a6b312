package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type classService interface {
	List(ctx context.Context) ([]models.Class, error)
	Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req models.UpdateClassRequest) error
}

type studentService interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
}

// ClassHandler serves class endpoints.
type ClassHandler struct {
	classes  classService
	students studentService
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(classes classService, students studentService) *ClassHandler {
	return &ClassHandler{classes: classes, students: students}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} map[string][]models.Class
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"classes": classes})
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req models.CreateClassRequest
	if !bindJSON(c, &req, "Todos os campos são obrigatórios") {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"class": class, "message": "Turma criada com sucesso"})
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req models.UpdateClassRequest
	if !bindJSON(c, &req, "Nome, instrutor e ciclo são obrigatórios") {
		return
	}
	if err := h.classes.Update(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Turma atualizada com sucesso")
}

// Students godoc
// @Summary Active students of a class
// @Description Unknown classes return an empty list
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} map[string][]models.Student
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	students, err := h.students.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"students": students})
}

// StudentHandler serves student endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} map[string][]models.Student
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"students": students})
}

// Create godoc
// @Summary Enroll student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req models.CreateStudentRequest
	if !bindJSON(c, &req, "Nome, CPF e turma são obrigatórios") {
		return
	}
	student, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"student": student, "message": "Estudante criado com sucesso"})
}
