package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/pkg/response"
)

const msgAttendanceIncomplete = "Dados da chamada incompletos"

type attendanceService interface {
	Save(ctx context.Context, req models.SaveAttendanceRequest) (*models.SaveAttendanceResponse, error)
	History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error)
}

// AttendanceHandler records and lists attendance sessions.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance sessions
// @Tags Attendance
// @Produce json
// @Param classId query string false "Class ID"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string][]models.AttendanceSession
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := models.AttendanceFilter{
		ClassID:  c.Query("classId"),
		DateFrom: c.Query("dateFrom"),
		DateTo:   c.Query("dateTo"),
	}
	sessions, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"attendance": sessions})
}

// Save godoc
// @Summary Record an attendance session
// @Description Every save appends a new session, even for a repeated class and date.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.SaveAttendanceRequest true "Attendance payload"
// @Success 200 {object} models.SaveAttendanceResponse
// @Failure 400 {object} response.ErrorBody
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req models.SaveAttendanceRequest
	if !bindJSON(c, &req, msgAttendanceIncomplete) {
		return
	}
	resp, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}
