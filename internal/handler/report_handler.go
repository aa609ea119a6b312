package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/service"
	"github.com/noah-isme/chamada-api/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, filter models.AttendanceFilter, format service.ReportFormat) (*service.Report, error)
}

// ReportHandler renders attendance reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Generate attendance report
// @Description Flattens every recorded entry into one row. The body is optional.
// @Tags Reports
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param payload body models.AttendanceFilter false "Report filter"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /reports/generate [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	format, err := service.ParseReportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter models.AttendanceFilter
	if !bindOptionalJSON(c, &filter, "Filtro de relatório inválido") {
		return
	}

	report, err := h.service.Generate(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.ContentType, report.Filename, report.Data)
}
