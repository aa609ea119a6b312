package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/export"
)

// ReportFormat selects the rendering of an attendance report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"

	reportFilename = "relatorio-frequencia"
	reportTitle    = "Relatório de Frequência"
)

var reportHeaders = []string{"Data", "Turma", "Curso", "Unidade", "Aluno", "CPF", "Status", "Observacao", "Instrutor"}

type sessionLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error)
}

type classLister interface {
	List(ctx context.Context) ([]models.Class, error)
}

type unitLister interface {
	List(ctx context.Context) ([]models.Unit, error)
}

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// Report is a rendered attendance report ready for download.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService flattens attendance sessions into a downloadable table.
type ReportService struct {
	sessions sessionLister
	classes  classLister
	units    unitLister
	students studentLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewReportService constructs the report service. Nil renderers fall back to
// the default exporters.
func NewReportService(sessions sessionLister, classes classLister, units unitLister, students studentLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		sessions: sessions,
		classes:  classes,
		units:    units,
		students: students,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
	}
}

// ParseReportFormat validates a format query value. Empty means CSV.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatPDF:
		return ReportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "Formato de relatório inválido")
}

// Generate renders one row per recorded entry. Sessions keep insertion order
// and entries are sorted by student id. Unknown references yield empty cells.
func (s *ReportService) Generate(ctx context.Context, filter models.AttendanceFilter, format ReportFormat) (*Report, error) {
	dataset, err := s.BuildDataset(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch format {
	case ReportFormatPDF:
		data, err := s.pdf.Render(dataset, reportTitle)
		if err != nil {
			return nil, appErrors.Internal(err, "falha ao gerar relatório")
		}
		return &Report{Filename: reportFilename + ".pdf", ContentType: s.pdf.ContentType(), Data: data}, nil
	case ReportFormatCSV, "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "falha ao gerar relatório")
		}
		return &Report{Filename: reportFilename + ".csv", ContentType: s.csv.ContentType(), Data: data}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "Formato de relatório inválido")
}

// BuildDataset joins sessions with classes, units and students.
func (s *ReportService) BuildDataset(ctx context.Context, filter models.AttendanceFilter) (export.Dataset, error) {
	dataset := export.Dataset{Headers: append([]string(nil), reportHeaders...)}

	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		return dataset, appErrors.Internal(err, "falha ao carregar chamadas")
	}
	classes, err := s.classes.List(ctx)
	if err != nil {
		return dataset, appErrors.Internal(err, "falha ao carregar turmas")
	}
	units, err := s.units.List(ctx)
	if err != nil {
		return dataset, appErrors.Internal(err, "falha ao carregar unidades")
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return dataset, appErrors.Internal(err, "falha ao carregar estudantes")
	}

	classByID := make(map[string]models.Class, len(classes))
	for _, c := range classes {
		classByID[c.ID] = c
	}
	unitNames := make(map[string]string, len(units))
	for _, u := range units {
		unitNames[u.ID] = u.Name
	}
	studentByID := make(map[string]models.Student, len(students))
	for _, st := range students {
		studentByID[st.ID] = st
	}

	for _, session := range sessions {
		class, hasClass := classByID[session.ClassID]
		var unitName string
		if hasClass {
			unitName = unitNames[class.UnitID]
		}
		for _, studentID := range session.Entries.StudentIDs() {
			entry := session.Entries[studentID]
			student := studentByID[studentID]
			dataset.AddRow(
				session.Date,
				class.Name,
				class.Course,
				unitName,
				student.Name,
				student.CPF,
				entry.DisplayStatus(),
				entry.Note(),
				session.Instructor,
			)
		}
	}

	s.logger.Debug("attendance report built", zap.Int("sessions", len(sessions)), zap.Int("rows", len(dataset.Rows)))
	return dataset, nil
}
