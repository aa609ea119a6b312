package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

const msgAttendanceIncomplete = "Dados da chamada incompletos"

type attendanceRepository interface {
	Create(ctx context.Context, session *models.AttendanceSession) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error)
}

// AttendanceService records and lists attendance sessions.
type AttendanceService struct {
	repo      attendanceRepository
	stats     statsInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// WithMetrics enables the attendance counters.
func (s *AttendanceService) WithMetrics(metrics *MetricsService) *AttendanceService {
	s.metrics = metrics
	return s
}

// Save appends a closed session with one entry per submitted student. Every
// call creates a new session, even for a class and date already recorded.
func (s *AttendanceService) Save(ctx context.Context, req models.SaveAttendanceRequest) (*models.SaveAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, msgAttendanceIncomplete)
	}

	session := &models.AttendanceSession{
		ClassID:           req.ClassID,
		Date:              req.Date,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Instructor:        req.Instructor,
		ClassObservations: req.ClassObservations,
		Status:            models.SessionStatusClosed,
		Entries:           req.AttendanceData,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "falha ao salvar chamada")
	}
	invalidate(ctx, s.stats)
	s.metrics.RecordAttendanceSaved(len(req.AttendanceData))
	logger.ForContext(ctx, s.logger).Info("attendance saved",
		zap.String("attendance_id", session.ID),
		zap.String("class_id", session.ClassID),
		zap.Int("records", len(req.AttendanceData)),
	)

	return &models.SaveAttendanceResponse{
		Message:      "Chamada salva com sucesso",
		AttendanceID: session.ID,
		RecordsCount: len(req.AttendanceData),
	}, nil
}

// History returns sessions in insertion order with their entries.
func (s *AttendanceService) History(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceSession, error) {
	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar chamadas")
	}
	if sessions == nil {
		sessions = []models.AttendanceSession{}
	}
	return sessions, nil
}
