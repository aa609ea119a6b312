package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

const msgCourseNotFound = "Curso não encontrado"

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

// CourseService manages courses offered by units.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns all courses in creation order.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar cursos")
	}
	return courses, nil
}

// Create registers a course under an existing unit.
func (s *CourseService) Create(ctx context.Context, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "Nome, duração e unidade são obrigatórios")
	}
	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		UnitID:      req.UnitID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgUnitNotFound)
		}
		return nil, appErrors.Internal(err, "falha ao criar curso")
	}
	logger.ForContext(ctx, s.logger).Info("course created", zap.String("course_id", course.ID))
	return course, nil
}

// Update edits a course. The unit changes only when a new one is given.
func (s *CourseService) Update(ctx context.Context, id string, req models.UpdateCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "Nome e duração são obrigatórios")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgCourseNotFound)
		}
		return appErrors.Internal(err, "falha ao carregar curso")
	}
	course.Name = req.Name
	course.Description = req.Description
	course.Duration = req.Duration
	if req.UnitID != "" {
		course.UnitID = req.UnitID
	}
	if err := s.repo.Update(ctx, course); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, msgCourseNotFound)
		case errors.Is(err, repository.ErrMissingReference):
			return appErrors.Clone(appErrors.ErrNotFound, msgUnitNotFound)
		}
		return appErrors.Internal(err, "falha ao atualizar curso")
	}
	return nil
}
