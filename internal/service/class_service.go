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

const (
	msgClassNotFound      = "Turma não encontrada"
	msgClassParentMissing = "Unidade ou curso não encontrado"
)

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
}

type courseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// ClassService manages classes and their parent references.
type ClassService struct {
	repo      classRepository
	units     unitLookup
	courses   courseLookup
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, units unitLookup, courses courseLookup, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, units: units, courses: courses, stats: stats, validator: validate, logger: logger}
}

// List returns all classes in creation order.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar turmas")
	}
	return classes, nil
}

// Create opens a class. Unit and course must exist; their names are copied
// onto the class.
func (s *ClassService) Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, msgAllFieldsRequired)
	}

	unit, err := s.units.FindByID(ctx, req.UnitID)
	if err != nil {
		return nil, s.parentError(err)
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, s.parentError(err)
	}

	class := &models.Class{
		Name:         req.Name,
		UnitID:       unit.ID,
		Unit:         unit.Name,
		CourseID:     course.ID,
		Course:       course.Name,
		InstructorID: req.InstructorID,
		Cycle:        req.Cycle,
		Period:       models.DefaultClassPeriod,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassParentMissing)
		}
		return nil, appErrors.Internal(err, "falha ao criar turma")
	}
	invalidate(ctx, s.stats)
	logger.ForContext(ctx, s.logger).Info("class created", zap.String("class_id", class.ID))
	return class, nil
}

func (s *ClassService) parentError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, msgClassParentMissing)
	}
	return appErrors.Internal(err, "falha ao carregar unidade ou curso")
}

// Update edits name, instructor and cycle.
func (s *ClassService) Update(ctx context.Context, id string, req models.UpdateClassRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "Nome, instrutor e ciclo são obrigatórios")
	}
	class := &models.Class{ID: id, Name: req.Name, InstructorID: req.InstructorID, Cycle: req.Cycle}
	if err := s.repo.Update(ctx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return appErrors.Internal(err, "falha ao atualizar turma")
	}
	return nil
}
