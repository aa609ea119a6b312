package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListActiveByClass(ctx context.Context, classID string) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

// StudentService manages student enrollment.
type StudentService struct {
	repo      studentRepository
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// List returns all students in creation order.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar estudantes")
	}
	return students, nil
}

// ListByClass returns the active students of a class. An unknown class has
// no students.
func (s *StudentService) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	students, err := s.repo.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar estudantes da turma")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Create enrolls a student. CPF is unique across all students.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "Nome, CPF e turma são obrigatórios")
	}
	student := &models.Student{
		Name:    req.Name,
		CPF:     req.CPF,
		ClassID: req.ClassID,
		Status:  models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "Estudante já existe com este CPF")
		case errors.Is(err, repository.ErrMissingReference):
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgClassNotFound)
		}
		return nil, appErrors.Internal(err, "falha ao criar estudante")
	}
	invalidate(ctx, s.stats)
	logger.ForContext(ctx, s.logger).Info("student created", zap.String("student_id", student.ID))
	return student, nil
}
