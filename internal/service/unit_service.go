package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

const (
	msgAllFieldsRequired = "Todos os campos são obrigatórios"
	msgUnitNotFound      = "Unidade não encontrada"
)

type unitRepository interface {
	List(ctx context.Context) ([]models.Unit, error)
	FindByID(ctx context.Context, id string) (*models.Unit, error)
	Create(ctx context.Context, unit *models.Unit) error
	Update(ctx context.Context, unit *models.Unit) error
}

// UnitService manages institution units.
type UnitService struct {
	repo      unitRepository
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUnitService constructs a UnitService.
func NewUnitService(repo unitRepository, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *UnitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UnitService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// List returns all units in creation order.
func (s *UnitService) List(ctx context.Context) ([]models.Unit, error) {
	units, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar unidades")
	}
	return units, nil
}

// Create stores a new unit.
func (s *UnitService) Create(ctx context.Context, req models.UnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, msgAllFieldsRequired)
	}
	unit := &models.Unit{Name: req.Name, Address: req.Address, Phone: req.Phone}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, appErrors.Internal(err, "falha ao criar unidade")
	}
	invalidate(ctx, s.stats)
	logger.ForContext(ctx, s.logger).Info("unit created", zap.String("unit_id", unit.ID))
	return unit, nil
}

// Update replaces name, address and phone of a unit.
func (s *UnitService) Update(ctx context.Context, id string, req models.UnitRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, msgAllFieldsRequired)
	}
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUnitNotFound)
		}
		return appErrors.Internal(err, "falha ao carregar unidade")
	}
	unit.Name = req.Name
	unit.Address = req.Address
	unit.Phone = req.Phone
	if err := s.repo.Update(ctx, unit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUnitNotFound)
		}
		return appErrors.Internal(err, "falha ao atualizar unidade")
	}
	return nil
}
