package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/repository"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

const (
	msgUserRequiredFields = "Todos os campos são obrigatórios"
	msgUserExists         = "Usuário já existe com este email ou CPF"
	msgUserNotFound       = "Usuário não encontrado"
)

type userRepository interface {
	List(ctx context.Context, status models.UserStatus) ([]models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Approve(ctx context.Context, id string, approvedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user management workflows.
type UserService struct {
	repo      userRepository
	units     unitLookup
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, units unitLookup, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, units: units, validator: validate, logger: logger, hashCost: bcrypt.DefaultCost}
}

// Create stores a new user with the given status. Registration passes
// pending; administrators create approved accounts directly.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, status models.UserStatus) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, msgUserRequiredFields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao processar senha")
	}
	unitID, unitName, err := resolveUnit(ctx, s.units, req.UnitID)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao carregar unidade")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		CPF:          req.CPF,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       status,
		UnitID:       unitID,
		Unit:         unitName,
	}
	if status == models.UserStatusApproved {
		now := time.Now().UTC()
		user.ApprovedAt = &now
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, msgUserExists)
		}
		return nil, appErrors.Internal(err, "falha ao criar usuário")
	}
	logger.ForContext(ctx, s.logger).Info("user created", zap.String("user_id", user.ID), zap.String("status", string(status)))
	return user, nil
}

// List returns approved users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, models.UserStatusApproved)
}

// ListPending returns users awaiting approval.
func (s *UserService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, models.UserStatusPending)
}

func (s *UserService) list(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	users, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao listar usuários")
	}
	return users, nil
}

// Approve moves a user to approved. Already approved users stay as they are.
func (s *UserService) Approve(ctx context.Context, id string) error {
	if err := s.repo.Approve(ctx, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "falha ao aprovar usuário")
	}
	logger.ForContext(ctx, s.logger).Info("user approved", zap.String("user_id", id))
	return nil
}

// Reject removes a registration.
func (s *UserService) Reject(ctx context.Context, id string) error {
	return s.Delete(ctx, id)
}

// Update edits name, email, role and unit.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "Nome, email e role são obrigatórios")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "falha ao carregar usuário")
	}

	unitID, unitName, err := resolveUnit(ctx, s.units, req.UnitID)
	if err != nil {
		return appErrors.Internal(err, "falha ao carregar unidade")
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.UnitID = unitID
	user.Unit = unitName

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return appErrors.Clone(appErrors.ErrConflict, "Email já está em uso por outro usuário")
		}
		return appErrors.Internal(err, "falha ao atualizar usuário")
	}
	return nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "falha ao remover usuário")
	}
	logger.ForContext(ctx, s.logger).Info("user deleted", zap.String("user_id", id))
	return nil
}
