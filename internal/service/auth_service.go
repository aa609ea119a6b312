package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
	"github.com/noah-isme/chamada-api/pkg/logger"
)

const (
	tempPasswordLength   = 8
	tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, reset bool, updatedAt time.Time) error
	ConsumeTemporaryPassword(ctx context.Context, id, expectedHash string, consumedAt time.Time) error
}

type userCreator interface {
	Create(ctx context.Context, req models.CreateUserRequest, status models.UserStatus) (*models.User, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	users     userCreator
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	random    io.Reader
	hashCost  int
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, users userCreator, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger,
		config:    config,
		random:    rand.Reader,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Login authenticates an approved user. Unknown email, wrong password and a
// pending account all produce the same 401. A temporary password is consumed
// by its first successful use.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Email e senha são obrigatórios")
	}

	invalid := appErrors.Clone(appErrors.ErrInvalidCredentials, "Credenciais inválidas ou usuário não aprovado")

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalid
		}
		return nil, appErrors.Internal(err, "falha ao carregar usuário")
	}
	if user.Status != models.UserStatusApproved || user.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	mustChange := false
	if user.PasswordReset {
		// Only one login may win the temporary password.
		if err := s.repo.ConsumeTemporaryPassword(ctx, user.ID, user.PasswordHash, time.Now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, invalid
			}
			return nil, appErrors.Internal(err, "falha ao invalidar senha temporária")
		}
		user.PasswordHash = ""
		mustChange = true
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao gerar token de acesso")
	}

	return &models.LoginResponse{
		User:               user,
		Token:              token,
		ExpiresIn:          int64(s.config.AccessTokenExpiry.Seconds()),
		MustChangePassword: mustChange,
		Message:            "Login realizado com sucesso",
	}, nil
}

// Register creates a pending account awaiting administrator approval.
func (s *AuthService) Register(ctx context.Context, req models.CreateUserRequest) (*models.UserResponse, error) {
	user, err := s.users.Create(ctx, req, models.UserStatusPending)
	if err != nil {
		return nil, err
	}
	return &models.UserResponse{
		User:    user,
		Message: "Cadastro realizado com sucesso! Aguarde aprovação do administrador.",
	}, nil
}

// RequestReset replaces the password of an approved user with a random
// temporary one and returns it. The plaintext is never logged or stored.
func (s *AuthService) RequestReset(ctx context.Context, req models.ResetPasswordRequest) (*models.ResetPasswordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Email é obrigatório")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "falha ao carregar usuário")
	}
	if user == nil || user.Status != models.UserStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Usuário não encontrado ou não aprovado")
	}

	temp, err := s.generateTempPassword()
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao gerar senha temporária")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), s.hashCost)
	if err != nil {
		return nil, appErrors.Internal(err, "falha ao processar senha")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), true, time.Now().UTC()); err != nil {
		return nil, appErrors.Internal(err, "falha ao atualizar senha")
	}

	logger.ForContext(ctx, s.logger).Info("temporary password issued", zap.String("user_id", user.ID))
	return &models.ResetPasswordResponse{
		Message:      "Nova senha temporária gerada com sucesso. Use a senha temporária para fazer login.",
		TempPassword: temp,
		Email:        user.Email,
	}, nil
}

// ChangePassword sets a new password. The current password is required unless
// the user has just consumed a temporary one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "Nova senha deve ter no mínimo 6 caracteres")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "falha ao carregar usuário")
	}

	if user.PasswordHash != "" {
		if req.OldPassword == "" {
			return appErrors.Clone(appErrors.ErrValidation, "Senha atual é obrigatória")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			return appErrors.Clone(appErrors.ErrForbidden, "Senha atual incorreta")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return appErrors.Internal(err, "falha ao processar senha")
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash), false, time.Now().UTC()); err != nil {
		return appErrors.Internal(err, "falha ao atualizar senha")
	}
	logger.ForContext(ctx, s.logger).Info("password changed", zap.String("user_id", userID))
	return nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgUserNotFound)
		}
		return nil, appErrors.Internal(err, "falha ao carregar usuário")
	}
	return user, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "token inválido")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token inválido")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) generateTempPassword() (string, error) {
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	buf := make([]byte, tempPasswordLength)
	for i := range buf {
		n, err := rand.Int(s.random, max)
		if err != nil {
			return "", err
		}
		buf[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
