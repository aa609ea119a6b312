package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/chamada-api/internal/models"
)

type seedUserStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.User) error
}

type seedUnitStore interface {
	Create(ctx context.Context, unit *models.Unit) error
}

type seedCourseStore interface {
	Create(ctx context.Context, course *models.Course) error
}

type seedClassStore interface {
	Create(ctx context.Context, class *models.Class) error
}

type seedStudentStore interface {
	Create(ctx context.Context, student *models.Student) error
}

// SeedStores groups the stores populated with sample data.
type SeedStores struct {
	Users    seedUserStore
	Units    seedUnitStore
	Courses  seedCourseStore
	Classes  seedClassStore
	Students seedStudentStore
}

// SeedService fills an empty installation with sample data.
type SeedService struct {
	stores   SeedStores
	password string
	logger   *zap.Logger
}

// NewSeedService constructs a SeedService. password is given to every
// sample user.
func NewSeedService(stores SeedStores, password string, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{stores: stores, password: password, logger: logger}
}

// Run seeds sample data when no user exists yet. It reports whether anything
// was written.
func (s *SeedService) Run(ctx context.Context) (bool, error) {
	total, err := s.stores.Users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if total > 0 {
		return false, nil
	}

	units := []models.Unit{
		{ID: "unit1", Name: "Unidade São Paulo", Address: "Rua das Flores, 123 - Centro, São Paulo - SP", Phone: "(11) 1234-5678"},
		{ID: "unit2", Name: "Unidade Rio de Janeiro", Address: "Av. Copacabana, 456 - Copacabana, Rio de Janeiro - RJ", Phone: "(21) 9876-5432"},
	}
	for i := range units {
		if err := s.stores.Units.Create(ctx, &units[i]); err != nil {
			return false, fmt.Errorf("seed unit %s: %w", units[i].ID, err)
		}
	}

	courses := []models.Course{
		{ID: "course1", Name: "Tecnologia da Informação", Description: "Curso básico de programação e informática", Duration: "160", UnitID: "unit1"},
		{ID: "course2", Name: "Extensão", Description: "Curso de extensão em habilidades básicas", Duration: "80", UnitID: "unit1"},
		{ID: "course3", Name: "Administração", Description: "Curso de administração e gestão", Duration: "120", UnitID: "unit2"},
	}
	for i := range courses {
		if err := s.stores.Courses.Create(ctx, &courses[i]); err != nil {
			return false, fmt.Errorf("seed course %s: %w", courses[i].ID, err)
		}
	}

	classes := []models.Class{
		{ID: "class1", Name: "TI - Turma A", CourseID: "course1", Course: "Tecnologia da Informação", InstructorID: "joao@ios.org.br", UnitID: "unit1", Unit: "Unidade São Paulo", Cycle: "01/2025", Period: "manhã"},
		{ID: "class2", Name: "TI - Turma B", CourseID: "course1", Course: "Tecnologia da Informação", InstructorID: "joao@ios.org.br", UnitID: "unit1", Unit: "Unidade São Paulo", Cycle: "01/2025", Period: "manhã"},
		{ID: "class3", Name: "Extensão - Turma A", CourseID: "course2", Course: "Extensão", InstructorID: "ana@ios.org.br", UnitID: "unit1", Unit: "Unidade São Paulo", Cycle: "01/2025", Period: "tarde"},
	}
	for i := range classes {
		if err := s.stores.Classes.Create(ctx, &classes[i]); err != nil {
			return false, fmt.Errorf("seed class %s: %w", classes[i].ID, err)
		}
	}

	students := []models.Student{
		{Name: "Maria Oliveira", CPF: "123.456.789-01", ClassID: "class1"},
		{Name: "Pedro Santos", CPF: "234.567.890-12", ClassID: "class1"},
		{Name: "Ana Souza", CPF: "345.678.901-23", ClassID: "class1"},
		{Name: "Carlos Lima", CPF: "456.789.012-34", ClassID: "class1"},
		{Name: "Juliana Costa", CPF: "567.890.123-45", ClassID: "class1"},
		{Name: "Roberto Silva", CPF: "678.901.234-56", ClassID: "class2"},
		{Name: "Fernanda Rocha", CPF: "789.012.345-67", ClassID: "class2"},
		{Name: "Lucas Pereira", CPF: "890.123.456-78", ClassID: "class2"},
		{Name: "Camila Ferreira", CPF: "901.234.567-89", ClassID: "class3"},
		{Name: "Diego Almeida", CPF: "012.345.678-90", ClassID: "class3"},
	}
	for i := range students {
		students[i].Status = models.StudentStatusActive
		if err := s.stores.Students.Create(ctx, &students[i]); err != nil {
			return false, fmt.Errorf("seed student %s: %w", students[i].CPF, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}
	unitID, unitName := "unit1", "Unidade São Paulo"
	approvedAt := time.Now().UTC()
	users := []models.User{
		{Name: "Professor João Silva", Email: "joao@ios.org.br", CPF: "123.456.789-00", Role: models.RoleInstructor},
		{Name: "Ana Costa", Email: "ana@ios.org.br", CPF: "234.567.890-11", Role: models.RolePedagogue},
	}
	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].Status = models.UserStatusApproved
		users[i].UnitID = &unitID
		users[i].Unit = &unitName
		users[i].ApprovedAt = &approvedAt
		if err := s.stores.Users.Create(ctx, &users[i]); err != nil {
			return false, fmt.Errorf("seed user %s: %w", users[i].Email, err)
		}
	}

	s.logger.Info("sample data seeded",
		zap.Int("units", len(units)),
		zap.Int("courses", len(courses)),
		zap.Int("classes", len(classes)),
		zap.Int("students", len(students)),
		zap.Int("users", len(users)),
	)
	return true, nil
}
