package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/chamada-api/internal/models"
)

// UnitRepository handles persistence for units.
type UnitRepository struct {
	db *sqlx.DB
}

// NewUnitRepository constructs a UnitRepository.
func NewUnitRepository(db *sqlx.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// List returns units in creation order.
func (r *UnitRepository) List(ctx context.Context) ([]models.Unit, error) {
	units := make([]models.Unit, 0)
	const query = `SELECT id, name, address, phone, created_at, updated_at FROM units ORDER BY seq ASC`
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// FindByID fetches a unit.
func (r *UnitRepository) FindByID(ctx context.Context, id string) (*models.Unit, error) {
	const query = `SELECT id, name, address, phone, created_at, updated_at FROM units WHERE id = $1`
	var unit models.Unit
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &unit, nil
}

// Count returns the number of units.
func (r *UnitRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM units`); err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return total, nil
}

// Create inserts a unit.
func (r *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO units (id, name, address, phone, created_at) VALUES (:id, :name, :address, :phone, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, unit); err != nil {
		return mapConstraintError("create unit", err)
	}
	return nil
}

// Update replaces the unit fields.
func (r *UnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	now := time.Now().UTC()
	unit.UpdatedAt = &now
	const query = `UPDATE units SET name = :name, address = :address, phone = :phone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, unit)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	return requireAffected(res, "update unit")
}
