package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/chamada-api/internal/models"
	appErrors "github.com/noah-isme/chamada-api/pkg/errors"
)

// validationError turns validator output into a 400. Missing fields share one
// caller-facing message; format failures name the offending field.
func validationError(err error, requiredMessage string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() != "required" {
				return appErrors.Validation(err, fmt.Sprintf("Campo inválido: %s", strings.ToLower(fe.Field())))
			}
		}
	}
	return appErrors.Validation(err, requiredMessage)
}

type unitLookup interface {
	FindByID(ctx context.Context, id string) (*models.Unit, error)
}

// resolveUnit returns the unit reference and name stored on users. An unknown
// unit keeps the id with no name.
func resolveUnit(ctx context.Context, units unitLookup, unitID string) (*string, *string, error) {
	if unitID == "" {
		return nil, nil, nil
	}
	id := unitID
	unit, err := units.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &id, nil, nil
		}
		return nil, nil, err
	}
	name := unit.Name
	return &id, &name, nil
}

// statsInvalidator drops cached dashboard counters after a write.
type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

func invalidate(ctx context.Context, inv statsInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
