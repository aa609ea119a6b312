package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMissingReference is returned when a write points at a parent row that does not exist.
	ErrMissingReference = errors.New("missing reference")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapConstraintError translates PostgreSQL constraint violations into the
// repository sentinels while keeping the constraint name for logs.
func mapConstraintError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrMissingReference, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns an update or delete that matched nothing into sql.ErrNoRows.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
