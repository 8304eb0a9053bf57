package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL integrity violation codes.
const (
	pgNotNullCode    = "23502"
	pgForeignKeyCode = "23503"
	pgDuplicateCode  = "23505"
	pgCheckCode      = "23514"
)

// ErrConstraint matches every ConstraintError.
var ErrConstraint = errors.New("constraint violation")

// ConstraintError reports a row rejected by a not-null, foreign key, or
// check constraint.
type ConstraintError struct {
	Code       string
	Constraint string
	Column     string
	Err        error
}

func (e *ConstraintError) Error() string {
	switch {
	case e.Constraint != "":
		return fmt.Sprintf("constraint violation: %s", e.Constraint)
	case e.Column != "":
		return fmt.Sprintf("constraint violation: column %s", e.Column)
	default:
		return "constraint violation"
	}
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

func (e *ConstraintError) Unwrap() error { return e.Err }

// MapError translates database errors to domain errors. sql.ErrNoRows maps
// to notFoundErr, unique violations to duplicateErr, and other integrity
// violations to a *ConstraintError. Everything else is returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgDuplicateCode:
		return duplicateErr
	case pgNotNullCode, pgForeignKeyCode, pgCheckCode:
		return &ConstraintError{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Column:     pgErr.ColumnName,
			Err:        err,
		}
	}
	return err
}
