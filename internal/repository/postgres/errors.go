package postgres

import (
	"errors"
	"fmt"

	"seriatim/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == "23505"
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgInvalidTextError checks if a value could not be parsed for its column type (e.g. a malformed UUID)
func IsPgInvalidTextError(err error) bool {
	return pgErrorCode(err) == "22P02"
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return pgErrorCode(err) == "23503"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// TranslateError maps driver errors onto domain errors. op describes the
// failed operation and resource/id name the row involved.
func TranslateError(err error, op, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case IsPgNoRowsError(err), IsPgInvalidTextError(err):
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	case IsPgDuplicateError(err):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s %s already exists", resource, id),
			ResourceType: resource,
			ResourceID:   id,
		}
	case IsPgForeignKeyError(err):
		return fmt.Errorf("%s: %s %s references a missing row: %w", op, resource, id, domain.ErrValidation)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
