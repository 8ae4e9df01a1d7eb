package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service-level errors mapped to API error codes by the handlers.
var (
	ErrNotFound                 = errors.New("resource not found")
	ErrDuplicateActiveStructure = errors.New("an active fee structure already bills this scope")
	ErrStructureInactive        = errors.New("fee structure is inactive")
	ErrFineNotApplicable        = errors.New("fine does not apply to this fee yet")
	ErrInvalidLimit             = errors.New("limit must be between 1 and 500")
)

// MaxPendingLimit caps the per-student pending aggregate.
const MaxPendingLimit = 500

// ValidationError carries field-level input problems detected before any
// storage access.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// notFound translates a missing row into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
