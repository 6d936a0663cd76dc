package pgcrud

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yuku/pgcrud/internal/pgconst"
)

var (
	// ErrEmptyFields is returned by Create, Update and CreateTable when no
	// columns are given. The store is never contacted.
	ErrEmptyFields = errors.New("fields cannot be empty")

	// ErrInvalidIdentifier is returned when a table, column or ORDER BY term
	// is not a plain PostgreSQL identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("manager is closed")
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, pgconst.UniqueViolationCode)
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pgconst.ForeignKeyViolationCode)
}

// IsNotNullViolation reports whether err is a PostgreSQL not null violation.
func IsNotNullViolation(err error) bool {
	return hasCode(err, pgconst.NotNullViolationCode)
}

// IsCheckViolation reports whether err is a PostgreSQL check constraint violation.
func IsCheckViolation(err error) bool {
	return hasCode(err, pgconst.CheckViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
