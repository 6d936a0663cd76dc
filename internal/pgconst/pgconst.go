package pgconst

import (
	"regexp"
	"strings"
)

const (
	// MaxIdentifierLength is the maximum length of a PostgreSQL identifier.
	MaxIdentifierLength = 63

	// DefaultPort is the port PostgreSQL listens on unless configured otherwise.
	DefaultPort = 5432
)

// PostgreSQL error codes (SQLSTATE class 23, integrity constraint violation).
const (
	NotNullViolationCode    = "23502"
	ForeignKeyViolationCode = "23503"
	UniqueViolationCode     = "23505"
	CheckViolationCode      = "23514"
)

var (
	// PostgreSQL identifier regex pattern: starts with letter/underscore,
	// followed by letters/digits/underscores/dollar signs, max 63 characters
	postgresIdentifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)
)

// IsValidPostgreSQLIdentifier checks if the given string is a valid PostgreSQL identifier.
// PostgreSQL identifiers must start with a letter or underscore, followed by letters,
// digits, underscores, or dollar signs, and must not exceed 63 characters.
func IsValidPostgreSQLIdentifier(identifier string) bool {
	if len(identifier) == 0 || len(identifier) > MaxIdentifierLength {
		return false
	}
	return postgresIdentifierRegex.MatchString(identifier)
}

// IsValidQualifiedName reports whether name is an identifier optionally
// prefixed by a schema, e.g. "users" or "public.users".
func IsValidQualifiedName(name string) bool {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return false
	}
	for _, part := range parts {
		if !IsValidPostgreSQLIdentifier(part) {
			return false
		}
	}
	return true
}
