// Package pgcrud provides table-agnostic create, read, update and delete
// operations over a bounded pool of PostgreSQL connections.
//
// A Manager owns a pgxpool.Pool sized by Config.MinConnections and
// Config.MaxConnections. Every operation checks out exactly one connection
// for its duration and returns it on every exit path. Callers beyond the
// pool maximum wait until a connection is returned or their context ends.
//
// # Key Features
//
//   - Rows are returned as ordered column/value records (Row), with NULL as nil
//   - Values are always sent as bind parameters; table, column and ORDER BY
//     names must be plain identifiers and are rejected otherwise
//   - Equality filters, ORDER BY, LIMIT and OFFSET for listing
//   - Scoped connections with automatic ROLLBACK on error or panic
//   - Configuration from DB_* environment variables and .env files
//
// # Basic Usage
//
//	cfg, err := pgcrud.LoadConfig()
//	if err != nil {
//		return err
//	}
//
//	m, err := pgcrud.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	err = m.CreateTable(ctx, "users", []pgcrud.Column{
//		{Name: "id", Type: "SERIAL PRIMARY KEY"},
//		{Name: "name", Type: "TEXT NOT NULL"},
//		{Name: "email", Type: "TEXT UNIQUE"},
//	})
//
//	user, err := m.Create(ctx, "users", pgcrud.Fields{"name": "Ann", "email": "ann@example.com"})
//	id, _ := user.Get("id")
//
//	user, err = m.Get(ctx, "users", id)            // nil if absent
//	user, err = m.Update(ctx, "users", id, pgcrud.Fields{"name": "Ann B"})
//	deleted, err := m.Delete(ctx, "users", id)     // false if absent
//
// # Listing
//
//	rows, err := m.List(ctx, "users", pgcrud.ListOptions{
//		Conditions: pgcrud.Fields{"active": true},
//		OrderBy:    "name DESC, id",
//		Limit:      10,
//		Offset:     20,
//	})
//
// Conditions are matched with equality and joined with AND. A zero Limit or
// Offset is omitted.
//
// # Raw Statements
//
// Execute runs arbitrary parameterized SQL. With fetch set the rows are
// returned and the statement runs in autocommit mode; otherwise it runs
// inside BEGIN/COMMIT. ExecuteTx and WithConn give direct access to a
// transaction or a pooled connection.
//
// # Errors
//
// Driver errors are returned unchanged and can be inspected with
// IsUniqueViolation and its siblings, or with errors.As on *pgconn.PgError.
// After Close every operation returns ErrClosed.
package pgcrud
