package pgcrud

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yuku/pgcrud/internal/querylog"
)

// Manager is a table-agnostic CRUD interface over a bounded pgxpool.Pool.
//
// A Manager is open after New returns and closed after Close. All methods are
// safe for concurrent use; each call checks out exactly one connection for
// its duration and returns it on every exit path.
type Manager struct {
	cfg    Config
	pool   *pgxpool.Pool
	log    zerolog.Logger
	closed atomic.Bool
}

type options struct {
	logger     zerolog.Logger
	queryLevel *zerolog.Level
	poolConfig func(*pgxpool.Config)
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger. The default is the global zerolog logger
// tagged with component=pgcrud.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithQueryLogLevel logs every statement the pool runs at the given level.
func WithQueryLogLevel(level zerolog.Level) Option {
	return func(o *options) { o.queryLevel = &level }
}

// WithPoolConfig lets the caller adjust the parsed pgxpool configuration
// (lifetimes, health checks, hooks) before the pool is built.
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(o *options) { o.poolConfig = fn }
}

// New builds the connection pool for cfg and verifies it with a ping.
// Unreachable hosts and rejected credentials fail here; nothing is retried.
func New(ctx context.Context, cfg Config, opts ...Option) (*Manager, error) {
	o := options{logger: log.Logger.With().Str("component", "pgcrud").Logger()}
	for _, opt := range opts {
		opt(&o)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to initialize connection pool")
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	if o.queryLevel != nil {
		poolCfg.ConnConfig.Tracer = querylog.NewTracer(o.logger, *o.queryLevel)
	}
	if o.poolConfig != nil {
		o.poolConfig(poolCfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to initialize connection pool")
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// pgxpool connects lazily; ping so a bad host or password surfaces now.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		o.logger.Error().Err(err).Str("db", cfg.String()).Msg("Failed to initialize connection pool")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	o.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("min_conns", poolCfg.MinConns).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("Database connection pool initialized")

	return &Manager{
		cfg:  cfg,
		pool: pool,
		log:  o.logger,
	}, nil
}

// Config returns a copy of the configuration the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

// Execute runs one parameterized statement on a scoped connection.
//
// With fetch set, every result row is returned and no explicit COMMIT is
// issued: the statement runs in autocommit mode, so INSERT/UPDATE ...
// RETURNING are durable once Execute returns. Without fetch, the statement
// runs inside BEGIN/COMMIT and no rows are returned.
//
// Driver errors are returned unchanged after the rollback.
func (m *Manager) Execute(ctx context.Context, query string, fetch bool, params ...any) ([]*Row, error) {
	var out []*Row
	err := m.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		if fetch {
			rows, err := conn.Query(ctx, query, params...)
			if err != nil {
				return err
			}
			out, err = collectRows(rows)
			return err
		}
		return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, query, params...)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteTx runs fn inside a single transaction on one scoped connection.
// The transaction commits if fn returns nil and rolls back otherwise.
func (m *Manager) ExecuteTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return m.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			return fn(ctx, tx)
		})
	})
}

// Create inserts one row built from fields and returns the stored row,
// including defaults and generated columns.
func (m *Manager) Create(ctx context.Context, table string, fields Fields) (*Row, error) {
	stmt, err := buildInsert(table, fields)
	if err != nil {
		return nil, err
	}
	rows, err := m.Execute(ctx, stmt.sql, true, stmt.args...)
	if err != nil {
		return nil, err
	}
	m.log.Debug().Str("table", table).Msg("Row created")
	return first(rows), nil
}

// Get returns the first row whose id column equals id, or nil if none does.
func (m *Manager) Get(ctx context.Context, table string, id any, opts ...RowOption) (*Row, error) {
	ro := newRowOptions(opts)
	stmt, err := buildSelectByID(table, ro.idColumn, id)
	if err != nil {
		return nil, err
	}
	rows, err := m.Execute(ctx, stmt.sql, true, stmt.args...)
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

// List returns the rows of table matching opts. Only equality conditions
// joined with AND are supported.
func (m *Manager) List(ctx context.Context, table string, opts ListOptions) ([]*Row, error) {
	stmt, err := buildSelect(table, opts)
	if err != nil {
		return nil, err
	}
	return m.Execute(ctx, stmt.sql, true, stmt.args...)
}

// Count returns the number of rows of table matching conditions.
func (m *Manager) Count(ctx context.Context, table string, conditions Fields) (int64, error) {
	stmt, err := buildCount(table, conditions)
	if err != nil {
		return 0, err
	}
	var n int64
	err = m.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, stmt.sql, stmt.args...).Scan(&n)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Update sets fields on the row whose id column equals id and returns the
// updated row, or nil if no row matched.
func (m *Manager) Update(ctx context.Context, table string, id any, fields Fields, opts ...RowOption) (*Row, error) {
	ro := newRowOptions(opts)
	stmt, err := buildUpdate(table, ro.idColumn, id, fields)
	if err != nil {
		return nil, err
	}
	rows, err := m.Execute(ctx, stmt.sql, true, stmt.args...)
	if err != nil {
		return nil, err
	}
	row := first(rows)
	if row != nil {
		m.log.Debug().Str("table", table).Interface("id", id).Msg("Row updated")
	}
	return row, nil
}

// Delete removes the rows whose id column equals id and reports whether
// any row was removed.
func (m *Manager) Delete(ctx context.Context, table string, id any, opts ...RowOption) (bool, error) {
	ro := newRowOptions(opts)
	stmt, err := buildDelete(table, ro.idColumn, id)
	if err != nil {
		return false, err
	}

	var deleted bool
	err = m.ExecuteTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmt.sql, stmt.args...)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CreateTable creates table with the given columns unless it already
// exists. Column types are passed through verbatim.
func (m *Manager) CreateTable(ctx context.Context, table string, columns []Column) error {
	stmt, err := buildCreateTable(table, columns)
	if err != nil {
		return err
	}
	if _, err := m.Execute(ctx, stmt.sql, false); err != nil {
		return err
	}
	m.log.Info().Str("table", table).Msg("Table created")
	return nil
}

// Ping checks that a connection can be acquired and the server answers.
func (m *Manager) Ping(ctx context.Context) error {
	return m.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.Ping(ctx)
	})
}

// Close closes every connection in the pool. Later calls on the manager
// return ErrClosed. Closing twice is a no-op.
func (m *Manager) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.pool.Close()
	m.log.Info().Msg("Database connection pool closed")
}

func first(rows []*Row) *Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// RowOption adjusts how Get, Update and Delete locate a row.
type RowOption func(*rowOptions)

type rowOptions struct {
	idColumn string
}

// IDColumn matches rows on col instead of "id".
func IDColumn(col string) RowOption {
	return func(o *rowOptions) { o.idColumn = col }
}

func newRowOptions(opts []RowOption) rowOptions {
	ro := rowOptions{idColumn: "id"}
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}
