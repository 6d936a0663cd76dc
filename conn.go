package pgcrud

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// txStatusIdle is the ReadyForQuery status of a connection outside any
// transaction block.
const txStatusIdle = 'I'

// WithConn checks out one connection, passes it to fn and always returns it
// to the pool.
//
// If fn returns an error or panics while the connection is inside a
// transaction, ROLLBACK is issued before the connection goes back. The error
// is returned unchanged and a panic is re-raised. A connection the driver
// considers broken is still handed back; pgxpool destroys it on release.
func (m *Manager) WithConn(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) (err error) {
	if m.closed.Load() {
		return ErrClosed
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to acquire connection")
		return err
	}
	defer conn.Release()

	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, conn)
			m.log.Error().Interface("panic", p).Msg("Database operation panicked")
			panic(p)
		}
		if err != nil {
			m.rollback(ctx, conn)
			m.log.Error().Err(err).Msg("Database operation failed")
		}
	}()

	return fn(ctx, conn)
}

// rollback aborts any transaction left open on conn. It runs even when ctx
// is already cancelled so the connection is clean when it is returned.
func (m *Manager) rollback(ctx context.Context, conn *pgxpool.Conn) {
	pgConn := conn.Conn().PgConn()
	if pgConn.IsClosed() || pgConn.TxStatus() == txStatusIdle {
		return
	}
	if _, err := conn.Exec(context.WithoutCancel(ctx), "ROLLBACK"); err != nil {
		m.log.Error().Err(err).Msg("Failed to roll back transaction")
	}
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	// AcquiredConns is the number of connections currently checked out.
	AcquiredConns int32
	IdleConns     int32
	TotalConns    int32
	MaxConns      int32

	AcquireCount         int64
	EmptyAcquireCount    int64
	CanceledAcquireCount int64
}

// Stats returns the current pool counters.
func (m *Manager) Stats() PoolStats {
	s := m.pool.Stat()
	return PoolStats{
		AcquiredConns:        s.AcquiredConns(),
		IdleConns:            s.IdleConns(),
		TotalConns:           s.TotalConns(),
		MaxConns:             s.MaxConns(),
		AcquireCount:         s.AcquireCount(),
		EmptyAcquireCount:    s.EmptyAcquireCount(),
		CanceledAcquireCount: s.CanceledAcquireCount(),
	}
}
