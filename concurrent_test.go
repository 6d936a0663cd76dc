package pgcrud_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuku/pgcrud"
	"github.com/yuku/pgcrud/internal/testhelper"
)

func TestManagerConcurrency(t *testing.T) {
	ctx := context.Background()
	const maxConns = 2
	m := testhelper.NewManager(t, func(cfg *pgcrud.Config) {
		cfg.MinConnections = 1
		cfg.MaxConnections = maxConns
	})
	table := testhelper.CreateUsersTable(t, m)

	t.Run("ConcurrentCreate", func(t *testing.T) {
		const numWorkers = 10
		var wg sync.WaitGroup
		errs := make(chan error, numWorkers)

		for i := 0; i < numWorkers; i++ {
			wg.Add(1)
			go func(workerID int) {
				defer wg.Done()
				_, err := m.Create(ctx, table, pgcrud.Fields{
					"name":  fmt.Sprintf("worker-%d", workerID),
					"email": fmt.Sprintf("worker-%d@example.com", workerID),
				})
				errs <- err
			}(i)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		n, err := m.Count(ctx, table, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(numWorkers), n)
		assert.Zero(t, m.Stats().AcquiredConns, "every connection must be returned")
		assert.LessOrEqual(t, m.Stats().TotalConns, int32(maxConns))
	})

	t.Run("BlockingWhenExhausted", func(t *testing.T) {
		release := make(chan struct{})
		var held sync.WaitGroup
		var done sync.WaitGroup

		// Hold every connection.
		for i := 0; i < maxConns; i++ {
			held.Add(1)
			done.Add(1)
			go func() {
				defer done.Done()
				err := m.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
					held.Done()
					<-release
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		held.Wait()
		assert.Equal(t, int32(maxConns), m.Stats().AcquiredConns)

		// One more waits until the deadline.
		ctxTimeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := m.Get(ctxTimeout, table, 1)
		assert.Error(t, err, "expected timeout while the pool is exhausted")
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

		// A waiter is served once a connection is returned.
		got := make(chan error, 1)
		go func() {
			_, err := m.Get(ctx, table, 1)
			got <- err
		}()

		select {
		case err := <-got:
			t.Fatalf("acquire did not block: %v", err)
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		done.Wait()

		select {
		case err := <-got:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("waiter was not served after release")
		}
		assert.Zero(t, m.Stats().AcquiredConns)
	})
}
