package txmanager

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-engine/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (tx *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (tx *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (tx *fakeTx) Commit() error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	begun int
	opts  []*sql.TxOptions
	txs   []*fakeTx
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begun++
	b.opts = append(b.opts, opts)
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func TestDo_DefaultIsolationSingleAttempt(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	calls := 0
	err := m.Do(context.Background(), func(txCtx context.Context) error {
		calls++
		assert.True(t, dbmetrics.IsInTransaction(txCtx))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Equal(t, 1, beginner.begun)
	assert.Nil(t, beginner.opts[0])
	assert.True(t, beginner.txs[0].committed)
}

// Do не ретраит 40001: конфликты сериализации — забота DoSerializable,
// очередные воркеры под SKIP LOCKED их и не порождают
func TestDo_DoesNotRetrySerializationFailure(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	serErr := &pq.Error{Code: pq.ErrorCode(pgSerializationFailure)}
	err := m.Do(context.Background(), func(txCtx context.Context) error {
		return serErr
	})

	require.ErrorIs(t, err, serErr)
	assert.Equal(t, 1, beginner.begun)
	assert.True(t, beginner.txs[0].rolledBack)
	assert.False(t, beginner.txs[0].committed)
}

func TestDoSerializable_RetriesSerializationFailure(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(txCtx context.Context) error {
		return &pq.Error{Code: pq.ErrorCode(pgSerializationFailure)}
	})

	require.Error(t, err)
	assert.Equal(t, maxSerializationRetries, beginner.begun)
	for _, opts := range beginner.opts {
		require.NotNil(t, opts)
		assert.Equal(t, sql.LevelSerializable, opts.Isolation)
	}
}
