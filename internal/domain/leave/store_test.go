package leave

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTx implements only the pgx.Tx methods InTx calls.
type recordingTx struct {
	pgx.Tx
	committed  bool
	rollbacks  int
	rolledBack bool
}

func (t *recordingTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *recordingTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type txConn struct {
	tx *recordingTx
}

func (c *txConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (c *txConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (c *txConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (c *txConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.tx, nil
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	conn := &txConn{tx: &recordingTx{}}
	store := NewStore(conn)

	require.NoError(t, store.InTx(context.Background(), func(tx TxStore) error { return nil }))
	assert.True(t, conn.tx.committed)
	assert.False(t, conn.tx.rolledBack)
}

func TestInTxRollsBackOnError(t *testing.T) {
	conn := &txConn{tx: &recordingTx{}}
	store := NewStore(conn)
	boom := errors.New("balance write failed")

	err := store.InTx(context.Background(), func(tx TxStore) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, conn.tx.committed)
	assert.True(t, conn.tx.rolledBack)
}

func TestInTxRollsBackWhenCallbackPanics(t *testing.T) {
	conn := &txConn{tx: &recordingTx{}}
	store := NewStore(conn)

	assert.Panics(t, func() {
		_ = store.InTx(context.Background(), func(tx TxStore) error { panic("nil balance") })
	})
	assert.False(t, conn.tx.committed)
	assert.True(t, conn.tx.rolledBack)
	assert.Equal(t, 1, conn.tx.rollbacks)
}

func TestInTxRequiresTransactionalConnection(t *testing.T) {
	store := NewStore(nil)
	err := store.InTx(context.Background(), func(tx TxStore) error { return nil })
	assert.Error(t, err)
}
