package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/txscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunClientContract runs a suite of tests to verify that a Client
// implementation adheres to the transactional session contract.
func RunClientContract(t *testing.T, client Client) {
	ctx := context.Background()
	keyPrefix := "contract-" + time.Now().Format("20060102150405") + "-"

	start := func(t *testing.T, opts domain.SessionOptions) Session {
		t.Helper()
		sess, err := client.StartSession(ctx, opts)
		require.NoError(t, err, "StartSession should not return error")
		require.NotEmpty(t, sess.ID())
		return sess
	}

	t.Run("Commit Applies Staged Writes", func(t *testing.T) {
		key := keyPrefix + "commit"

		sess := start(t, domain.DefaultSessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, sess.Set(ctx, key, "v1"))

		// Read-your-writes inside the transaction.
		val, err := sess.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "v1", val)

		require.NoError(t, sess.Commit(ctx))
		require.NoError(t, sess.End(ctx))

		// A fresh session observes the committed value.
		other := start(t, domain.ReadOnlySessionOptions())
		require.NoError(t, other.Begin(ctx, domain.ReadOnlySessionOptions().TxOptions()))
		val, err = other.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "v1", val)
		require.NoError(t, other.Abort(ctx))
		require.NoError(t, other.End(ctx))
	})

	t.Run("Abort Discards Staged Writes", func(t *testing.T) {
		key := keyPrefix + "abort"

		sess := start(t, domain.DefaultSessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, sess.Set(ctx, key, "discarded"))
		require.NoError(t, sess.Abort(ctx))
		require.NoError(t, sess.End(ctx))

		other := start(t, domain.DefaultSessionOptions())
		require.NoError(t, other.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		_, err := other.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		require.NoError(t, other.Abort(ctx))
		require.NoError(t, other.End(ctx))
	})

	t.Run("Delete Staged And Committed", func(t *testing.T) {
		key := keyPrefix + "delete"

		sess := start(t, domain.DefaultSessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, sess.Set(ctx, key, "v1"))
		require.NoError(t, sess.Commit(ctx))
		require.NoError(t, sess.End(ctx))

		sess = start(t, domain.DefaultSessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, sess.Delete(ctx, key))

		// The staged delete is visible inside the transaction.
		_, err := sess.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)

		require.NoError(t, sess.Commit(ctx))
		require.NoError(t, sess.End(ctx))

		other := start(t, domain.DefaultSessionOptions())
		require.NoError(t, other.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		_, err = other.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		require.NoError(t, other.Abort(ctx))
		require.NoError(t, other.End(ctx))
	})

	t.Run("Get Missing Key", func(t *testing.T) {
		sess := start(t, domain.DefaultSessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		_, err := sess.Get(ctx, keyPrefix+"missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		require.NoError(t, sess.Abort(ctx))
		require.NoError(t, sess.End(ctx))
	})

	t.Run("Read Only Session Rejects Writes", func(t *testing.T) {
		sess := start(t, domain.ReadOnlySessionOptions())
		require.NoError(t, sess.Begin(ctx, domain.ReadOnlySessionOptions().TxOptions()))

		err := sess.Set(ctx, keyPrefix+"ro", "nope")
		assert.ErrorIs(t, err, domain.ErrReadOnlySession)
		err = sess.Delete(ctx, keyPrefix+"ro")
		assert.ErrorIs(t, err, domain.ErrReadOnlySession)

		require.NoError(t, sess.Abort(ctx))
		require.NoError(t, sess.End(ctx))
	})

	t.Run("Lifecycle Guards", func(t *testing.T) {
		sess := start(t, domain.DefaultSessionOptions())

		// Commit before Begin.
		err := sess.Commit(ctx)
		assert.ErrorIs(t, err, domain.ErrNoTransaction)

		require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, sess.Commit(ctx))

		// Second terminal call without a new transaction.
		err = sess.Abort(ctx)
		assert.ErrorIs(t, err, domain.ErrNoTransaction)

		require.NoError(t, sess.End(ctx))
		err = sess.End(ctx)
		assert.ErrorIs(t, err, domain.ErrSessionEnded)

		err = sess.Set(ctx, keyPrefix+"ended", "v")
		assert.Error(t, err)
	})

	t.Run("Sessions Are Isolated Until Commit", func(t *testing.T) {
		key := keyPrefix + "isolation"

		writer := start(t, domain.DefaultSessionOptions())
		require.NoError(t, writer.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
		require.NoError(t, writer.Set(ctx, key, fmt.Sprintf("%d", time.Now().UnixNano())))

		reader := start(t, domain.ReadOnlySessionOptions())
		require.NoError(t, reader.Begin(ctx, domain.ReadOnlySessionOptions().TxOptions()))
		_, err := reader.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "uncommitted writes must not leak across sessions")
		require.NoError(t, reader.Abort(ctx))
		require.NoError(t, reader.End(ctx))

		require.NoError(t, writer.Commit(ctx))
		require.NoError(t, writer.End(ctx))
	})
}
