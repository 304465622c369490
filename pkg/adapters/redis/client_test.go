package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/txscope/pkg/adapters/redis"
	"github.com/aretw0/txscope/pkg/domain"
	"github.com/aretw0/txscope/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(rdb), mr
}

func TestRedisClient_Contract(t *testing.T) {
	client, _ := newTestClient(t)
	ports.RunClientContract(t, client)
}

func TestRedisClient_CommitIsSingleTransaction(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	sess, err := client.StartSession(ctx, domain.DefaultSessionOptions())
	require.NoError(t, err)
	require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))

	require.NoError(t, sess.Set(ctx, "a", "1"))
	require.NoError(t, sess.Set(ctx, "b", "2"))

	// Nothing reaches the store until commit.
	assert.False(t, mr.Exists("txscope:a"))
	assert.False(t, mr.Exists("txscope:b"))

	require.NoError(t, sess.Commit(ctx))
	require.NoError(t, sess.End(ctx))

	got, err := mr.Get("txscope:a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	got, err = mr.Get("txscope:b")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRedisClient_StartSessionUnreachable(t *testing.T) {
	client, mr := newTestClient(t)
	mr.Close()

	_, err := client.StartSession(context.Background(), domain.DefaultSessionOptions())
	require.Error(t, err)

	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestRedisClient_KeyPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	client := redis.NewFromClient(rdb, redis.WithPrefix("custom:"))
	ctx := context.Background()

	sess, err := client.StartSession(ctx, domain.DefaultSessionOptions())
	require.NoError(t, err)
	require.NoError(t, sess.Begin(ctx, domain.DefaultSessionOptions().TxOptions()))
	require.NoError(t, sess.Set(ctx, "k", "v"))
	require.NoError(t, sess.Commit(ctx))
	require.NoError(t, sess.End(ctx))

	got, err := mr.Get("custom:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
