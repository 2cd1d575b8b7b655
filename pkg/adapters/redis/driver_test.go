package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/accelerate/internal/runtime"
	"github.com/aretw0/accelerate/pkg/adapters/redis"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisDriver_Contract(t *testing.T) {
	ports.RunDriverContract(t, func(t *testing.T) ports.Driver {
		_, client := newClient(t)
		return redis.NewFromClient(client)
	}, ports.DriverFixture{
		ValidBody:   `redis.call("SET", "widgets", "1")`,
		InvalidBody: `redis.call("NOPE")`,
	})
}

func TestRedisDriver_Prefix(t *testing.T) {
	mr, client := newClient(t)

	d := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, d.SetStatus(ctx, 2))

	assert.True(t, mr.Exists("custom:app:status"), "Expected status key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:history"), "Expected history with custom prefix to exist")
	assert.False(t, mr.Exists(redis.DefaultPrefix+"status"))
}

func TestRedisDriver_History(t *testing.T) {
	_, client := newClient(t)
	d := redis.NewFromClient(client)
	ctx := context.Background()

	for _, s := range []int{1, 2, 1} {
		require.NoError(t, d.SetStatus(ctx, s))
	}

	history, err := d.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 1, history[0].Status)
	assert.Equal(t, 2, history[1].Status)
	assert.Equal(t, 1, history[2].Status)
	assert.False(t, history[0].Inserted.IsZero())
}

func TestRedisDriver_GarbageStatusIsUnset(t *testing.T) {
	mr, client := newClient(t)
	d := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"status", "not-a-number"))

	_, ok, err := d.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDriver_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	d := redis.NewFromClient(client)
	mr.Close()

	ctx := context.Background()
	assert.ErrorIs(t, d.Init(ctx), domain.ErrBackendUnavailable)
	_, _, err := d.Status(ctx)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, d.SetStatus(ctx, 1), domain.ErrBackendUnavailable)
}

func TestRedisDriver_EngineRoundTrip(t *testing.T) {
	mr, client := newClient(t)
	d := redis.NewFromClient(client)

	motions := []domain.Motion{
		{Name: "users", Version: []int{1}, Add: `redis.call("SET", "users", "on")`, Sub: `redis.call("DEL", "users")`},
		{Name: "flags", Version: []int{2}, Add: `redis.call("HSET", "flags", "beta", "1")`, Sub: `redis.call("DEL", "flags")`},
	}
	engine := runtime.NewEngine(d, motions)
	ctx := context.Background()

	require.NoError(t, engine.Up(ctx))
	status, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status)
	assert.True(t, mr.Exists("users"))
	assert.Equal(t, "1", mr.HGet("flags", "beta"))

	require.NoError(t, engine.Down(ctx))
	status, err = engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.False(t, mr.Exists("users"))
	assert.False(t, mr.Exists("flags"))

	got, err := mr.Get(redis.DefaultPrefix + "status")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestRedisDriver_FailedScriptKeepsCheckpoint(t *testing.T) {
	_, client := newClient(t)
	d := redis.NewFromClient(client)

	motions := []domain.Motion{
		{Name: "ok", Version: []int{1}, Add: `return 1`, Sub: `return 1`},
		{Name: "broken", Version: []int{2}, Add: `return redis.error_reply("boom")`, Sub: `return 1`},
	}
	engine := runtime.NewEngine(d, motions)
	ctx := context.Background()

	err := engine.Up(ctx)
	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "broken", stepErr.Motion)
	assert.Equal(t, 1, stepErr.Index)

	stored, ok, err := d.Status(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, stored)
}
