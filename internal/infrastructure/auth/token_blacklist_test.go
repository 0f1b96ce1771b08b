package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/goleak"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist(time.Hour)
	defer bl.Close()

	ok, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Add(ctx, "jti-1", time.Minute))
	ok, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, bl.Add(ctx, "jti-zero", 0))
	assert.Equal(t, 1, bl.Len())
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist(time.Hour)
	defer bl.Close()

	now := time.Now()
	bl.now = func() time.Time { return now }
	require.NoError(t, bl.Add(ctx, "a", time.Minute))
	require.NoError(t, bl.Add(ctx, "b", time.Hour))

	bl.now = func() time.Time { return now.Add(2 * time.Minute) }
	bl.purgeExpired()
	assert.Equal(t, 1, bl.Len())

	ok, err := bl.IsBlacklisted(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryTokenBlacklist_CloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)

	bl := NewInMemoryTokenBlacklist(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, bl.Close())
	require.NoError(t, bl.Close())
}

func TestRedisTokenBlacklist(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	bl := NewRedisTokenBlacklistWithClient(redis.NewClient(&redis.Options{Addr: endpoint}))
	defer bl.Close()
	require.NoError(t, bl.Ping(ctx))

	require.NoError(t, bl.Add(ctx, "jti-r", time.Minute))
	ok, err := bl.IsBlacklisted(ctx, "jti-r")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bl.IsBlacklisted(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}
