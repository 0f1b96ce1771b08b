package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes session tokens before they expire (logout)
type TokenBlacklist interface {
	// Add revokes the token with the given JTI for ttl
	Add(ctx context.Context, jti string, ttl time.Duration) error
	// IsBlacklisted reports whether the JTI was revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Close() error
}

const blacklistKeyPrefix = "token:blacklist:"

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist connects to Redis and verifies the connection
func NewRedisTokenBlacklist(ctx context.Context, cfg config.RedisConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}
	return NewRedisTokenBlacklistWithClient(client), nil
}

// NewRedisTokenBlacklistWithClient wraps an existing Redis client
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (b *RedisTokenBlacklist) key(jti string) string {
	return blacklistKeyPrefix + jti
}

// Add stores the JTI with a TTL matching the token's remaining lifetime
func (b *RedisTokenBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if the JTI key exists
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// Ping checks Redis connectivity, used by the health endpoint
func (b *RedisTokenBlacklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revoked JTIs in process memory.
// It is only correct for a single instance deployment.
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti -> expiry
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewInMemoryTokenBlacklist creates the blacklist and starts a goroutine
// that purges expired entries every cleanupInterval. Call Close to stop it.
func NewInMemoryTokenBlacklist(cleanupInterval time.Duration) *InMemoryTokenBlacklist {
	b := &InMemoryTokenBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.cleanupLoop(cleanupInterval)
	return b
}

func (b *InMemoryTokenBlacklist) cleanupLoop(interval time.Duration) {
	defer close(b.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.purgeExpired()
		case <-b.stop:
			return
		}
	}
}

func (b *InMemoryTokenBlacklist) purgeExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for jti, exp := range b.entries {
		if !now.Before(exp) {
			delete(b.entries, jti)
		}
	}
}

// Add revokes the JTI until now+ttl
func (b *InMemoryTokenBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = b.now().Add(ttl)
	return nil
}

// IsBlacklisted reports whether the JTI is revoked and not yet expired
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(exp) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked entries
func (b *InMemoryTokenBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Close stops the cleanup goroutine
func (b *InMemoryTokenBlacklist) Close() error {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
	})
	return nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
