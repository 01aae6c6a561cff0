package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coverline/internal/config"
	"coverline/internal/domain"
	"coverline/internal/port"
)

const keyPrefix = "coverline:extract:"

// releaseScript deletes the key only if it still carries our token, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLock is an ExtractionLock shared by every process pointing at the same Redis.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient opens a client from the lock config and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg *config.LockConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// NewRedisLock wraps client. Locks expire after ttl if the holder never releases.
func NewRedisLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLock {
	return &RedisLock{client: client, ttl: ttl, logger: logger}
}

var _ port.ExtractionLock = (*RedisLock)(nil)

func (l *RedisLock) Acquire(ctx context.Context, docID uuid.UUID) (func(), error) {
	key := keyPrefix + docID.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redisLock.Acquire: %w", err)
	}
	if !ok {
		return nil, domain.ErrExtractionInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warn("redisLock.release failed", zap.String("document_id", docID.String()), zap.Error(err))
			}
		})
	}, nil
}
