package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockPrefix namespaces job locks in the shared store
const LockPrefix = "autoposter:job:"

// Lock is a held job lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out job locks so one cycle of a job runs at a time. TryLock
// returns acquired=false without error when another holder has the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lock Lock, acquired bool, err error)
}

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates job cycles across processes sharing one redis
type RedisLocker struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisLocker creates a Locker on client
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lock, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		l.logger.Debug("Job lock held elsewhere", zap.String("key", key))
		return nil, false, nil
	}
	return &redisLock{client: l.client, key: key, token: token}, true, nil
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

// LocalLocker serialises job cycles within this process only
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker creates an in-process Locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (Lock, bool, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, false, nil
	}
	return localLock{m}, true, nil
}

type localLock struct {
	m *sync.Mutex
}

func (l localLock) Release(context.Context) error {
	l.m.Unlock()
	return nil
}
