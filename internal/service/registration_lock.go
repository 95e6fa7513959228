package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	registrationLockTTL     = 10 * time.Second
	registrationLockTimeout = 500 * time.Millisecond
)

// RegistrationLock serializa registros concurrentes del mismo email.
// El indice unico del store sigue siendo la fuente de verdad.
type RegistrationLock interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type memoryRegistrationLock struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]time.Time
}

// NewMemoryRegistrationLock crea un lock en memoria para un solo proceso.
func NewMemoryRegistrationLock(ttl time.Duration) RegistrationLock {
	if ttl <= 0 {
		ttl = registrationLockTTL
	}
	return &memoryRegistrationLock{
		ttl:   ttl,
		items: make(map[string]time.Time),
	}
}

func (l *memoryRegistrationLock) TryLock(_ context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	if exp, ok := l.items[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.items[key] = now.Add(l.ttl)
	return true, nil
}

func (l *memoryRegistrationLock) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, strings.TrimSpace(key))
	return nil
}

type redisLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Solo borra la llave si el valor sigue siendo el token de este proceso.
const redisUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisRegistrationLock struct {
	client redisLocker
	ttl    time.Duration
	prefix string
	owner  string
}

// NewRedisRegistrationLock devuelve nil si no hay cliente.
func NewRedisRegistrationLock(client *redis.Client, ttl time.Duration) RegistrationLock {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = registrationLockTTL
	}
	return &redisRegistrationLock{
		client: client,
		ttl:    ttl,
		prefix: "auth:register:",
		owner:  uuid.NewString(),
	}
}

// TryLock falla abierto ante errores de redis.
func (l *redisRegistrationLock) TryLock(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, registrationLockTimeout)
	defer cancel()
	ok, err := l.client.SetNX(ctx, l.prefix+key, l.owner, l.ttl).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}

func (l *redisRegistrationLock) Unlock(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), registrationLockTimeout)
	defer cancel()
	return l.client.Eval(ctx, redisUnlockScript, []string{l.prefix + key}, l.owner).Err()
}
