// Package lock serializes multi-step sequences that share a key.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Mutex is an in-process keyed lock. Entries are dropped once no caller
// holds or waits on them.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewMutex() *Mutex {
	return &Mutex{locks: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done.
func (m *Mutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Mutex) release(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}

// Held reports how many keys currently have holders or waiters.
func (m *Mutex) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

var (
	ErrNotAcquired = errors.New("lock: not acquired")
	ErrNotHeld     = errors.New("lock: no longer held")
)

const unlockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// Redis is a SET NX lock shared by every instance that talks to the same
// Redis. A crashed holder releases the key when TTL expires.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	unlock *redis.Script
	logger Logger
}

// Logger receives release failures, which the unlock func cannot return.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// WithLogger sets where failed releases are reported.
func (l *Redis) WithLogger(logger Logger) *Redis {
	l.logger = logger
	return l
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		unlock: redis.NewScript(unlockScript),
	}
}

func (l *Redis) Key(key string) string {
	return l.prefix + key
}

// Lock polls SET NX until it wins or ctx is done.
func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	name := l.Key(key)
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w: %v", name, ErrNotAcquired, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	return l.releaser(name, token), nil
}

func (l *Redis) releaser(name, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.release(ctx, name, token); err != nil && l.logger != nil {
				l.logger.Errorf("lock release failed, ttl %s: %v", l.ttl, err)
			}
		})
	}
}

// release deletes name only while it still carries token.
func (l *Redis) release(ctx context.Context, name, token string) error {
	n, err := l.unlock.Run(ctx, l.rdb, []string{name}, token).Int64()
	if err != nil {
		return fmt.Errorf("unlock %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("unlock %s: %w", name, ErrNotHeld)
	}
	return nil
}
