package cache

import (
	"context"
	"sync"
	"time"
)

// Cache 统一缓存接口，value 一律为 string（JSON 编解码在业务侧）
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TTLFetcher 可选：返回剩余 TTL，<=0 表示永久或未知
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

type entry struct {
	val string
	exp time.Time
}

func (e entry) expired(now time.Time) bool { return !e.exp.IsZero() && now.After(e.exp) }

// Memory 进程内 L1，带 TTL，过期条目在读时淘汰
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
}

func NewMemory() *Memory { return &Memory{data: make(map[string]entry)} }

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if e.expired(time.Now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", nil
	}
	return e.val, nil
}

func (m *Memory) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key] = entry{val: val, exp: exp}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || e.exp.IsZero() || e.expired(time.Now()) {
		return 0, false
	}
	return time.Until(e.exp), true
}

// Flush 清空，仅运维接口使用
func (m *Memory) Flush() {
	m.mu.Lock()
	m.data = make(map[string]entry)
	m.mu.Unlock()
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
