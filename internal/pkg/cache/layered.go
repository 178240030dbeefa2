package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// backfillTTL L2 无法给出剩余 TTL 时回填 L1 的兜底值
const backfillTTL = 30 * time.Second

// LayeredCache L1 (本地) + L2 (redis)
// 读：L1 -> L2 (命中回填 L1) -> miss；写和删同时作用两层
// L1 只在本进程失效，多副本部署时其他实例最多滞后 L1TTL
type LayeredCache struct {
	L1 Cache
	L2 Cache
	// L1TTL L1 写入与回填的 TTL 上限，0 表示不限制
	L1TTL time.Duration

	hitsL1     uint64
	hitsL2     uint64
	miss       uint64
	setOps     uint64
	delOps     uint64
	backfillL1 uint64
}

type LayeredMetrics struct {
	HitsL1     uint64  `json:"hits_l1"`
	HitsL2     uint64  `json:"hits_l2"`
	Miss       uint64  `json:"miss"`
	SetOps     uint64  `json:"set_ops"`
	DelOps     uint64  `json:"del_ops"`
	BackfillL1 uint64  `json:"backfill_l1"`
	HitRate    float64 `json:"hit_rate"`
}

func NewLayered(l1, l2 Cache) *LayeredCache { return &LayeredCache{L1: l1, L2: l2} }

func (c *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if c.L1 != nil {
		if v, _ := c.L1.Get(ctx, key); v != "" {
			atomic.AddUint64(&c.hitsL1, 1)
			return v, nil
		}
	}
	if c.L2 != nil {
		if v, _ := c.L2.Get(ctx, key); v != "" {
			atomic.AddUint64(&c.hitsL2, 1)
			if c.L1 != nil {
				ttl := backfillTTL
				if tf, ok := c.L2.(TTLFetcher); ok {
					if d, ok := tf.RemainingTTL(ctx, key); ok {
						ttl = d
					}
				}
				_ = c.L1.SetEX(ctx, key, v, c.capL1(ttl))
				atomic.AddUint64(&c.backfillL1, 1)
			}
			return v, nil
		}
	}
	atomic.AddUint64(&c.miss, 1)
	return "", nil
}

// SetEX L2 失败会返回错误，L1 仍然写入
func (c *LayeredCache) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	atomic.AddUint64(&c.setOps, 1)
	if c.L1 != nil {
		_ = c.L1.SetEX(ctx, key, val, c.capL1(ttl))
	}
	if c.L2 != nil {
		return c.L2.SetEX(ctx, key, val, ttl)
	}
	return nil
}

func (c *LayeredCache) capL1(ttl time.Duration) time.Duration {
	if c.L1TTL > 0 && (ttl <= 0 || ttl > c.L1TTL) {
		return c.L1TTL
	}
	return ttl
}

// Shared 只读写 L2 的视图，计数仍记到本实例；
// 用于失效必须对所有副本立即可见的数据（权限集合）
func (c *LayeredCache) Shared() Cache { return sharedView{c} }

type sharedView struct{ c *LayeredCache }

func (v sharedView) Get(ctx context.Context, key string) (string, error) {
	if v.c.L2 != nil {
		if val, _ := v.c.L2.Get(ctx, key); val != "" {
			atomic.AddUint64(&v.c.hitsL2, 1)
			return val, nil
		}
	}
	atomic.AddUint64(&v.c.miss, 1)
	return "", nil
}

func (v sharedView) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	atomic.AddUint64(&v.c.setOps, 1)
	if v.c.L2 == nil {
		return nil
	}
	return v.c.L2.SetEX(ctx, key, val, ttl)
}

func (v sharedView) Del(ctx context.Context, keys ...string) error {
	atomic.AddUint64(&v.c.delOps, 1)
	if v.c.L2 == nil {
		return nil
	}
	return v.c.L2.Del(ctx, keys...)
}

// Del 两层都尝试删除，错误合并返回
func (c *LayeredCache) Del(ctx context.Context, keys ...string) error {
	atomic.AddUint64(&c.delOps, 1)
	var errL1, errL2 error
	if c.L1 != nil {
		errL1 = c.L1.Del(ctx, keys...)
	}
	if c.L2 != nil {
		errL2 = c.L2.Del(ctx, keys...)
	}
	return errors.Join(errL1, errL2)
}

func (c *LayeredCache) SnapshotMetrics() LayeredMetrics {
	m := LayeredMetrics{
		HitsL1:     atomic.LoadUint64(&c.hitsL1),
		HitsL2:     atomic.LoadUint64(&c.hitsL2),
		Miss:       atomic.LoadUint64(&c.miss),
		SetOps:     atomic.LoadUint64(&c.setOps),
		DelOps:     atomic.LoadUint64(&c.delOps),
		BackfillL1: atomic.LoadUint64(&c.backfillL1),
	}
	if total := m.HitsL1 + m.HitsL2 + m.Miss; total > 0 {
		m.HitRate = float64(m.HitsL1+m.HitsL2) / float64(total)
	}
	return m
}

// ResetMetrics 阶段性观测用
func (c *LayeredCache) ResetMetrics() {
	for _, p := range []*uint64{&c.hitsL1, &c.hitsL2, &c.miss, &c.setOps, &c.delOps, &c.backfillL1} {
		atomic.StoreUint64(p, 0)
	}
}
