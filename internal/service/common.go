package service

import (
	"context"
	"encoding/json"
	"time"

	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageParams 1 起始页码
type PageParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (p PageParams) toDAO() dao.Page {
	page, limit := p.Page, p.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return dao.Page{Offset: (page - 1) * limit, Limit: limit}
}

type ListResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// jsonCache 业务侧 JSON 缓存封装，命中情况计入 metrics；c 为 nil 时直通
type jsonCache struct {
	name string
	c    cache.Cache
	ttl  time.Duration
}

func (j jsonCache) get(ctx context.Context, key string, out interface{}) bool {
	if j.c == nil {
		return false
	}
	v, err := j.c.Get(ctx, key)
	if err != nil || v == "" {
		metrics.CacheRequests.WithLabelValues(j.name, "miss").Inc()
		return false
	}
	if json.Unmarshal([]byte(v), out) != nil {
		metrics.CacheRequests.WithLabelValues(j.name, "corrupt").Inc()
		_ = j.c.Del(ctx, key)
		return false
	}
	metrics.CacheRequests.WithLabelValues(j.name, "hit").Inc()
	return true
}

func (j jsonCache) set(ctx context.Context, key string, v interface{}) {
	if j.c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = j.c.SetEX(ctx, key, string(b), cache.JitterTTL(j.ttl))
}

func (j jsonCache) del(ctx context.Context, keys ...string) error {
	if j.c == nil || len(keys) == 0 {
		return nil
	}
	return j.c.Del(ctx, keys...)
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// normalizeParent 0 与 nil 均视为根
func normalizeParent(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want, got []int64) []int64 {
	have := make(map[int64]struct{}, len(got))
	for _, id := range got {
		have[id] = struct{}{}
	}
	var out []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
