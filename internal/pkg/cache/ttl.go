package cache

import (
	"math/rand"
	"time"
)

// JitterTTL 在 ttl 基础上随机 ±10%，避免同批 key 同时过期
func JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	span := int64(ttl) / 10
	if span == 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*span+1)-span)
}
