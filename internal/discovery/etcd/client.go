package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go-rbacadmin/internal/logging"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

type Config struct {
	Endpoints []string
	TTL       int
}

type Client struct{ *clientv3.Client }

func New(cfg Config) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Client{cli}, nil
}

// Instance 写入 etcd 的实例元数据
type Instance struct {
	InstanceID  string `json:"instance_id"`
	Name        string `json:"name"`
	Env         string `json:"env"`
	Version     string `json:"version"`
	IP          string `json:"ip"`
	Port        string `json:"port"`
	StartupUnix int64  `json:"startup_unix"`
}

// Key 形如 /services/rbacadmin/dev/v1/10.0.0.3:8080，重启后保持不变
func (i Instance) Key() string {
	return fmt.Sprintf("/services/%s/%s/%s/%s:%s", i.Name, i.Env, i.Version, i.IP, i.Port)
}

func (i Instance) Value() string {
	b, _ := json.Marshal(i)
	return string(b)
}

// PortOf 从监听地址取端口，":8080" 或 "0.0.0.0:8080"
func PortOf(addr string) string {
	if addr == "" {
		return "0"
	}
	if addr[0] == ':' {
		return addr[1:]
	}
	if _, p, err := net.SplitHostPort(addr); err == nil && p != "" {
		return p
	}
	return "0"
}

// Register 返回 leaseID 以便优雅下线时主动撤销
func (c *Client) Register(ctx context.Context, key, val string, ttl int64) (clientv3.LeaseID, error) {
	lease, err := c.Client.Grant(ctx, ttl)
	if err != nil {
		return 0, err
	}
	if _, err = c.Client.Put(ctx, key, val, clientv3.WithLease(lease.ID)); err != nil {
		return 0, err
	}
	ch, err := c.Client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return 0, err
	}
	go func() {
		for range ch {
		}
	}()
	return lease.ID, nil
}

// RegisterWithRetry 指数退避，最多 attempts 次
func (c *Client) RegisterWithRetry(ctx context.Context, inst Instance, ttl int64, attempts int, l *logging.Logger) (clientv3.LeaseID, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		id, err := c.Register(ctx, inst.Key(), inst.Value(), ttl)
		if err == nil {
			l.Info("etcd_registered", zap.String("key", inst.Key()))
			return id, nil
		}
		lastErr = err
		backoff := time.Duration(1<<i) * 100 * time.Millisecond
		l.Warn("etcd_register_retry", zap.Error(err), zap.Int("attempt", i), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return 0, fmt.Errorf("etcd register %s: %w", inst.Key(), lastErr)
}

// Deregister key 可能已过期，错误忽略
func (c *Client) Deregister(ctx context.Context, key string, leaseID clientv3.LeaseID) {
	_, _ = c.Client.Delete(ctx, key)
	if leaseID > 0 {
		_, _ = c.Client.Revoke(ctx, leaseID)
	}
}

// Ping readiness 探测
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Client.Get(ctx, "health")
	return err
}

func (c *Client) Discover(ctx context.Context, prefix string) (map[string]string, error) {
	resp, err := c.Client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		m[string(kv.Key)] = string(kv.Value)
	}
	return m, nil
}

func (c *Client) Close() error { return c.Client.Close() }
