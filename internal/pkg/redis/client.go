// internal/pkg/redis/client.go
package redis

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端，并托管业务方注册的 Lua 脚本。
// 脚本按名字注册一次，之后通过 RunScript 以 EVALSHA 方式执行
type Client struct {
	rdb *goredis.Client

	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// New 创建一个新的 Redis 客户端
func New(addr string) *Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: addr,
	})
	return &Client{
		rdb:     rdb,
		scripts: make(map[string]*goredis.Script),
	}
}

// GetClient 返回底层的 go-redis 客户端，用于执行普通命令
func (c *Client) GetClient() *goredis.Client {
	return c.rdb
}

// LoadScriptFromContent 按名字注册一段 Lua 脚本，重复注册会覆盖
func (c *Client) LoadScriptFromContent(name, content string) error {
	if name == "" || content == "" {
		return errors.New("script name and content must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript 执行一个已注册的脚本。go-redis 的 Script.Run 会优先走
// EVALSHA，脚本未缓存时自动退回 EVAL，调用方无需关心
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("script %q is not registered", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// Ping 探测连通性
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭底层连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
