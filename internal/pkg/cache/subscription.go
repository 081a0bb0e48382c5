// Package cache 订阅状态的短 TTL 缓存
// TTL 必须短于计费事件的传播延迟要求：刚取消订阅的用户不能靠缓存继续换取播放凭证
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
)

const subscriptionKeyPrefix = "sub:state:"

// SubscriptionCache 缓存 (用户, 课程) 的订阅状态投影，含"无订阅"负缓存
type SubscriptionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubscriptionCache(rdb *redis.Client, ttl time.Duration) *SubscriptionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SubscriptionCache{rdb: rdb, ttl: ttl}
}

func subscriptionKey(userID, courseID int64) string {
	return fmt.Sprintf("%s%d:%d", subscriptionKeyPrefix, userID, courseID)
}

// Get 读取缓存的订阅状态，第二个返回值表示是否命中
func (c *SubscriptionCache) Get(ctx context.Context, userID, courseID int64) (*entitlement.SubscriptionState, bool, error) {
	data, err := c.rdb.Get(ctx, subscriptionKey(userID, courseID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取订阅缓存失败: %w", err)
	}

	var state entitlement.SubscriptionState
	if err := json.Unmarshal(data, &state); err != nil {
		// 缓存内容损坏按未命中处理，由调用方回源
		return nil, false, nil
	}
	return &state, true, nil
}

// Set 写入订阅状态快照
func (c *SubscriptionCache) Set(ctx context.Context, userID, courseID int64, state *entitlement.SubscriptionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, subscriptionKey(userID, courseID), data, c.ttl).Err()
}

// Invalidate 失效指定键，计费侧写入后调用
func (c *SubscriptionCache) Invalidate(ctx context.Context, userID, courseID int64) error {
	return c.rdb.Del(ctx, subscriptionKey(userID, courseID)).Err()
}
