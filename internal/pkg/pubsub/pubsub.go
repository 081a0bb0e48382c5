package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelLessonUnlocks = "lesson_unlocks"
)

// 解锁事件动作
const (
	ActionGranted = "granted"
	ActionRevoked = "revoked"
)

// UnlockMessage 手动解锁事件
// 推送给受影响用户的在线连接，播放器据此刷新课时锁定状态
type UnlockMessage struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	UserID   int64  `json:"user_id"`
	LessonID int64  `json:"lesson_id"`
	CourseID int64  `json:"course_id"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishUnlock 发布解锁事件
func (p *Publisher) PublishUnlock(ctx context.Context, msg *UnlockMessage) error {
	msg.Type = "lesson_unlock"
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock message: %w", err)
	}

	return p.client.Publish(ctx, ChannelLessonUnlocks, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// SubscribeUnlocks 订阅解锁事件，handler 在接收 goroutine 中被调用
// ctx 取消后退出
func (s *Subscriber) SubscribeUnlocks(ctx context.Context, handler func(*UnlockMessage)) error {
	sub := s.client.Subscribe(ctx, ChannelLessonUnlocks)

	// 确认订阅建立
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg UnlockMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					log.Printf("pubsub: failed to unmarshal unlock message: %v", err)
					continue
				}
				handler(&msg)
			}
		}
	}()

	return nil
}
