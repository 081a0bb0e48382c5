package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 邮件类型
const (
	EmailKindVerification = "verification"
	EmailKindWelcome      = "welcome"
)

// EmailMessage 待发送邮件任务
type EmailMessage struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Username string `json:"username,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Queue Redis 列表实现的邮件队列
type Queue struct {
	client    *redis.Client
	queueName string
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将邮件任务加入队列
func (q *Queue) Push(ctx context.Context, msg *EmailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取邮件任务（阻塞），超时返回 (nil, nil)
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*EmailMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg EmailMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
