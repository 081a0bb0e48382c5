// Package worker 邮件队列消费者
package worker

import (
	"context"
	"fmt"

	"github.com/dieselnoi/course_go_server/internal/pkg/queue"
)

// EmailSender 邮件发送器
type EmailSender interface {
	SendVerificationCode(to, code string) error
	SendWelcome(to, username string) error
}

// Processor 按任务类型分发到对应的邮件模板
type Processor struct {
	sender EmailSender
}

func NewProcessor(sender EmailSender) *Processor {
	return &Processor{sender: sender}
}

// Process 处理一条邮件任务
// SMTP 发送失败向上返回由调用方记日志，任务不重新入队：
// 验证码邮件用户可以在页面上重新触发，比无限重试堆积队列更稳妥
func (p *Processor) Process(_ context.Context, msg *queue.EmailMessage) error {
	switch msg.Kind {
	case queue.EmailKindVerification:
		return p.sender.SendVerificationCode(msg.To, msg.Code)
	case queue.EmailKindWelcome:
		return p.sender.SendWelcome(msg.To, msg.Username)
	default:
		return fmt.Errorf("未知的邮件任务类型: %s", msg.Kind)
	}
}
