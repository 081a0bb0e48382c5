package model

import (
	"time"
)

// 订阅状态，由计费模块写入，本服务只读
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusTrialing  = "trialing"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
)

type Subscription struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	UserID               int64      `gorm:"not null;index;uniqueIndex:uk_user_course" json:"user_id"`
	CourseID             int64      `gorm:"not null;index;uniqueIndex:uk_user_course" json:"course_id"`
	Status               string     `gorm:"size:20;default:active;index" json:"status"`
	StripeSubscriptionID *string    `gorm:"size:100;index" json:"-"`
	StartDate            time.Time  `gorm:"not null" json:"start_date"`
	CurrentPeriodEnd     *time.Time `gorm:"index" json:"current_period_end,omitempty"`
	// 暂停区间 JSON 数组，形如 [{"pause_start":"...","resume_start":"..."}]
	// 仅供统计报表使用，解锁日期不随暂停顺延
	PausedIntervals string    `gorm:"type:text" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
