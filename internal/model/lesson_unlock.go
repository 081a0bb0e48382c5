package model

import (
	"time"
)

// LessonUnlock 管理员手动解锁记录
// 存在即生效：仅解除该用户在该课时上的定时解锁限制，不能替代订阅
type LessonUnlock struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index;uniqueIndex:uk_user_lesson" json:"user_id"`
	LessonID   int64     `gorm:"not null;index;uniqueIndex:uk_user_lesson" json:"lesson_id"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

func (LessonUnlock) TableName() string {
	return "lesson_unlocks"
}
