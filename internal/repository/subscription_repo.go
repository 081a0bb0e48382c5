package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/model"
)

// SubscriptionRepository 订阅投影的只读访问 + 运维性清理
// 写入由计费模块负责，这里不提供创建接口
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetByUserAndCourse 查询用户在某课程上的订阅，未找到返回 gorm.ErrRecordNotFound
func (r *SubscriptionRepository) GetByUserAndCourse(userID, courseID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUser 列出用户的全部订阅
func (r *SubscriptionRepository) ListByUser(userID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ExpireLapsed 将计费周期已结束但状态仍为 active/trialing 的订阅标记为 cancelled
// 兜底清理：正常情况下计费 webhook 会先行更新状态
func (r *SubscriptionRepository) ExpireLapsed(now time.Time) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("status IN ?", []string{model.SubscriptionStatusActive, model.SubscriptionStatusTrialing}).
		Where("current_period_end IS NOT NULL AND current_period_end < ?", now).
		Update("status", model.SubscriptionStatusCancelled)
	return result.RowsAffected, result.Error
}
