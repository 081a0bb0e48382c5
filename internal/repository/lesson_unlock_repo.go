package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/model"
)

// LessonUnlockRepository 手动解锁记录，本服务唯一拥有写权限的准入相关表
type LessonUnlockRepository struct {
	db *gorm.DB
}

func NewLessonUnlockRepository(db *gorm.DB) *LessonUnlockRepository {
	return &LessonUnlockRepository{db: db}
}

// Exists 检查 (用户, 课时) 是否存在手动解锁记录
func (r *LessonUnlockRepository) Exists(userID, lessonID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.LessonUnlock{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	return count > 0, err
}

// Grant 创建解锁记录，幂等：重复授予不报错
func (r *LessonUnlockRepository) Grant(userID, lessonID int64) error {
	unlock := &model.LessonUnlock{UserID: userID, LessonID: lessonID}
	err := r.db.Create(unlock).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	if err != nil {
		// 不同数据库对唯一约束冲突的报错不一致，回查一次兜底
		exists, existsErr := r.Exists(userID, lessonID)
		if existsErr == nil && exists {
			return nil
		}
		return err
	}
	return nil
}

// Revoke 删除解锁记录，幂等：记录不存在也返回成功
func (r *LessonUnlockRepository) Revoke(userID, lessonID int64) error {
	return r.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&model.LessonUnlock{}).Error
}
