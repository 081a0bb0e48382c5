package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/pkg/pubsub"
	"github.com/dieselnoi/course_go_server/internal/repository"
)

// UnlockService 运营手动解锁
// 解锁只提前放行定时解锁的课时，救不回过期订阅；授予/撤销都是幂等操作
type UnlockService struct {
	unlockRepo *repository.LessonUnlockRepository
	lessonRepo *repository.LessonRepository
	userRepo   *repository.UserRepository
	publisher  *pubsub.Publisher
}

func NewUnlockService(
	unlockRepo *repository.LessonUnlockRepository,
	lessonRepo *repository.LessonRepository,
	userRepo *repository.UserRepository,
	publisher *pubsub.Publisher,
) *UnlockService {
	return &UnlockService{
		unlockRepo: unlockRepo,
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Grant 为用户解锁课时，重复解锁不报错
func (s *UnlockService) Grant(ctx context.Context, userID, lessonID int64) error {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.unlockRepo.Grant(userID, lessonID); err != nil {
		return err
	}

	s.publish(ctx, pubsub.ActionGranted, userID, lessonID, lesson.CourseID)
	return nil
}

// Revoke 撤销手动解锁，不存在的记录静默成功
func (s *UnlockService) Revoke(ctx context.Context, userID, lessonID int64) error {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	if err := s.unlockRepo.Revoke(userID, lessonID); err != nil {
		return err
	}

	s.publish(ctx, pubsub.ActionRevoked, userID, lessonID, lesson.CourseID)
	return nil
}

// publish 通知在线用户刷新锁定状态，失败只记日志：
// 解锁已落库，推送丢失用户刷新页面后仍能看到正确状态
func (s *UnlockService) publish(ctx context.Context, action string, userID, lessonID, courseID int64) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishUnlock(ctx, &pubsub.UnlockMessage{
		Type:     "lesson_unlock",
		Action:   action,
		UserID:   userID,
		LessonID: lessonID,
		CourseID: courseID,
	})
	if err != nil {
		log.Printf("发布解锁事件失败 user=%d lesson=%d: %v", userID, lessonID, err)
	}
}
