package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model/dto"
	"github.com/dieselnoi/course_go_server/internal/pkg/cache"
	"github.com/dieselnoi/course_go_server/internal/repository"
)

// SubscriptionService 订阅状态的只读投影
// 计费模块是事实来源，本服务只查询并缓存，从不修改订阅记录
// （ExpireLapsed 清扫除外，那是计费侧约定的兜底同步）
type SubscriptionService struct {
	subRepo    *repository.SubscriptionRepository
	courseRepo *repository.CourseRepository
	cache      *cache.SubscriptionCache
}

func NewSubscriptionService(
	subRepo *repository.SubscriptionRepository,
	courseRepo *repository.CourseRepository,
	subCache *cache.SubscriptionCache,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:    subRepo,
		courseRepo: courseRepo,
		cache:      subCache,
	}
}

// Status 查询 (用户, 课程) 的订阅状态快照，经过短 TTL 缓存
// 无订阅记录返回 StatusNone 而不是错误，且同样会被负缓存；
// 缓存读写失败只记日志不阻断，直接回源数据库
func (s *SubscriptionService) Status(ctx context.Context, userID, courseID int64) (entitlement.SubscriptionState, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, userID, courseID)
		if err != nil {
			log.Printf("读取订阅缓存失败 user=%d course=%d: %v", userID, courseID, err)
		} else if hit {
			return *cached, nil
		}
	}

	state, err := s.loadState(userID, courseID)
	if err != nil {
		return entitlement.SubscriptionState{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, courseID, &state); err != nil {
			log.Printf("写入订阅缓存失败 user=%d course=%d: %v", userID, courseID, err)
		}
	}
	return state, nil
}

func (s *SubscriptionService) loadState(userID, courseID int64) (entitlement.SubscriptionState, error) {
	sub, err := s.subRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlement.SubscriptionState{Status: entitlement.StatusNone}, nil
		}
		return entitlement.SubscriptionState{}, err
	}

	state := entitlement.SubscriptionState{
		Status:          entitlement.Status(sub.Status),
		PausedIntervals: parsePausedIntervals(sub.PausedIntervals),
	}
	if sub.CurrentPeriodEnd != nil {
		state.CurrentPeriodEnd = *sub.CurrentPeriodEnd
	}
	return state, nil
}

// parsePausedIntervals 解析计费侧写入的暂停区间 JSON
// 字段损坏按空处理：暂停区间只用于统计，不能因它阻断准入判定
func parsePausedIntervals(raw string) []entitlement.PausedInterval {
	if raw == "" {
		return nil
	}
	var intervals []entitlement.PausedInterval
	if err := json.Unmarshal([]byte(raw), &intervals); err != nil {
		log.Printf("暂停区间 JSON 解析失败，按空处理: %v", err)
		return nil
	}
	return intervals
}

// Invalidate 失效订阅缓存，计费 webhook 或清扫任务写库后调用
func (s *SubscriptionService) Invalidate(ctx context.Context, userID, courseID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, courseID); err != nil {
		log.Printf("失效订阅缓存失败 user=%d course=%d: %v", userID, courseID, err)
	}
}

// ListByUser 返回用户的全部订阅（含课程标题），供个人中心展示
func (s *SubscriptionService) ListByUser(userID int64) ([]*dto.SubscriptionInfo, error) {
	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		info := &dto.SubscriptionInfo{
			CourseID:  sub.CourseID,
			Status:    sub.Status,
			StartDate: sub.StartDate.Format(time.RFC3339),
		}
		if sub.CurrentPeriodEnd != nil {
			info.CurrentPeriodEnd = sub.CurrentPeriodEnd.Format(time.RFC3339)
		}
		if course, err := s.courseRepo.GetByID(sub.CourseID); err == nil {
			info.CourseTitle = course.Title
		}
		result = append(result, info)
	}
	return result, nil
}

// ExpireLapsed 把周期已过的 active/trialing 订阅批量标记为 cancelled
// 作为计费 webhook 丢失时的兜底，由定时任务调用
func (s *SubscriptionService) ExpireLapsed(now time.Time) (int64, error) {
	return s.subRepo.ExpireLapsed(now)
}
