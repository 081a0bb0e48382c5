package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model"
	"github.com/dieselnoi/course_go_server/internal/pkg/playback"
	"github.com/dieselnoi/course_go_server/internal/repository"
)

var ErrLessonNotFound = errors.New("课时不存在")

// SubscriptionStatusProvider 订阅状态查询
type SubscriptionStatusProvider interface {
	Status(ctx context.Context, userID, courseID int64) (entitlement.SubscriptionState, error)
}

// LessonRelease 课时的发布视图：准入判定需要的全部课时侧输入
type LessonRelease struct {
	LessonID   int64
	CourseID   int64
	AssetRef   string
	Policy     entitlement.ReleasePolicy
	UnlockDate *time.Time
}

// ReleaseStore 课时发布视图查询
type ReleaseStore interface {
	LessonRelease(ctx context.Context, lessonID int64) (*LessonRelease, error)
}

// ManualUnlockStore 手动解锁记录查询
type ManualUnlockStore interface {
	HasUnlock(ctx context.Context, userID, lessonID int64) (bool, error)
}

// CredentialIssuer 播放凭证签发
type CredentialIssuer interface {
	Issue(assetRef string, now time.Time) (*playback.Credential, error)
}

// Resolution 播放请求的完整解析结果
// Allowed 为 false 时 Credential 必为 nil；UnlockDate 仅在 not_yet_released 时给出
type Resolution struct {
	Decision   entitlement.Decision
	Credential *playback.Credential
	UnlockDate *time.Time
}

// PlaybackService 播放解析门面：聚合订阅状态、发布策略、手动解锁三路输入，
// 做准入判定，放行后才签发凭证
// 依赖全部走接口注入，判定逻辑本身在 entitlement 包里保持纯函数
type PlaybackService struct {
	subs     SubscriptionStatusProvider
	releases ReleaseStore
	unlocks  ManualUnlockStore
	issuer   CredentialIssuer
	loc      *time.Location
	now      func() time.Time
}

func NewPlaybackService(
	subs SubscriptionStatusProvider,
	releases ReleaseStore,
	unlocks ManualUnlockStore,
	issuer CredentialIssuer,
	loc *time.Location,
) *PlaybackService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlaybackService{
		subs:     subs,
		releases: releases,
		unlocks:  unlocks,
		issuer:   issuer,
		loc:      loc,
		now:      time.Now,
	}
}

// Resolve 解析一次播放请求
// 任何依赖失败都返回 error 而不是拒绝结果：调用方必须把"系统故障请重试"
// 和"无权观看请订阅"区分开，绝不能把故障包装成付费墙
func (s *PlaybackService) Resolve(ctx context.Context, userID, lessonID int64) (*Resolution, error) {
	release, err := s.releases.LessonRelease(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	// 免费试看不需要订阅状态，少查一次库和缓存
	var sub entitlement.SubscriptionState
	if release.Policy.Kind() != entitlement.KindFreePreview {
		sub, err = s.subs.Status(ctx, userID, release.CourseID)
		if err != nil {
			return nil, fmt.Errorf("查询订阅状态失败: %w", err)
		}
	}

	// 手动解锁只在定时解锁未到期时才参与判定，其余场景跳过查询
	manualUnlock := false
	if release.Policy.Kind() == entitlement.KindScheduledRelease {
		manualUnlock, err = s.unlocks.HasUnlock(ctx, userID, lessonID)
		if err != nil {
			return nil, fmt.Errorf("查询手动解锁记录失败: %w", err)
		}
	}

	decision := entitlement.Decide(sub, release.Policy, manualUnlock, s.now(), s.loc)

	result := &Resolution{Decision: decision}
	if !decision.Allowed {
		// 拒绝结果绝不触碰签发器
		if decision.Reason == entitlement.ReasonNotYetReleased {
			result.UnlockDate = release.UnlockDate
		}
		return result, nil
	}

	cred, err := s.issuer.Issue(release.AssetRef, s.now())
	if err != nil {
		return nil, fmt.Errorf("签发播放凭证失败: %w", err)
	}
	result.Credential = cred
	return result, nil
}

// lessonReleaseStore ReleaseStore 的数据库实现
type lessonReleaseStore struct {
	lessonRepo *repository.LessonRepository
}

func NewLessonReleaseStore(lessonRepo *repository.LessonRepository) ReleaseStore {
	return &lessonReleaseStore{lessonRepo: lessonRepo}
}

func (s *lessonReleaseStore) LessonRelease(_ context.Context, lessonID int64) (*LessonRelease, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return newLessonRelease(lesson), nil
}

func newLessonRelease(lesson *model.Lesson) *LessonRelease {
	return &LessonRelease{
		LessonID:   lesson.ID,
		CourseID:   lesson.CourseID,
		AssetRef:   lesson.AssetRef(),
		Policy:     ResolveReleasePolicy(lesson),
		UnlockDate: lesson.UnlockDate,
	}
}

// manualUnlockStore ManualUnlockStore 的数据库实现
type manualUnlockStore struct {
	unlockRepo *repository.LessonUnlockRepository
}

func NewManualUnlockStore(unlockRepo *repository.LessonUnlockRepository) ManualUnlockStore {
	return &manualUnlockStore{unlockRepo: unlockRepo}
}

func (s *manualUnlockStore) HasUnlock(_ context.Context, userID, lessonID int64) (bool, error) {
	return s.unlockRepo.Exists(userID, lessonID)
}
