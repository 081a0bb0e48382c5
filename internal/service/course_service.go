package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model"
	"github.com/dieselnoi/course_go_server/internal/model/dto"
	"github.com/dieselnoi/course_go_server/internal/pkg/oss"
	"github.com/dieselnoi/course_go_server/internal/repository"
)

var ErrCourseNotFound = errors.New("课程不存在")

// CourseService 课程目录
// 列表和详情对未登录用户开放，课时的锁定状态按当前用户视角标注
type CourseService struct {
	courseRepo *repository.CourseRepository
	lessonRepo *repository.LessonRepository
	subs       SubscriptionStatusProvider
	unlocks    ManualUnlockStore
	ossClient  *oss.Client
	loc        *time.Location
	now        func() time.Time
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	subs SubscriptionStatusProvider,
	unlocks ManualUnlockStore,
	ossClient *oss.Client,
	loc *time.Location,
) *CourseService {
	if loc == nil {
		loc = time.UTC
	}
	return &CourseService{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		subs:       subs,
		unlocks:    unlocks,
		ossClient:  ossClient,
		loc:        loc,
		now:        time.Now,
	}
}

// List 分页返回已发布课程
func (s *CourseService) List(page, pageSize int) ([]*dto.CourseInfo, int64, error) {
	courses, total, err := s.courseRepo.ListPublished(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*dto.CourseInfo, 0, len(courses))
	for _, course := range courses {
		lessons, err := s.lessonRepo.ListByCourse(course.ID)
		if err != nil {
			return nil, 0, err
		}
		info := buildCourseInfo(course)
		info.LessonCount = len(lessons)
		result = append(result, info)
	}
	return result, total, nil
}

// GetBySlug 返回课程详情，课时按 userID 视角标注可播放状态
// userID 为 0 表示未登录，按无订阅处理
func (s *CourseService) GetBySlug(ctx context.Context, slug string, userID int64) (*dto.CourseDetail, error) {
	course, err := s.courseRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseNotFound
	}

	lessons, err := s.lessonRepo.ListByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	sub := entitlement.SubscriptionState{Status: entitlement.StatusNone}
	if userID > 0 {
		sub, err = s.subs.Status(ctx, userID, course.ID)
		if err != nil {
			return nil, err
		}
	}

	detail := &dto.CourseDetail{
		CourseInfo: *buildCourseInfo(course),
		Lessons:    make([]*dto.LessonInfo, 0, len(lessons)),
	}
	detail.LessonCount = len(lessons)

	now := s.now()
	for _, lesson := range lessons {
		info, err := s.buildLessonInfo(ctx, lesson, sub, userID, now)
		if err != nil {
			return nil, err
		}
		detail.Lessons = append(detail.Lessons, info)
	}
	return detail, nil
}

func (s *CourseService) buildLessonInfo(ctx context.Context, lesson *model.Lesson, sub entitlement.SubscriptionState, userID int64, now time.Time) (*dto.LessonInfo, error) {
	policy := ResolveReleasePolicy(lesson)

	manualUnlock := false
	if userID > 0 && policy.Kind() == entitlement.KindScheduledRelease {
		var err error
		manualUnlock, err = s.unlocks.HasUnlock(ctx, userID, lesson.ID)
		if err != nil {
			return nil, err
		}
	}

	decision := entitlement.Decide(sub, policy, manualUnlock, now, s.loc)

	info := &dto.LessonInfo{
		ID:              lesson.ID,
		Title:           lesson.Title,
		Description:     lesson.Description,
		DurationMinutes: lesson.DurationMinutes,
		Order:           lesson.Order,
		IsFreePreview:   lesson.IsFreePreview,
		Accessible:      decision.Allowed,
	}
	if !decision.Allowed {
		info.LockReason = string(decision.Reason)
		if decision.Reason == entitlement.ReasonNotYetReleased && lesson.UnlockDate != nil {
			info.UnlockDate = lesson.UnlockDate.In(s.loc).Format("2006-01-02")
		}
	}
	return info, nil
}

// UploadThumbnail 上传课程封面到 OSS 并更新课程记录
func (s *CourseService) UploadThumbnail(courseID int64, file io.Reader, filename string) (string, error) {
	if s.ossClient == nil {
		return "", errors.New("OSS 客户端未配置")
	}

	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCourseNotFound
		}
		return "", err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}

	thumbnailURL, err := s.ossClient.UploadThumbnail(course.ID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.courseRepo.UpdateFields(course.ID, map[string]interface{}{
		"thumbnail_url": thumbnailURL,
	}); err != nil {
		return "", err
	}

	return thumbnailURL, nil
}

func buildCourseInfo(course *model.Course) *dto.CourseInfo {
	return &dto.CourseInfo{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		Slug:         course.Slug,
		Difficulty:   course.Difficulty,
		Price:        course.Price,
		ThumbnailURL: course.ThumbnailURL,
	}
}
