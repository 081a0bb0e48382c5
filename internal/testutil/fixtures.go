package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", seq),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithStaff 设置管理员标记
func WithStaff() func(*model.User) {
	return func(u *model.User) {
		u.IsStaff = true
	}
}

// TestCourse 创建已发布的测试课程
func TestCourse(t *testing.T, db *gorm.DB, opts ...func(*model.Course)) *model.Course {
	t.Helper()

	seq := nextSeq()
	course := &model.Course{
		Title:       fmt.Sprintf("Test Course %d", seq),
		Description: "test course",
		Slug:        fmt.Sprintf("test-course-%d", seq),
		Difficulty:  "beginner",
		Price:       19.99,
		IsPublished: true,
	}

	for _, opt := range opts {
		opt(course)
	}

	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create test course: %v", err)
	}

	return course
}

// WithUnpublished 设置为未发布
func WithUnpublished() func(*model.Course) {
	return func(c *model.Course) {
		c.IsPublished = false
	}
}

// TestLesson 创建测试课时
func TestLesson(t *testing.T, db *gorm.DB, courseID int64, opts ...func(*model.Lesson)) *model.Lesson {
	t.Helper()

	seq := nextSeq()
	playbackID := fmt.Sprintf("playback-%d", seq)
	lesson := &model.Lesson{
		CourseID:      courseID,
		Title:         fmt.Sprintf("Test Lesson %d", seq),
		MuxPlaybackID: &playbackID,
		Order:         int(seq),
	}

	for _, opt := range opts {
		opt(lesson)
	}

	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("Failed to create test lesson: %v", err)
	}

	return lesson
}

// WithFreePreview 设置为免费试看
func WithFreePreview() func(*model.Lesson) {
	return func(l *model.Lesson) {
		l.IsFreePreview = true
	}
}

// WithUnlockDate 设置解锁日期
func WithUnlockDate(d time.Time) func(*model.Lesson) {
	return func(l *model.Lesson) {
		l.UnlockDate = &d
	}
}

// WithPlaybackID 设置 Mux Playback ID
func WithPlaybackID(id string) func(*model.Lesson) {
	return func(l *model.Lesson) {
		l.MuxPlaybackID = &id
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID, courseID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	sub := &model.Subscription{
		UserID:           userID,
		CourseID:         courseID,
		Status:           model.SubscriptionStatusActive,
		StartDate:        time.Now().Add(-24 * time.Hour),
		CurrentPeriodEnd: &periodEnd,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithStatus 设置订阅状态
func WithStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithPeriodEnd 设置计费周期结束时间
func WithPeriodEnd(d time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CurrentPeriodEnd = &d
	}
}
