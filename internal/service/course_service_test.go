package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/repository"
	"github.com/dieselnoi/course_go_server/internal/testutil"
)

type stubSubs struct {
	states map[int64]entitlement.SubscriptionState // courseID -> state
}

func (s *stubSubs) Status(_ context.Context, _, courseID int64) (entitlement.SubscriptionState, error) {
	if state, ok := s.states[courseID]; ok {
		return state, nil
	}
	return entitlement.SubscriptionState{Status: entitlement.StatusNone}, nil
}

func setupCourseService(t *testing.T, subs SubscriptionStatusProvider) (*CourseService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		subs,
		NewManualUnlockStore(repository.NewLessonUnlockRepository(db)),
		nil,
		time.UTC,
	)
	return svc, db, func() { testutil.CleanupTestDB(t, db) }
}

func TestCourseService_List(t *testing.T) {
	svc, db, cleanup := setupCourseService(t, &stubSubs{})
	defer cleanup()

	course := testutil.TestCourse(t, db)
	testutil.TestCourse(t, db, testutil.WithUnpublished())
	testutil.TestLesson(t, db, course.ID)
	testutil.TestLesson(t, db, course.ID)

	infos, total, err := svc.List(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "未发布课程不出现在列表")
	require.Len(t, infos, 1)
	assert.Equal(t, course.Title, infos[0].Title)
	assert.Equal(t, 2, infos[0].LessonCount)
}

func TestCourseService_GetBySlug_AnonymousUser(t *testing.T) {
	// 未登录用户：免费试看可播放，其余课时锁定
	svc, db, cleanup := setupCourseService(t, &stubSubs{})
	defer cleanup()

	course := testutil.TestCourse(t, db)
	testutil.TestLesson(t, db, course.ID, testutil.WithFreePreview())
	testutil.TestLesson(t, db, course.ID)

	detail, err := svc.GetBySlug(context.Background(), course.Slug, 0)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 2)

	assert.True(t, detail.Lessons[0].Accessible)
	assert.Empty(t, detail.Lessons[0].LockReason)

	assert.False(t, detail.Lessons[1].Accessible)
	assert.Equal(t, string(entitlement.ReasonNoSubscription), detail.Lessons[1].LockReason)
}

func TestCourseService_GetBySlug_ActiveSubscriber(t *testing.T) {
	svc, db, cleanup := setupCourseService(t, nil)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	future := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)
	testutil.TestLesson(t, db, course.ID)
	testutil.TestLesson(t, db, course.ID, testutil.WithUnlockDate(past))
	testutil.TestLesson(t, db, course.ID, testutil.WithUnlockDate(future))

	svc.subs = &stubSubs{states: map[int64]entitlement.SubscriptionState{
		course.ID: {Status: entitlement.StatusActive},
	}}

	detail, err := svc.GetBySlug(context.Background(), course.Slug, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 3)

	assert.True(t, detail.Lessons[0].Accessible, "无解锁日期的课时立即可用")
	assert.True(t, detail.Lessons[1].Accessible, "解锁日已过")

	locked := detail.Lessons[2]
	assert.False(t, locked.Accessible)
	assert.Equal(t, string(entitlement.ReasonNotYetReleased), locked.LockReason)
	assert.Equal(t, future.UTC().Format("2006-01-02"), locked.UnlockDate)
}

func TestCourseService_GetBySlug_ManualUnlockAnnotated(t *testing.T) {
	svc, db, cleanup := setupCourseService(t, nil)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	future := time.Now().Add(30 * 24 * time.Hour)
	lesson := testutil.TestLesson(t, db, course.ID, testutil.WithUnlockDate(future))

	unlockRepo := repository.NewLessonUnlockRepository(db)
	require.NoError(t, unlockRepo.Grant(user.ID, lesson.ID))

	svc.subs = &stubSubs{states: map[int64]entitlement.SubscriptionState{
		course.ID: {Status: entitlement.StatusActive},
	}}

	detail, err := svc.GetBySlug(context.Background(), course.Slug, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 1)
	assert.True(t, detail.Lessons[0].Accessible)
}

func TestCourseService_GetBySlug_LapsedSubscriber(t *testing.T) {
	svc, db, cleanup := setupCourseService(t, nil)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	testutil.TestLesson(t, db, course.ID)

	svc.subs = &stubSubs{states: map[int64]entitlement.SubscriptionState{
		course.ID: {Status: entitlement.StatusCancelled},
	}}

	detail, err := svc.GetBySlug(context.Background(), course.Slug, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 1)
	assert.False(t, detail.Lessons[0].Accessible)
	assert.Equal(t, string(entitlement.ReasonSubscriptionLapsed), detail.Lessons[0].LockReason)
}

func TestCourseService_GetBySlug_NotFound(t *testing.T) {
	svc, _, cleanup := setupCourseService(t, &stubSubs{})
	defer cleanup()

	_, err := svc.GetBySlug(context.Background(), "no-such-course", 0)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_GetBySlug_UnpublishedHidden(t *testing.T) {
	svc, db, cleanup := setupCourseService(t, &stubSubs{})
	defer cleanup()

	course := testutil.TestCourse(t, db, testutil.WithUnpublished())

	_, err := svc.GetBySlug(context.Background(), course.Slug, 0)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}
