package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model"
	"github.com/dieselnoi/course_go_server/internal/pkg/cache"
	"github.com/dieselnoi/course_go_server/internal/repository"
	"github.com/dieselnoi/course_go_server/internal/testutil"
)

func setupSubscriptionService(t *testing.T) (*SubscriptionService, *gorm.DB, *miniredis.Miniredis, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewCourseRepository(db),
		cache.NewSubscriptionCache(rdb, 30*time.Second),
	)

	cleanup := func() {
		rdb.Close()
		testutil.CleanupTestDB(t, db)
	}
	return svc, db, mr, cleanup
}

func TestSubscriptionService_Status_Active(t *testing.T) {
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	testutil.TestSubscription(t, db, user.ID, course.ID, testutil.WithPeriodEnd(periodEnd))

	state, err := svc.Status(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusActive, state.Status)
	assert.WithinDuration(t, periodEnd, state.CurrentPeriodEnd, time.Second)
}

func TestSubscriptionService_Status_NoSubscription(t *testing.T) {
	// 无订阅记录是正常状态而不是错误
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)

	state, err := svc.Status(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusNone, state.Status)
}

func TestSubscriptionService_Status_CachesResult(t *testing.T) {
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, course.ID)

	state, err := svc.Status(ctx, user.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, entitlement.StatusActive, state.Status)

	// 直接改库不失效缓存，TTL 内仍返回旧状态
	require.NoError(t, db.Model(sub).Update("status", model.SubscriptionStatusCancelled).Error)

	state, err = svc.Status(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusActive, state.Status)

	// 失效后回源拿到新状态
	svc.Invalidate(ctx, user.ID, course.ID)
	state, err = svc.Status(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusCancelled, state.Status)
}

func TestSubscriptionService_Status_CacheExpires(t *testing.T) {
	svc, db, mr, cleanup := setupSubscriptionService(t)
	defer cleanup()

	ctx := context.Background()
	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, course.ID)

	_, err := svc.Status(ctx, user.ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(sub).Update("status", model.SubscriptionStatusPastDue).Error)
	mr.FastForward(31 * time.Second)

	state, err := svc.Status(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusPastDue, state.Status)
}

func TestSubscriptionService_Status_ParsesPausedIntervals(t *testing.T) {
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, course.ID)
	raw := `[{"pause_start":"2025-01-01T00:00:00Z","resume_start":"2025-01-15T00:00:00Z"},{"pause_start":"2025-02-01T00:00:00Z"}]`
	require.NoError(t, db.Model(sub).Update("paused_intervals", raw).Error)

	state, err := svc.Status(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, state.PausedIntervals, 2)
	assert.NotNil(t, state.PausedIntervals[0].ResumeStart)
	assert.Nil(t, state.PausedIntervals[1].ResumeStart, "最后一段仍在暂停中")
}

func TestSubscriptionService_Status_CorruptPausedIntervals(t *testing.T) {
	// 暂停区间损坏按空处理，不阻断准入
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, course.ID)
	require.NoError(t, db.Model(sub).Update("paused_intervals", "{not json").Error)

	state, err := svc.Status(context.Background(), user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusActive, state.Status)
	assert.Empty(t, state.PausedIntervals)
}

func TestSubscriptionService_ListByUser(t *testing.T) {
	svc, db, _, cleanup := setupSubscriptionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	courseA := testutil.TestCourse(t, db)
	courseB := testutil.TestCourse(t, db)
	testutil.TestSubscription(t, db, user.ID, courseA.ID)
	testutil.TestSubscription(t, db, user.ID, courseB.ID,
		testutil.WithStatus(model.SubscriptionStatusCancelled))

	infos, err := svc.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[int64]string{}
	for _, info := range infos {
		byID[info.CourseID] = info.Status
		assert.NotEmpty(t, info.CourseTitle)
	}
	assert.Equal(t, model.SubscriptionStatusActive, byID[courseA.ID])
	assert.Equal(t, model.SubscriptionStatusCancelled, byID[courseB.ID])
}
