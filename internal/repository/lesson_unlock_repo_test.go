package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dieselnoi/course_go_server/internal/testutil"
)

func TestLessonUnlockRepository_GrantAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLessonUnlockRepository(db)

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	lesson := testutil.TestLesson(t, db, course.ID)

	exists, err := repo.Exists(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Grant(user.ID, lesson.ID))

	exists, err = repo.Exists(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLessonUnlockRepository_GrantIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLessonUnlockRepository(db)

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	lesson := testutil.TestLesson(t, db, course.ID)

	require.NoError(t, repo.Grant(user.ID, lesson.ID))
	// 重复授予不报错
	require.NoError(t, repo.Grant(user.ID, lesson.ID))

	exists, err := repo.Exists(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLessonUnlockRepository_Revoke(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLessonUnlockRepository(db)

	user := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	lesson := testutil.TestLesson(t, db, course.ID)

	require.NoError(t, repo.Grant(user.ID, lesson.ID))
	require.NoError(t, repo.Revoke(user.ID, lesson.ID))

	exists, err := repo.Exists(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// 撤销不存在的记录同样成功
	require.NoError(t, repo.Revoke(user.ID, lesson.ID))
}

func TestLessonUnlockRepository_ScopedToPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewLessonUnlockRepository(db)

	userA := testutil.TestUser(t, db)
	userB := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db)
	lesson1 := testutil.TestLesson(t, db, course.ID)
	lesson2 := testutil.TestLesson(t, db, course.ID)

	require.NoError(t, repo.Grant(userA.ID, lesson1.ID))

	// 其他用户、其他课时都不受影响
	exists, err := repo.Exists(userB.ID, lesson1.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.Exists(userA.ID, lesson2.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
