package repository

import (
	"context"
	"sync"
	"testing"

	"chattym/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func liveLikes(t *testing.T, db *gorm.DB, postID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error)
	return n
}

func storedLikes(t *testing.T, db *gorm.DB, postID uint) int {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, postID).Error)
	return p.LikesCount
}

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, owner, "p")

	action, count, err := repo.Toggle(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeActionLiked, action)
	assert.Equal(t, 1, count)

	liked, err := repo.IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	action, count, err = repo.Toggle(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeActionUnliked, action)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(0), liveLikes(t, db, post.ID))
}

func TestLikeRepository_CounterMatchesEdges(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner, "p")
	users := []*models.User{createUser(t, db, "u1"), createUser(t, db, "u2"), createUser(t, db, "u3")}

	sequence := []int{0, 1, 2, 1, 0, 0, 2, 1, 1}
	for _, idx := range sequence {
		_, _, err := repo.Toggle(ctx, users[idx].ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int(liveLikes(t, db, post.ID)), storedLikes(t, db, post.ID))
	}
}

func TestLikeRepository_ConcurrentTogglesStayConsistent(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, owner, "p")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.Toggle(ctx, fan.ID, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of toggles leaves the post unliked.
	assert.Zero(t, liveLikes(t, db, post.ID))
	assert.Equal(t, int(liveLikes(t, db, post.ID)), storedLikes(t, db, post.ID))
}

func TestLikeRepository_ToggleInactivePost(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner, "p")
	require.NoError(t, db.Model(post).Update("is_active", false).Error)

	_, _, err := repo.Toggle(ctx, owner.ID, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	_, _, err = repo.Toggle(ctx, owner.ID, 9999)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestLikeRepository_UnlikeNeverGoesNegative(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner, "p")
	require.NoError(t, db.Create(&models.Like{UserID: owner.ID, PostID: post.ID}).Error)

	action, count, err := repo.Toggle(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LikeActionUnliked, action)
	assert.Equal(t, 0, count)
}

func TestLikeRepository_LikedPostIDs(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	a := createPost(t, db, owner, "a")
	b := createPost(t, db, owner, "b")
	c := createPost(t, db, owner, "c")
	_, _, err := repo.Toggle(ctx, owner.ID, c.ID)
	require.NoError(t, err)
	_, _, err = repo.Toggle(ctx, owner.ID, a.ID)
	require.NoError(t, err)

	ids, err := repo.LikedPostIDs(ctx, owner.ID, []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, c.ID}, ids)

	ids, err = repo.LikedPostIDs(ctx, 0, []uint{a.ID})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLikeRepository_RecountAll(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	drifted := createPost(t, db, owner, "drifted")
	fine := createPost(t, db, owner, "fine")
	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: drifted.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: owner.ID, PostID: drifted.ID}).Error)
	require.NoError(t, db.Model(drifted).UpdateColumn("likes_count", 7).Error)

	reported := map[uint][2]int{}
	changed, err := repo.RecountAll(ctx, true, func(id uint, before, after int) {
		reported[id] = [2]int{before, after}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, [2]int{7, 2}, reported[drifted.ID])
	assert.Equal(t, [2]int{0, 0}, reported[fine.ID])
	assert.Equal(t, 7, storedLikes(t, db, drifted.ID))

	changed, err = repo.RecountAll(ctx, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 2, storedLikes(t, db, drifted.ID))
}
