package repository

import (
	"context"
	"regexp"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Test Post", Content: "Content", AuthorID: 3}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, uint(11), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListNewestFirstWithViewerLikes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	first := testutil.CreatePost(t, db, alice.ID, "first")
	second := testutil.CreatePost(t, db, bob.ID, "second")

	_, err := likes.Toggle(ctx, first.ID, alice.ID)
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, first.ID, bob.ID)
	require.NoError(t, err)

	posts, err := repo.List(ctx, 0, 0, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, "bob", posts[0].AuthorUsername)
	assert.Equal(t, int64(0), posts[0].Likes)
	assert.False(t, posts[0].LikedByViewer)

	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, "alice", posts[1].AuthorUsername)
	assert.Equal(t, int64(2), posts[1].Likes)
	assert.True(t, posts[1].LikedByViewer)
	assert.False(t, posts[1].CreatedAt.IsZero())

	anon, err := repo.List(ctx, 0, 0, 0)
	require.NoError(t, err)
	for _, p := range anon {
		assert.False(t, p.LikedByViewer)
	}
}

func TestPostRepository_ListPagination(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	for _, title := range []string{"a", "b", "c"} {
		testutil.CreatePost(t, db, alice.ID, title)
	}

	page, err := repo.List(ctx, 2, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Title)
	assert.Equal(t, "a", page[1].Title)

	empty, err := repo.List(ctx, 10, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPostRepository_GetSummary(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "hello")

	summary, err := repo.GetSummary(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", summary.Title)
	assert.Equal(t, "hello body", summary.Content)
	assert.Equal(t, alice.ID, summary.AuthorID)

	_, err = repo.GetSummary(ctx, 404, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = repo.GetByID(ctx, 404)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "doomed")
	keep := testutil.CreatePost(t, db, alice.ID, "kept")

	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "hi"}))
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: keep.ID, AuthorID: alice.ID, Text: "stay"}))
	_, err := likes.Toggle(ctx, post.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var commentCount, likeCount int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error)
	assert.Zero(t, commentCount)
	assert.Zero(t, likeCount)

	remaining, err := comments.ListByPost(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	err = repo.Delete(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
