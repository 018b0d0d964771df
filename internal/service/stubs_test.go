package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updatePasswordHashFn func(context.Context, uint, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordHashFn(ctx, id, hash)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	getSummaryFn func(context.Context, uint, uint) (*models.PostSummary, error)
	listFn       func(context.Context, int, int, uint) ([]models.PostSummary, error)
	deleteFn     func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetSummary(ctx context.Context, id, viewerID uint) (*models.PostSummary, error) {
	return s.getSummaryFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]models.PostSummary, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getSummaryFn: func(_ context.Context, id, _ uint) (*models.PostSummary, error) {
			return &models.PostSummary{ID: id}, nil
		},
		listFn:   func(_ context.Context, _, _ int, _ uint) ([]models.PostSummary, error) { return nil, nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]models.CommentView, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]models.CommentView, error) { return []models.CommentView{}, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn func(context.Context, uint, uint) (models.LikeState, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, postID, userID uint) (models.LikeState, error) {
	return s.toggleFn(ctx, postID, userID)
}

// authStub resolves every non-empty token to user.
type authStub struct {
	user *models.User
	err  error
}

func (a *authStub) CurrentIdentity(_ context.Context, s session.Session) (*models.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	if s.Anonymous() {
		return nil, nil
	}
	return a.user, nil
}

func (a *authStub) RequireIdentity(ctx context.Context, s session.Session) (*models.User, error) {
	u, err := a.CurrentIdentity(ctx, s)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.NewAuthenticationRequiredError()
	}
	return u, nil
}

var signedIn = session.Session{Token: "token"}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
