package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/session"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	identity Authenticator
}

type ListPostsInput struct {
	Session session.Session
	Limit   int
	Offset  int
}

type CreatePostInput struct {
	Session session.Session `json:"-" validate:"-"`
	Title   string          `json:"title" validate:"required,max=300"`
	Content string          `json:"content" validate:"required,max=50000"`
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	identity Authenticator,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		identity: identity,
	}
}

// viewerID is 0 for anonymous callers.
func (s *PostService) viewerID(ctx context.Context, sess session.Session) (uint, error) {
	viewer, err := s.identity.CurrentIdentity(ctx, sess)
	if err != nil {
		return 0, err
	}
	if viewer == nil {
		return 0, nil
	}
	return viewer.ID, nil
}

// ListPosts returns posts newest first with like counts and the viewer's own likes.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.PostSummary, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ListPosts")
	defer span.End()

	if in.Limit < 0 || in.Offset < 0 {
		return nil, models.NewValidationError("limit and offset must not be negative")
	}

	viewerID, err := s.viewerID(ctx, in.Session)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	posts, err := s.posts.List(ctx, in.Limit, in.Offset, viewerID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return posts, nil
}

// GetPost returns one post with its comments in the order they were written.
func (s *PostService) GetPost(ctx context.Context, sess session.Session, postID uint) (*models.PostDetail, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetPost", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	viewerID, err := s.viewerID(ctx, sess)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	summary, err := s.posts.GetSummary(ctx, postID, viewerID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &models.PostDetail{PostSummary: *summary, Comments: comments}, nil
}

// CreatePost publishes a post authored by the signed-in user.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()

	author, err := s.identity.RequireIdentity(ctx, in.Session)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: author.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.ContentCreated.WithLabelValues("post").Inc()
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))
	return post, nil
}

// ToggleLike flips the signed-in user's like on a post.
func (s *PostService) ToggleLike(ctx context.Context, sess session.Session, postID uint) (models.LikeState, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.ToggleLike", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	user, err := s.identity.RequireIdentity(ctx, sess)
	if err != nil {
		return "", err
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		span.SetError(err)
		return "", err
	}

	state, err := s.likes.Toggle(ctx, postID, user.ID)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	observability.LikesToggled.WithLabelValues(string(state)).Inc()
	span.AddAttributes(attribute.String("like.state", string(state)))
	return state, nil
}

// DeletePost removes a post the signed-in user wrote, along with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, sess session.Session, postID uint) error {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost", attribute.Int64("post.id", int64(postID)))
	defer span.End()

	user, err := s.identity.RequireIdentity(ctx, sess)
	if err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return err
	}
	if post.AuthorID != user.ID {
		return models.NewAuthorizationError("only the author can delete this post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}
