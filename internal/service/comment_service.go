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

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	identity Authenticator
}

type AddCommentInput struct {
	Session session.Session `json:"-" validate:"-"`
	PostID  uint            `json:"post_id" validate:"required"`
	Text    string          `json:"text" validate:"required,max=10000"`
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	identity Authenticator,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		identity: identity,
	}
}

// AddComment attaches a comment by the signed-in user to an existing post.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	span, ctx := observability.NewSpan(ctx, "CommentService.AddComment", attribute.Int64("post.id", int64(in.PostID)))
	defer span.End()

	author, err := s.identity.RequireIdentity(ctx, in.Session)
	if err != nil {
		return nil, err
	}

	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		span.SetError(err)
		return nil, err
	}

	comment := &models.Comment{
		Text:     in.Text,
		PostID:   in.PostID,
		AuthorID: author.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.ContentCreated.WithLabelValues("comment").Inc()
	return comment, nil
}
