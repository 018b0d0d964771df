package repository

import (
	"context"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := database.Exec(ctx, "comments.create", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Omit("Post", "Author").Create(comment).Error
	})
	if database.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("Post", comment.PostID)
	}
	return storeError(err)
}

// ListByPost returns the comments on a post in insertion order.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	views, err := database.WithRetry(ctx, "comments.list", func(ctx context.Context) ([]models.CommentView, error) {
		views := make([]models.CommentView, 0)
		err := r.db.WithContext(ctx).
			Table("comments").
			Select("comments.id, comments.text, comments.author_id, comments.created_at, users.username").
			Joins("JOIN users ON users.id = comments.author_id").
			Where("comments.post_id = ?", postID).
			Order("comments.id ASC").
			Scan(&views).Error
		return views, err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return views, nil
}
