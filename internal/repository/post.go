package repository

import (
	"context"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetSummary(ctx context.Context, id uint, viewerID uint) (*models.PostSummary, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]models.PostSummary, error)
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := database.Exec(ctx, "posts.create", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Omit("Author").Create(post).Error
	})
	if database.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("User", post.AuthorID)
	}
	return storeError(err)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := database.WithRetry(ctx, "posts.get", func(ctx context.Context) (*models.Post, error) {
		var post models.Post
		if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
			return nil, err
		}
		return &post, nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return post, nil
}

func (r *postRepository) GetSummary(ctx context.Context, id uint, viewerID uint) (*models.PostSummary, error) {
	rows, err := database.WithRetry(ctx, "posts.summary", func(ctx context.Context) ([]models.PostSummary, error) {
		var rows []models.PostSummary
		err := r.summaries(r.db.WithContext(ctx), viewerID).
			Where("posts.id = ?", id).
			Scan(&rows).Error
		return rows, err
	})
	if err != nil {
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &rows[0], nil
}

// List returns posts newest first. A non-positive limit returns every post.
func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]models.PostSummary, error) {
	rows, err := database.WithRetry(ctx, "posts.list", func(ctx context.Context) ([]models.PostSummary, error) {
		q := r.summaries(r.db.WithContext(ctx), viewerID).Order("posts.id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		rows := make([]models.PostSummary, 0)
		err := q.Scan(&rows).Error
		return rows, err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return rows, nil
}

// summaries selects posts with their author name, like count and whether
// viewerID has liked each one. viewerID 0 never matches a like.
func (r *postRepository) summaries(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Table("posts").
		Select(
			"posts.id, posts.title, posts.content, posts.author_id, posts.created_at, "+
				"users.username AS author_username, "+
				"COUNT(likes.id) AS likes, "+
				"MAX(CASE WHEN likes.user_id = ? THEN 1 ELSE 0 END) AS liked_by_viewer",
			viewerID,
		).
		Joins("JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Group("posts.id, posts.title, posts.content, posts.author_id, posts.created_at, users.username")
}

// Delete removes the post together with its comments and likes.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := database.Exec(ctx, "posts.delete", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.Post{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
	if err != nil {
		return notFoundOr(err, "Post", id)
	}
	return nil
}
