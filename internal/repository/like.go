package repository

import (
	"context"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines like operations.
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID uint) (models.LikeState, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the user's like if present and adds it otherwise, in one
// transaction. A concurrent insert of the same like is absorbed by the unique
// index, so the pair is never stored twice.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID uint) (models.LikeState, error) {
	state, err := database.WithRetry(ctx, "likes.toggle", func(ctx context.Context) (models.LikeState, error) {
		var state models.LikeState
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				state = models.LikeStateUnliked
				return nil
			}

			like := models.Like{PostID: postID, UserID: userID}
			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&like).Error; err != nil {
				return err
			}
			state = models.LikeStateLiked
			return nil
		})
		return state, err
	})
	if database.IsForeignKeyViolation(err) {
		return "", models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return "", storeError(err)
	}
	return state, nil
}
