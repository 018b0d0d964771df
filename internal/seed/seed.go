// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every generated user gets.
const DefaultPassword = "password123"

// Options configures random seeding.
type Options struct {
	Users           int
	Posts           int
	MaxComments     int
	LikeProbability float64
	// RandSeed makes the generated data reproducible when non-zero.
	RandSeed int64
}

// Stats counts what a seeding run inserted.
type Stats struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d users, %d posts, %d comments, %d likes", s.Users, s.Posts, s.Comments, s.Likes)
}

// Seeder writes demo data straight through GORM.
type Seeder struct {
	db     *gorm.DB
	hasher *auth.Hasher
}

// NewSeeder creates a Seeder hashing passwords at the given bcrypt cost.
func NewSeeder(db *gorm.DB, bcryptCost int) *Seeder {
	return &Seeder{db: db, hasher: auth.NewHasher(bcryptCost)}
}

// ClearAll removes every row from the blog tables, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Random fills the database with generated users, posts, comments and likes.
func (s *Seeder) Random(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats
	if opts.Users <= 0 {
		return stats, nil
	}

	faker := gofakeit.New(opts.RandSeed)
	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return stats, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			name := strings.ToLower(fmt.Sprintf("%s%d", faker.Username(), i))
			users = append(users, &models.User{
				Username:     name,
				Email:        name + "@" + faker.DomainName(),
				PasswordHash: hash,
			})
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		stats.Users = len(users)

		posts := make([]*models.Post, 0, opts.Posts)
		for i := 0; i < opts.Posts; i++ {
			author := users[faker.Number(0, len(users)-1)]
			posts = append(posts, &models.Post{
				Title:    strings.TrimSuffix(faker.Sentence(5), "."),
				Content:  faker.Paragraph(2, 4, 12, "\n\n"),
				AuthorID: author.ID,
			})
		}
		if len(posts) > 0 {
			if err := tx.Omit(clause.Associations).Create(&posts).Error; err != nil {
				return fmt.Errorf("create posts: %w", err)
			}
		}
		stats.Posts = len(posts)

		var comments []*models.Comment
		var likes []*models.Like
		for _, post := range posts {
			for n := faker.Number(0, max(opts.MaxComments, 0)); n > 0; n-- {
				comments = append(comments, &models.Comment{
					Text:     faker.Sentence(faker.Number(3, 15)),
					PostID:   post.ID,
					AuthorID: users[faker.Number(0, len(users)-1)].ID,
				})
			}
			for _, u := range users {
				if faker.Float64Range(0, 1) < opts.LikeProbability {
					likes = append(likes, &models.Like{PostID: post.ID, UserID: u.ID})
				}
			}
		}
		if len(comments) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&comments, 200).Error; err != nil {
				return fmt.Errorf("create comments: %w", err)
			}
		}
		if len(likes) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&likes, 200).Error; err != nil {
				return fmt.Errorf("create likes: %w", err)
			}
		}
		stats.Comments = len(comments)
		stats.Likes = len(likes)
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	middleware.Logger.InfoContext(ctx, "random seed applied", "stats", stats.String())
	return stats, nil
}
