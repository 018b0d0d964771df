package seed

import (
	"context"
	"fmt"
	"os"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixtures is a hand-written data set, usually loaded from YAML.
type Fixtures struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type FixturePost struct {
	Author   string           `yaml:"author"`
	Title    string           `yaml:"title"`
	Content  string           `yaml:"content"`
	Comments []FixtureComment `yaml:"comments"`
	LikedBy  []string         `yaml:"liked_by"`
}

type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// LoadFixtures reads a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &f, nil
}

// ApplyFixtures inserts the fixture data in one transaction. Users that
// already exist by username are reused, so applying the same file twice only
// adds posts.
func (s *Seeder) ApplyFixtures(ctx context.Context, f *Fixtures) (Stats, error) {
	var stats Stats

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(f.Users))
		for _, fu := range f.Users {
			password := fu.Password
			if password == "" {
				password = DefaultPassword
			}
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return err
			}

			user := models.User{Username: fu.Username, Email: fu.Email, PasswordHash: hash}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
			if res.Error != nil {
				return fmt.Errorf("create user %q: %w", fu.Username, res.Error)
			}
			if res.RowsAffected == 0 {
				if err := tx.Where("username = ?", fu.Username).First(&user).Error; err != nil {
					return fmt.Errorf("user %q conflicts with an existing account: %w", fu.Username, err)
				}
			} else {
				stats.Users++
			}
			ids[fu.Username] = user.ID
		}

		lookup := func(name string) (uint, error) {
			id, ok := ids[name]
			if !ok {
				return 0, fmt.Errorf("fixture references unknown user %q", name)
			}
			return id, nil
		}

		for _, fp := range f.Posts {
			authorID, err := lookup(fp.Author)
			if err != nil {
				return err
			}
			post := models.Post{Title: fp.Title, Content: fp.Content, AuthorID: authorID}
			if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
				return fmt.Errorf("create post %q: %w", fp.Title, err)
			}
			stats.Posts++

			for _, fc := range fp.Comments {
				commenterID, err := lookup(fc.Author)
				if err != nil {
					return err
				}
				comment := models.Comment{Text: fc.Text, PostID: post.ID, AuthorID: commenterID}
				if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				stats.Comments++
			}

			for _, name := range fp.LikedBy {
				likerID, err := lookup(name)
				if err != nil {
					return err
				}
				res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
					Create(&models.Like{PostID: post.ID, UserID: likerID})
				if res.Error != nil {
					return fmt.Errorf("create like: %w", res.Error)
				}
				stats.Likes += int(res.RowsAffected)
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	middleware.Logger.InfoContext(ctx, "fixtures applied", "stats", stats.String())
	return stats, nil
}
