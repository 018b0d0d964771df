// Package legacy imports data from the original single-file sqlite store
// (tables user, post, post_comment, post_like) into the current schema.
package legacy

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type legacyUser struct {
	ID           uint
	UserName     string
	PasswordHash string
	Email        string
}

type legacyPost struct {
	ID       uint
	Title    string
	Content  string
	AuthorID uint
}

type legacyComment struct {
	ID      uint
	Comment string
	PostID  uint
	UserID  uint
}

type legacyLike struct {
	ID     uint
	PostID uint
	UserID uint
}

// Report counts imported and skipped rows per table.
type Report struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
	Skipped  int
}

// OpenSource opens a legacy database file read-only.
func OpenSource(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	return database.Open(sqlite.Open(dsn))
}

// Importer copies legacy rows into the target store, keeping their ids.
// Rows that already exist, break a uniqueness rule, or point at rows that
// were not imported are skipped and counted. A target row with a legacy id
// only stands in as a parent when it holds the same legacy data, so users
// registered in the new store never inherit legacy content.
type Importer struct {
	source *gorm.DB
	target *gorm.DB
}

func NewImporter(source, target *gorm.DB) *Importer {
	return &Importer{source: source, target: target}
}

// Run imports every table in one target transaction. Running it again
// imports nothing new.
func (im *Importer) Run(ctx context.Context) (Report, error) {
	var (
		report   Report
		users    []legacyUser
		posts    []legacyPost
		comments []legacyComment
		likes    []legacyLike
	)

	src := im.source.WithContext(ctx)
	if err := src.Raw(`SELECT rowid AS id, user_name, password_hash, email FROM user ORDER BY rowid`).Scan(&users).Error; err != nil {
		return report, fmt.Errorf("read legacy users: %w", err)
	}
	if err := src.Raw(`SELECT rowid AS id, title, content, author_id FROM post ORDER BY rowid`).Scan(&posts).Error; err != nil {
		return report, fmt.Errorf("read legacy posts: %w", err)
	}
	if err := src.Raw(`SELECT rowid AS id, comment, post_id, user_id FROM post_comment ORDER BY rowid`).Scan(&comments).Error; err != nil {
		return report, fmt.Errorf("read legacy comments: %w", err)
	}
	if err := src.Raw(`SELECT rowid AS id, post_id, user_id FROM post_like ORDER BY rowid`).Scan(&likes).Error; err != nil {
		return report, fmt.Errorf("read legacy likes: %w", err)
	}

	err := im.target.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userIDs := make(map[uint]bool, len(users))
		for _, u := range users {
			name := strings.TrimSpace(u.UserName)
			if name == "" || u.PasswordHash == "" {
				report.Skipped++
				continue
			}
			row := &models.User{
				ID:           u.ID,
				Username:     name,
				Email:        strings.TrimSpace(u.Email),
				PasswordHash: u.PasswordHash,
			}
			ok, err := insert(tx, row)
			if err != nil {
				return fmt.Errorf("import user %d: %w", u.ID, err)
			}
			if ok {
				report.Users++
				userIDs[u.ID] = true
				continue
			}
			report.Skipped++
			// Imported by an earlier run.
			same, err := sameUser(tx, row)
			if err != nil {
				return err
			}
			userIDs[u.ID] = same
		}

		postIDs := make(map[uint]bool, len(posts))
		for _, p := range posts {
			if !userIDs[p.AuthorID] {
				report.Skipped++
				continue
			}
			row := &models.Post{ID: p.ID, Title: p.Title, Content: p.Content, AuthorID: p.AuthorID}
			ok, err := insert(tx, row)
			if err != nil {
				return fmt.Errorf("import post %d: %w", p.ID, err)
			}
			if ok {
				report.Posts++
				postIDs[p.ID] = true
				continue
			}
			report.Skipped++
			same, err := samePost(tx, row)
			if err != nil {
				return err
			}
			postIDs[p.ID] = same
		}

		for _, c := range comments {
			if !postIDs[c.PostID] || !userIDs[c.UserID] {
				report.Skipped++
				continue
			}
			ok, err := insert(tx, &models.Comment{ID: c.ID, Text: c.Comment, PostID: c.PostID, AuthorID: c.UserID})
			if err != nil {
				return fmt.Errorf("import comment %d: %w", c.ID, err)
			}
			if ok {
				report.Comments++
			} else {
				report.Skipped++
			}
		}

		for _, l := range likes {
			if !postIDs[l.PostID] || !userIDs[l.UserID] {
				report.Skipped++
				continue
			}
			ok, err := insert(tx, &models.Like{ID: l.ID, PostID: l.PostID, UserID: l.UserID})
			if err != nil {
				return fmt.Errorf("import like %d: %w", l.ID, err)
			}
			if ok {
				report.Likes++
			} else {
				report.Skipped++
			}
		}

		return resetSequences(tx)
	})
	if err != nil {
		return Report{}, err
	}

	middleware.Logger.InfoContext(ctx, "legacy import finished",
		"users", report.Users, "posts", report.Posts, "comments", report.Comments,
		"likes", report.Likes, "skipped", report.Skipped)
	return report, nil
}

// insert writes row unless it conflicts with an existing one.
func insert(tx *gorm.DB, row any) (bool, error) {
	res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func sameUser(tx *gorm.DB, want *models.User) (bool, error) {
	var n int64
	err := tx.Model(&models.User{}).
		Where("id = ? AND username = ? AND email = ?", want.ID, want.Username, want.Email).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", want.ID, err)
	}
	return n > 0, nil
}

func samePost(tx *gorm.DB, want *models.Post) (bool, error) {
	var n int64
	err := tx.Model(&models.Post{}).
		Where("id = ? AND author_id = ? AND title = ?", want.ID, want.AuthorID, want.Title).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check post %d: %w", want.ID, err)
	}
	return n > 0, nil
}

// resetSequences moves postgres id sequences past the explicitly inserted ids.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"users", "posts", "comments", "likes"} {
		if err := tx.Exec(fmt.Sprintf(`
			SELECT setval(
				pg_get_serial_sequence('%[1]s', 'id'),
				GREATEST((SELECT COALESCE(MAX(id), 1) FROM %[1]s), 1),
				true
			)`, table)).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
