// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated, isolated in-memory SQLite store that lives
// for the duration of the test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := database.SQLiteDSN("file:"+uuid.NewString()+"?mode=memory&cache=shared", 0)
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post authored by authorID.
func CreatePost(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()

	post := &models.Post{Title: title, Content: title + " body", AuthorID: authorID}
	require.NoError(t, db.Omit("Author").Create(post).Error)
	return post
}
