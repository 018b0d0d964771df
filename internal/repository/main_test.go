package repository

import (
	"testing"
	"time"

	"inkwell/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func fastRetries(t *testing.T, retries int) {
	t.Helper()
	prev := database.CurrentRetryPolicy()
	database.SetRetryPolicy(database.RetryPolicy{MaxRetries: retries, InitialInterval: time.Millisecond})
	t.Cleanup(func() { database.SetRetryPolicy(prev) })
}
