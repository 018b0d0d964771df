package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRandom(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, bcrypt.MinCost)

	stats, err := s.Random(context.Background(), Options{
		Users:           5,
		Posts:           10,
		MaxComments:     3,
		LikeProbability: 0.5,
		RandSeed:        42,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Users)
	assert.Equal(t, 10, stats.Posts)
	assert.Equal(t, int64(stats.Users), count(t, db, &models.User{}))
	assert.Equal(t, int64(stats.Posts), count(t, db, &models.Post{}))
	assert.Equal(t, int64(stats.Comments), count(t, db, &models.Comment{}))
	assert.Equal(t, int64(stats.Likes), count(t, db, &models.Like{}))
	assert.LessOrEqual(t, stats.Likes, 5*10)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(DefaultPassword)))
}

func TestRandomWithoutUsersIsNoop(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	stats, err := NewSeeder(db, bcrypt.MinCost).Random(context.Background(), Options{Posts: 10})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, bcrypt.MinCost)
	_, err := s.Random(context.Background(), Options{Users: 3, Posts: 3, MaxComments: 2, LikeProbability: 1})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(context.Background()))
	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
		assert.Zero(t, count(t, db, model), "%T", model)
	}
}

const fixtureYAML = `
users:
  - username: alice
    email: alice@example.com
    password: pw123
  - username: bob
    email: bob@example.com
posts:
  - author: alice
    title: Hello
    content: World
    liked_by: [bob, bob]
    comments:
      - author: bob
        text: Nice
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestApplyFixtures(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, bcrypt.MinCost)

	f, err := LoadFixtures(writeFixture(t, fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)

	stats, err := s.ApplyFixtures(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 2, Posts: 1, Comments: 1, Likes: 1}, stats)

	var bob models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bob).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(bob.PasswordHash), []byte(DefaultPassword)))

	again, err := s.ApplyFixtures(context.Background(), f)
	require.NoError(t, err)
	assert.Zero(t, again.Users)
	assert.Equal(t, 1, again.Posts)
	assert.Equal(t, int64(2), count(t, db, &models.User{}))
}

func TestApplyFixturesUnknownAuthor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, bcrypt.MinCost)

	_, err := s.ApplyFixtures(context.Background(), &Fixtures{
		Posts: []FixturePost{{Author: "ghost", Title: "t", Content: "c"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Zero(t, count(t, db, &models.Post{}))
}

func TestLoadFixturesErrors(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = LoadFixtures(writeFixture(t, "users: [unclosed"))
	assert.Error(t, err)
}

func TestDemoFixturesParse(t *testing.T) {
	f, err := LoadFixtures(filepath.Join("..", "..", "fixtures", "demo.yml"))
	require.NoError(t, err)
	assert.NotEmpty(t, f.Users)
	assert.NotEmpty(t, f.Posts)
}
