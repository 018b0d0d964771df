package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type likeResponse struct {
	PostID uint             `json:"post_id"`
	State  models.LikeState `json:"state"`
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	created := call(t, app, http.MethodPost, "/api/posts/",
		map[string]string{"title": "Hello", "content": "World"}, alice)
	require.Equal(t, http.StatusCreated, created.StatusCode)
	post := decode[models.Post](t, created)
	postPath := fmt.Sprintf("/api/posts/%d", post.ID)

	listed := call(t, app, http.MethodGet, "/api/posts/", nil, "")
	require.Equal(t, http.StatusOK, listed.StatusCode)
	posts := decode[[]models.PostSummary](t, listed)
	require.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].AuthorUsername)
	assert.Zero(t, posts[0].Likes)

	liked := call(t, app, http.MethodPost, postPath+"/like", nil, bob)
	require.Equal(t, http.StatusOK, liked.StatusCode)
	assert.Equal(t, models.LikeStateLiked, decode[likeResponse](t, liked).State)

	commented := callForm(t, app, postPath+"/comments", url.Values{"comment": {"Nice"}}, bob)
	require.Equal(t, http.StatusCreated, commented.StatusCode)

	asBob := call(t, app, http.MethodGet, postPath, nil, bob)
	require.Equal(t, http.StatusOK, asBob.StatusCode)
	detail := decode[models.PostDetail](t, asBob)
	assert.Equal(t, int64(1), detail.Likes)
	assert.True(t, detail.LikedByViewer)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "bob", detail.Comments[0].Username)
	assert.Equal(t, "Nice", detail.Comments[0].Text)

	asAnon := call(t, app, http.MethodGet, postPath, nil, "")
	assert.False(t, decode[models.PostDetail](t, asAnon).LikedByViewer)

	unliked := call(t, app, http.MethodPost, postPath+"/like", nil, bob)
	assert.Equal(t, models.LikeStateUnliked, decode[likeResponse](t, unliked).State)

	forbidden := call(t, app, http.MethodDelete, postPath, nil, bob)
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	assert.Equal(t, models.CodeForbidden, decode[models.ErrorResponse](t, forbidden).Code)

	deleted := call(t, app, http.MethodDelete, postPath, nil, alice)
	assert.Equal(t, http.StatusOK, deleted.StatusCode)

	gone := call(t, app, http.MethodGet, postPath, nil, "")
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
	assert.Equal(t, models.CodeNotFound, decode[models.ErrorResponse](t, gone).Code)
}

func TestPostErrors(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := register(t, app, "alice")

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		token          string
		expectedStatus int
		expectedCode   string
	}{
		{"create anonymous", http.MethodPost, "/api/posts/", map[string]string{"title": "t", "content": "c"}, "", http.StatusUnauthorized, models.CodeAuthRequired},
		{"create blank title", http.MethodPost, "/api/posts/", map[string]string{"title": "  ", "content": "c"}, alice, http.StatusBadRequest, models.CodeValidation},
		{"get missing", http.MethodGet, "/api/posts/999", nil, "", http.StatusNotFound, models.CodeNotFound},
		{"get bad id", http.MethodGet, "/api/posts/abc", nil, "", http.StatusBadRequest, models.CodeValidation},
		{"like missing", http.MethodPost, "/api/posts/999/like", nil, alice, http.StatusNotFound, models.CodeNotFound},
		{"like anonymous", http.MethodPost, "/api/posts/1/like", nil, "", http.StatusUnauthorized, models.CodeAuthRequired},
		{"comment missing post", http.MethodPost, "/api/posts/999/comments", map[string]string{"text": "hi"}, alice, http.StatusNotFound, models.CodeNotFound},
		{"comment anonymous", http.MethodPost, "/api/posts/1/comments", map[string]string{"text": "hi"}, "", http.StatusUnauthorized, models.CodeAuthRequired},
		{"delete missing", http.MethodDelete, "/api/posts/999", nil, alice, http.StatusNotFound, models.CodeNotFound},
		{"negative offset", http.MethodGet, "/api/posts/?offset=-1", nil, "", http.StatusBadRequest, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectedCode, decode[models.ErrorResponse](t, resp).Code)
		})
	}
}

func TestListPostsPagination(t *testing.T) {
	_, app := newTestServer(t, nil)
	alice := register(t, app, "alice")

	for i := 1; i <= 3; i++ {
		resp := call(t, app, http.MethodPost, "/api/posts/",
			map[string]string{"title": fmt.Sprintf("post %d", i), "content": "c"}, alice)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	all := decode[[]models.PostSummary](t, call(t, app, http.MethodGet, "/api/posts/", nil, ""))
	require.Len(t, all, 3)
	assert.Equal(t, "post 3", all[0].Title)

	page := decode[[]models.PostSummary](t, call(t, app, http.MethodGet, "/api/posts/?limit=1&offset=1", nil, ""))
	require.Len(t, page, 1)
	assert.Equal(t, "post 2", page[0].Title)
}

func TestStoreFailureIsHidden(t *testing.T) {
	s, app := newTestServer(t, nil)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp := call(t, app, http.MethodGet, "/api/posts/", nil, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, models.CodeInternal, body.Code)
}
