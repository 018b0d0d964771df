package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		DBDriver:          "sqlite",
		SessionSecret:     "server-test-secret-at-least-32-chars",
		SessionTTLHours:   1,
		SessionCookieName: "inkwell_session",
		BcryptCost:        bcrypt.MinCost,
		AllowedOrigins:    "http://localhost:5173",
	}
}

func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), rdb)
	require.NoError(t, err)
	return s, s.newApp()
}

// call sends a JSON request, optionally authenticated with a bearer token.
func call(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func callForm(t *testing.T, app *fiber.App, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// register creates an account and returns its session token.
func register(t *testing.T, app *fiber.App, name string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "pw123",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[sessionResponse](t, resp).Token
}
