package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"duplicate", NewDuplicateError("taken"), fiber.StatusConflict},
		{"not found", NewNotFoundError("Post", 9), fiber.StatusNotFound},
		{"auth required", NewAuthenticationRequiredError(), fiber.StatusUnauthorized},
		{"invalid credentials", NewInvalidCredentialsError(), fiber.StatusUnauthorized},
		{"forbidden", NewAuthorizationError("nope"), fiber.StatusForbidden},
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"internal", NewInternalError(errors.New("disk I/O error")), fiber.StatusInternalServerError},
		{"wrapped", fmt.Errorf("create post: %w", NewNotFoundError("Post", 1)), fiber.StatusNotFound},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "no"), fiber.StatusMethodNotAllowed},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewDuplicateError("taken"))
	assert.True(t, HasCode(err, CodeDuplicate))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeDuplicate))
}

func TestRespondWithError_DoesNotLeakStoreErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError,
			NewInternalError(errors.New("UNIQUE constraint failed: users.email")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("sql: database is closed"))
	})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadRequest, NewValidationError("title is required"))
	})

	tests := []struct {
		path    string
		status  int
		message string
		code    string
	}{
		{"/internal", fiber.StatusInternalServerError, "Internal server error", CodeInternal},
		{"/plain", fiber.StatusInternalServerError, "Internal server error", CodeInternal},
		{"/validation", fiber.StatusBadRequest, "title is required", CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var payload ErrorResponse
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, payload.Error)
			assert.Equal(t, tt.code, payload.Code)
			assert.NotContains(t, string(body), "constraint")
			assert.NotContains(t, string(body), "sql:")
		})
	}
}
