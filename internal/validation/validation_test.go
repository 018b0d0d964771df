package validation

import (
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   signup
		wantMsg string
	}{
		{"valid", signup{"alice", "a@x.io", "pw123"}, ""},
		{"missing username", signup{"", "a@x.io", "pw123"}, "username is required"},
		{"long username", signup{strings.Repeat("a", 65), "a@x.io", "pw123"}, "username must be at most 64 characters"},
		{"bad email", signup{"alice", "not-an-email", "pw123"}, "email must be a valid email address"},
		{"short password", signup{"alice", "a@x.io", "pw"}, "password must be at least 3 characters"},
		{"unicode counts runes", signup{strings.Repeat("é", 64), "a@x.io", "pw123"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestStruct_NonStruct(t *testing.T) {
	t.Parallel()
	err := Struct("nope")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}
