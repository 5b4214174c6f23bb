package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateUserRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: CreateUserRequest{Name: "Ana Lim", Email: "ana@example.com", Password: "password123", Phone: "555-0100"},
		},
		{
			name:    "valid request with avatar",
			request: CreateUserRequest{Name: "Ana Lim", Email: "ana@example.com", Password: "password123", AvatarID: "avatar-runner"},
		},
		{
			name:    "missing name",
			request: CreateUserRequest{Email: "ana@example.com", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			request: CreateUserRequest{Name: "Ana", Email: "not-an-email", Password: "password123"},
			wantErr: true,
		},
		{
			name:    "short password",
			request: CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "short"},
			wantErr: true,
		},
		{
			name:    "avatar id too long",
			request: CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "password123", AvatarID: strings.Repeat("x", 65)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "ana@example.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ana@example.com"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "bad", Password: "x"}).Validate())
}

func TestUpdatePasswordRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "newpassword"}).Validate())
	assert.Error(t, (&UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "short"}).Validate())
	assert.Error(t, (&UpdatePasswordRequest{NewPassword: "newpassword"}).Validate())
}

func TestLoginResponse_Serialization(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := LoginResponse{
		User: &User{
			ID:          uuid.MustParse("7d1c2a3b-0000-4000-8000-000000000001"),
			Name:        "Ana Lim",
			Email:       "ana@example.com",
			AvatarID:    "avatar-runner",
			PasswordSet: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Token: "token-123",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"token":"token-123"`)
	assert.Contains(t, s, `"avatar_id":"avatar-runner"`)
	assert.NotContains(t, s, "password_hash")
}
