package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmhhmm/apex-insurance/internal/db"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, srv *Server, email string) (string, *types.User) {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/auth/register", types.CreateUserRequest{
		Name:     "Alex Tan",
		Email:    email,
		Password: "correct-horse",
		AvatarID: "avatar-3",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[types.LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, testDeps(newFakeStore(), nil))
	token, user := registerUser(t, srv, "alex@example.com")
	assert.Equal(t, "avatar-3", user.AvatarID)
	assert.True(t, user.PasswordSet)

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/auth/register", types.CreateUserRequest{
			Name: "Other", Email: "alex@example.com", Password: "another-pass",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("register validation", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/auth/register", types.CreateUserRequest{
			Name: "Short", Email: "short@example.com", Password: "abc",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "Password")
	})

	t.Run("login", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/auth/login", types.LoginRequest{
			Email: "alex@example.com", Password: "correct-horse",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, user.ID, decodeBody[types.LoginResponse](t, w).User.ID)
	})

	t.Run("login wrong password", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/auth/login", types.LoginRequest{
			Email: "alex@example.com", Password: "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alex@example.com", decodeBody[types.User](t, w).Email)
	})

	t.Run("me without token", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me with garbage token", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me", nil, "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdatePasswordEndpoint(t *testing.T) {
	srv := newTestServer(t, testDeps(newFakeStore(), nil))
	token, _ := registerUser(t, srv, "pw@example.com")

	w := doJSON(t, srv, http.MethodPut, "/auth/password", types.UpdatePasswordRequest{
		CurrentPassword: "wrong-one", NewPassword: "brand-new-pass",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/auth/password", types.UpdatePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "short",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/auth/password", types.UpdatePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "brand-new-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/auth/password", types.UpdatePasswordRequest{
		CurrentPassword: "correct-horse", NewPassword: "brand-new-pass",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/auth/login", types.LoginRequest{
		Email: "pw@example.com", Password: "brand-new-pass",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t, testDeps(newFakeStore(), nil))
	token, user := registerUser(t, srv, "profile@example.com")

	w := doJSON(t, srv, http.MethodGet, "/me/profile", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/me/profile", `{"age":30,"lifestyle":"Lazy"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	profile := validProfile()
	w = doJSON(t, srv, http.MethodPut, "/me/profile", profile, token)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decodeBody[db.SavedProfile](t, w)
	assert.Equal(t, user.ID, saved.UserID)
	assert.False(t, saved.UpdatedAt.IsZero())

	w = doJSON(t, srv, http.MethodGet, "/me/profile", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, profile, decodeBody[db.SavedProfile](t, w).Profile)

	w = doJSON(t, srv, http.MethodGet, "/me/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecommendationHistory(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(t, testDeps(store, nil))
	token, user := registerUser(t, srv, "history@example.com")

	w := doJSON(t, srv, http.MethodPost, "/me/recommendations", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no saved profile")

	w = doJSON(t, srv, http.MethodPut, "/me/profile", validProfile(), token)
	require.Equal(t, http.StatusOK, w.Code)

	var ids []uuid.UUID
	for range 3 {
		w = doJSON(t, srv, http.MethodPost, "/me/recommendations", nil, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rec := decodeBody[db.SavedRecommendation](t, w)
		assert.Equal(t, user.ID, rec.UserID)
		assert.Equal(t, rec.Bundle.RiskValue, rec.RiskValue)
		ids = append(ids, rec.ID)
	}

	t.Run("list newest first", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me/recommendations", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		recs := decodeBody[HistoryResponse](t, w).Recommendations
		require.Len(t, recs, 3)
		assert.Equal(t, ids[2], recs[0].ID)
		assert.Equal(t, ids[0], recs[2].ID)
	})

	t.Run("list with limit", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me/recommendations?limit=2", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[HistoryResponse](t, w).Recommendations, 2)
	})

	t.Run("bad limit", func(t *testing.T) {
		for _, limit := range []string{"abc", "0", "-3"} {
			w := doJSON(t, srv, http.MethodGet, "/me/recommendations?limit="+limit, nil, token)
			assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		}
	})

	t.Run("get one", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me/recommendations/"+ids[1].String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ids[1], decodeBody[db.SavedRecommendation](t, w).ID)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/me/recommendations/not-a-uuid", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("other users cannot read it", func(t *testing.T) {
		otherToken, _ := registerUser(t, srv, "other@example.com")

		w := doJSON(t, srv, http.MethodGet, "/me/recommendations/"+ids[0].String(), nil, otherToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, srv, http.MethodGet, "/me/recommendations", nil, otherToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"recommendations":[]`)
	})

	t.Run("store failure is opaque", func(t *testing.T) {
		store.mu.Lock()
		store.failOn["ListRecommendations"] = eris.New("relation does not exist")
		store.mu.Unlock()
		t.Cleanup(func() {
			store.mu.Lock()
			delete(store.failOn, "ListRecommendations")
			store.mu.Unlock()
		})

		w := doJSON(t, srv, http.MethodGet, "/me/recommendations", nil, token)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeBody[map[string]string](t, w)["error"])
	})
}
